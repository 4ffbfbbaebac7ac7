package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/chainsafe/strategy-harness/pkg/anvil"
	"github.com/chainsafe/strategy-harness/pkg/config"
	"github.com/chainsafe/strategy-harness/pkg/ethereum"
	"github.com/chainsafe/strategy-harness/pkg/scenario"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	configPath   = flag.String("config", "", "Path to configuration file (defaults only when empty)")
	scenarioName = flag.String("scenario", scenario.All, "Scenario to run: deposit-harvest, emergency-exit or all")
	metricsAddr  = flag.String("metrics-addr", "", "Address to serve /metrics, /health and /reports on (disabled when empty)")
	dryRun       = flag.Bool("dry-run", false, "Run against the in-process dev node instead of a real node")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// Initialize logger
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	scenarios, err := scenario.Lookup(*scenarioName)
	if err != nil {
		logger.Error("Invalid scenario", zap.Error(err))
		return 2
	}

	logger.Info("Starting strategy harness",
		zap.String("scenario", *scenarioName),
		zap.Bool("dry_run", *dryRun))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := &reportStore{}
	if *metricsAddr != "" {
		server := newServer(*metricsAddr, results, logger)
		go func() {
			logger.Info("Starting HTTP server", zap.String("address", *metricsAddr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server shutdown error", zap.Error(err))
			}
		}()
	}

	client, cleanup, err := connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to node", zap.Error(err))
		return 1
	}
	defer cleanup()

	runner := scenario.NewRunner(client, cfg, logger)
	reports, err := runner.RunAll(ctx, scenarios)
	results.set(reports)
	if err != nil {
		logger.Error("Harness run failed", zap.Error(err))
		return 1
	}

	logger.Info("All scenarios passed", zap.Int("scenarios", len(reports)))
	return 0
}

// connect returns a client for the in-process dev node, a fresh forked
// container or the configured RPC endpoint, in that order of precedence.
func connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ethereum.Client, func(), error) {
	if *dryRun {
		node, err := scenario.NewDryRunNode(cfg, logger.Named("devnode"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start dev node: %w", err)
		}
		client, err := ethereum.NewClient(ctx, node.Client(), &cfg.Node, logger)
		if err != nil {
			node.Close()
			return nil, nil, err
		}
		return client, func() {
			client.Close()
			node.Close()
		}, nil
	}

	var container *anvil.Node
	if cfg.Node.Container.Enabled {
		var err error
		container, err = anvil.Start(ctx, cfg.Node.Container, logger)
		if err != nil {
			return nil, nil, err
		}
		cfg.Node.RPCURL = container.URL()
		cfg.Node.Namespace = "anvil"
	}

	client, err := ethereum.Dial(ctx, &cfg.Node, logger)
	if err != nil {
		if container != nil {
			_ = container.Terminate()
		}
		return nil, nil, err
	}
	return client, func() {
		client.Close()
		if container != nil {
			if err := container.Terminate(); err != nil {
				logger.Warn("Failed to terminate container", zap.Error(err))
			}
		}
	}, nil
}

func newServer(addr string, results *reportStore, logger *zap.Logger) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health check endpoint (liveness)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/reports", handleGetReports(results, logger))

	return &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

type reportStore struct {
	mu      sync.Mutex
	reports []*scenario.Report
}

func (s *reportStore) set(reports []*scenario.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = reports
}

func (s *reportStore) get() []*scenario.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*scenario.Report(nil), s.reports...)
}

type reportView struct {
	RunID        string              `json:"run_id"`
	Scenario     string              `json:"scenario"`
	Duration     string              `json:"duration"`
	Transactions []scenario.TxRecord `json:"transactions"`
	Deposit      string              `json:"deposit,omitempty"`
	UserShares   string              `json:"user_shares,omitempty"`
	StrategyDebt string              `json:"strategy_debt,omitempty"`
	TotalAssets  string              `json:"total_assets,omitempty"`
	Error        string              `json:"error,omitempty"`
}

func handleGetReports(results *reportStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports := results.get()
		views := make([]reportView, 0, len(reports))
		for _, rep := range reports {
			v := reportView{
				RunID:        rep.RunID,
				Scenario:     rep.Scenario,
				Duration:     rep.Duration.String(),
				Transactions: rep.Transactions,
			}
			if rep.Deposit != nil {
				v.Deposit = rep.Deposit.String()
			}
			if rep.UserShares != nil {
				v.UserShares = rep.UserShares.String()
			}
			if rep.StrategyDebt != nil {
				v.StrategyDebt = rep.StrategyDebt.String()
			}
			if rep.TotalAssets != nil {
				v.TotalAssets = rep.TotalAssets.String()
			}
			if rep.Err != nil {
				v.Error = rep.Err.Error()
			}
			views = append(views, v)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]interface{}{"reports": views}); err != nil {
			logger.Error("Failed to encode response", zap.Error(err))
		}
	}
}
