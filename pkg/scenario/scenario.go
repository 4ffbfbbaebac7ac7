// Package scenario runs named end-to-end flows against a fresh fixture set
// and reports what happened on chain.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/chainsafe/strategy-harness/internal/metrics"
	"github.com/chainsafe/strategy-harness/pkg/config"
	"github.com/chainsafe/strategy-harness/pkg/fixtures"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// All selects every registered scenario
const All = "all"

var (
	// ErrUnknownScenario is returned by Lookup for unregistered names
	ErrUnknownScenario = errors.New("unknown scenario")
	// ErrAssertion is returned when post-run chain state is not as expected
	ErrAssertion = errors.New("assertion failed")
)

// Scenario is a named flow driven through fixtures
type Scenario struct {
	Name        string
	Description string
	Run         func(ctx context.Context, f *fixtures.Fixtures, rep *Report) error
}

var registry = map[string]Scenario{}

func register(s Scenario) {
	registry[s.Name] = s
}

func init() {
	register(DepositHarvest)
	register(EmergencyExit)
}

// Names returns the registered scenario names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a scenario name, or All, to the scenarios to run
func Lookup(name string) ([]Scenario, error) {
	if name == All {
		out := make([]Scenario, 0, len(registry))
		for _, n := range Names() {
			out = append(out, registry[n])
		}
		return out, nil
	}
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownScenario, name, Names())
	}
	return []Scenario{s}, nil
}

// Runner executes scenarios, each against its own fixture set
type Runner struct {
	node   fixtures.Node
	cfg    *config.Config
	logger *zap.Logger
}

// NewRunner creates a runner bound to a dev node
func NewRunner(node fixtures.Node, cfg *config.Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		node:   node,
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes s and resets the chain afterwards. The report is returned
// even when the scenario fails.
func (r *Runner) Run(ctx context.Context, s Scenario) (*Report, error) {
	rep := &Report{
		RunID:    uuid.NewString(),
		Scenario: s.Name,
		Started:  time.Now(),
	}
	logger := r.logger.With(
		zap.String("run_id", rep.RunID),
		zap.String("scenario", s.Name))

	logger.Info("Starting scenario", zap.String("description", s.Description))

	f, err := fixtures.New(ctx, r.node, r.cfg, logger)
	if err != nil {
		metrics.ScenarioRuns.WithLabelValues(s.Name, metrics.StatusFailed).Inc()
		return rep, err
	}
	defer func() {
		if err := f.Close(ctx); err != nil {
			logger.Warn("Failed to reset chain after scenario", zap.Error(err))
		}
	}()

	runErr := s.Run(ctx, f, rep)
	rep.Duration = time.Since(rep.Started)
	metrics.ScenarioDuration.WithLabelValues(s.Name).Observe(rep.Duration.Seconds())

	if runErr != nil {
		rep.Err = runErr
		metrics.ScenarioRuns.WithLabelValues(s.Name, metrics.StatusFailed).Inc()
		logger.Error("Scenario failed",
			zap.Error(runErr),
			zap.Duration("duration", rep.Duration),
			zap.Int("transactions", len(rep.Transactions)))
		return rep, fmt.Errorf("scenario %s failed: %w", s.Name, runErr)
	}

	metrics.ScenarioRuns.WithLabelValues(s.Name, metrics.StatusSuccess).Inc()
	r.logger.Info("Scenario passed", rep.Fields()...)
	return rep, nil
}

// RunAll executes scenarios in order and stops at the first failure
func (r *Runner) RunAll(ctx context.Context, scenarios []Scenario) ([]*Report, error) {
	reports := make([]*Report, 0, len(scenarios))
	for _, s := range scenarios {
		rep, err := r.Run(ctx, s)
		reports = append(reports, rep)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}
