package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsSent counts transactions submitted to the node by label and status
	TransactionsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harness_transactions_total",
			Help: "Total number of transactions sent to the dev node",
		},
		[]string{"method", "status"},
	)

	// GasUsed tracks gas consumed per transaction label
	GasUsed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "harness_transaction_gas_used",
			Help:    "Gas used by mined transactions",
			Buckets: prometheus.ExponentialBuckets(21000, 2, 10),
		},
		[]string{"method"},
	)

	// ContractsDeployed counts artifact deployments
	ContractsDeployed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harness_contracts_deployed_total",
			Help: "Total number of contracts deployed from artifacts",
		},
		[]string{"contract"},
	)

	// Impersonations counts accounts impersonated on the node
	Impersonations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harness_impersonations_total",
			Help: "Total number of accounts impersonated",
		},
	)

	// ScenarioRuns counts scenario executions by outcome
	ScenarioRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harness_scenario_runs_total",
			Help: "Total number of scenario runs",
		},
		[]string{"scenario", "result"},
	)

	// ScenarioDuration tracks scenario wall time
	ScenarioDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "harness_scenario_duration_seconds",
			Help:    "Scenario duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scenario"},
	)
)

// Transaction statuses
const (
	StatusSuccess  = "success"
	StatusReverted = "reverted"
	StatusFailed   = "failed"
)
