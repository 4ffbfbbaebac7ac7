//go:build integration
// +build integration

package scenario

import (
	"context"
	"os"
	"testing"

	"github.com/chainsafe/strategy-harness/pkg/anvil"
	"github.com/chainsafe/strategy-harness/pkg/config"
	"github.com/chainsafe/strategy-harness/pkg/ethereum"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Requires Docker, a Fantom archive RPC in HARNESS_FORK_URL and compiled
// artifacts at the configured paths (HARNESS_CONFIG selects the file).
func TestIntegration_Scenarios(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test (set INTEGRATION_TEST=true to run)")
	}

	cfg, err := config.Load(os.Getenv("HARNESS_CONFIG"))
	require.NoError(t, err)
	if cfg.Node.Container.ForkURL == "" {
		t.Skip("Skipping integration test (set HARNESS_FORK_URL to a fork RPC)")
	}

	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	node, err := anvil.Start(ctx, cfg.Node.Container, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := node.Terminate(); err != nil {
			t.Logf("failed to terminate anvil: %v", err)
		}
	})

	cfg.Node.RPCURL = node.URL()
	cfg.Node.Namespace = "anvil"
	client, err := ethereum.Dial(ctx, &cfg.Node, logger)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	runner := NewRunner(client, cfg, logger)
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			scenarios, err := Lookup(name)
			require.NoError(t, err)
			_, err = runner.Run(ctx, scenarios[0])
			require.NoError(t, err)
		})
	}
}
