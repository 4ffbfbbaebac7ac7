package anvil

import (
	"context"
	"testing"

	"github.com/chainsafe/strategy-harness/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	cfg := config.ContainerConfig{
		ForkURL: "https://rpc.ftm.tools",
		ChainID: 250,
	}
	assert.Equal(t, []string{
		"--host", "0.0.0.0",
		"--port", "8545",
		"--fork-url", "https://rpc.ftm.tools",
		"--chain-id", "250",
	}, Args(cfg))

	cfg.ForkBlock = 27_000_000
	args := Args(cfg)
	assert.Equal(t, []string{"--fork-block-number", "27000000"}, args[len(args)-2:])
}

func TestStart_RequiresForkURL(t *testing.T) {
	_, err := Start(context.Background(), config.ContainerConfig{Image: "ghcr.io/foundry-rs/foundry:stable"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fork url")
}
