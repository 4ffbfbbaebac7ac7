package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8545", cfg.Node.RPCURL)
	assert.Equal(t, "anvil", cfg.Node.Namespace)
	assert.Equal(t, 60*time.Second, cfg.Node.TxTimeout)
	assert.True(t, cfg.Node.FundGas)

	assert.Equal(t, 0, cfg.Accounts.Gov)
	assert.Equal(t, 5, cfg.Accounts.Keeper)
	assert.Equal(t, 5, cfg.Accounts.User)

	assert.Equal(t, "0x049d68029688eabf473097a2fc38ef61633a3c7a", cfg.Contracts.Token)
	assert.Equal(t, "2000000000", cfg.Strategy.InitParam)
	assert.Equal(t, int64(10000), cfg.Strategy.DebtRatio)
	assert.Equal(t, int64(1000), cfg.Strategy.PerformanceFee)
	assert.Equal(t, "max", cfg.Strategy.MaxDebtPerHarvest)
	assert.Equal(t, "10000", cfg.Amounts.FundingUnits)
	assert.InDelta(t, 1e-5, cfg.Amounts.RelativeApprox, 1e-12)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
node:
  rpc_url: http://anvil:8545
  namespace: hardhat
  tx_timeout: 5s
  fund_gas: false
accounts:
  user: 6
amounts:
  deposit_units: "250"
logging:
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://anvil:8545", cfg.Node.RPCURL)
	assert.Equal(t, "hardhat", cfg.Node.Namespace)
	assert.Equal(t, 5*time.Second, cfg.Node.TxTimeout)
	assert.False(t, cfg.Node.FundGas)
	assert.Equal(t, 6, cfg.Accounts.User)
	assert.Equal(t, "250", cfg.Amounts.DepositUnits)
	assert.Equal(t, "json", cfg.Logging.Format)
	// untouched sections keep their defaults
	assert.Equal(t, "10000", cfg.Amounts.FundingUnits)
	assert.Equal(t, 4, cfg.Accounts.Strategist)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvRPCURL, "http://from-env:8545")
	t.Setenv(EnvForkURL, "https://rpc.ftm.tools")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:8545", cfg.Node.RPCURL)
	assert.Equal(t, "https://rpc.ftm.tools", cfg.Node.Container.ForkURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad namespace", "node:\n  namespace: ganache\n"},
		{"bad token address", "contracts:\n  token: not-an-address\n"},
		{"debt ratio above 100%", "strategy:\n  debt_ratio: 10001\n"},
		{"container without fork url", "node:\n  container:\n    enabled: true\n"},
		{"bad log format", "logging:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = NewLogger(LoggingConfig{Level: "loud", Format: "json"})
	require.Error(t, err)
}

func TestLoad_ExampleMatchesDefaults(t *testing.T) {
	t.Setenv(EnvRPCURL, "")
	t.Setenv(EnvForkURL, "")

	cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)

	want, err := Default()
	require.NoError(t, err)
	assert.Equal(t, want, cfg)
}
