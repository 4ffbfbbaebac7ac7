package scenario

import (
	"context"
	"math/big"
	"testing"

	"github.com/chainsafe/strategy-harness/pkg/config"
	"github.com/chainsafe/strategy-harness/pkg/devnode"
	"github.com/chainsafe/strategy-harness/pkg/ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRunner(t *testing.T) (*Runner, *devnode.Node) {
	t.Helper()

	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Artifacts.Vault = "../fixtures/testdata/Vault.json"
	cfg.Artifacts.Strategy = "../fixtures/testdata/FusdtCurveIce.json"

	node, err := NewDryRunNode(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(node.Close)

	client, err := ethereum.NewClient(context.Background(), node.Client(), &cfg.Node, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return NewRunner(client, cfg, zap.NewNop()), node
}

func labels(rep *Report) []string {
	out := make([]string, 0, len(rep.Transactions))
	for _, tx := range rep.Transactions {
		out = append(out, tx.Label)
	}
	return out
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"deposit-harvest", "emergency-exit"}, Names())

	all, err := Lookup(All)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "deposit-harvest", all[0].Name)

	one, err := Lookup("emergency-exit")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "emergency-exit", one[0].Name)

	_, err = Lookup("withdraw")
	require.ErrorIs(t, err, ErrUnknownScenario)
}

func TestRunner_DepositHarvest(t *testing.T) {
	runner, node := newTestRunner(t)

	rep, err := runner.Run(context.Background(), DepositHarvest)
	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, "deposit-harvest", rep.Scenario)
	assert.NoError(t, rep.Err)
	assert.Equal(t, []string{"token.transfer", "token.approve", "vault.deposit", "strategy.harvest"}, labels(rep))

	deposit := big.NewInt(1_000_000_000)
	assert.Zero(t, deposit.Cmp(rep.Deposit))
	assert.Zero(t, deposit.Cmp(rep.UserShares))
	assert.Zero(t, deposit.Cmp(rep.StrategyDebt))
	assert.Zero(t, deposit.Cmp(rep.TotalAssets))

	assert.Empty(t, node.Transactions(), "chain should be reset after the run")
}

func TestRunner_EmergencyExit(t *testing.T) {
	runner, _ := newTestRunner(t)

	rep, err := runner.Run(context.Background(), EmergencyExit)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"token.transfer",
		"token.approve",
		"vault.deposit",
		"strategy.harvest",
		"strategy.setEmergencyExit",
		"strategy.harvest",
	}, labels(rep))
	assert.Zero(t, rep.StrategyDebt.Sign())
	assert.Zero(t, rep.Deposit.Cmp(rep.TotalAssets))
}

func TestRunner_EmergencyExitDebtRemains(t *testing.T) {
	runner, node := newTestRunner(t)
	node.HandleCall("strategies", func(common.Address, []interface{}) ([]interface{}, error) {
		out := make([]interface{}, 9)
		for i := range out {
			out[i] = big.NewInt(1)
		}
		return out, nil
	})

	rep, err := runner.Run(context.Background(), EmergencyExit)
	require.ErrorIs(t, err, ErrAssertion)
	assert.ErrorIs(t, rep.Err, ErrAssertion)
}

func TestRunner_EmergencyExitAssetsShort(t *testing.T) {
	runner, node := newTestRunner(t)
	node.HandleConst("totalAssets", big.NewInt(999_000_000))

	_, err := runner.Run(context.Background(), EmergencyExit)
	require.ErrorIs(t, err, ErrAssertion)
	assert.Contains(t, err.Error(), "total assets")
}

func TestRunner_HarvestReverts(t *testing.T) {
	runner, node := newTestRunner(t)
	node.RevertOn("harvest")

	rep, err := runner.Run(context.Background(), DepositHarvest)
	require.ErrorIs(t, err, ethereum.ErrReverted)
	assert.Contains(t, err.Error(), "strategy.harvest")

	// the reverted receipt is still recorded
	assert.Equal(t, []string{"token.transfer", "token.approve", "vault.deposit", "strategy.harvest"}, labels(rep))
	assert.Nil(t, rep.UserShares)
	assert.Empty(t, node.Transactions())
}

func TestRunner_RunAllStopsAtFirstFailure(t *testing.T) {
	runner, node := newTestRunner(t)
	node.RevertOn("deposit")

	all, err := Lookup(All)
	require.NoError(t, err)

	reports, err := runner.RunAll(context.Background(), all)
	require.ErrorIs(t, err, ethereum.ErrReverted)
	require.Len(t, reports, 1)
	assert.Equal(t, "deposit-harvest", reports[0].Scenario)
}

func TestRunner_Isolation(t *testing.T) {
	runner, _ := newTestRunner(t)

	first, err := runner.Run(context.Background(), DepositHarvest)
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), DepositHarvest)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Zero(t, first.UserShares.Cmp(second.UserShares))
	assert.Equal(t, first.Transactions[0].Hash, second.Transactions[0].Hash)
}
