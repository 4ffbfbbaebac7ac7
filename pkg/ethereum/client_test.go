package ethereum

import (
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/chainsafe/strategy-harness/pkg/config"
	"github.com/chainsafe/strategy-harness/pkg/devnode"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const pingABI = `[{"type":"function","name":"ping","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"nonpayable"}]`

func newTestClient(t *testing.T, nodeCfg config.NodeConfig, opts ...devnode.Option) (*Client, *devnode.Node) {
	t.Helper()

	node, err := devnode.New(opts...)
	require.NoError(t, err)
	t.Cleanup(node.Close)

	if nodeCfg.Namespace == "" {
		nodeCfg.Namespace = "anvil"
	}
	if nodeCfg.TxTimeout == 0 {
		nodeCfg.TxTimeout = 5 * time.Second
	}
	if nodeCfg.GasBalanceWei == "" {
		nodeCfg.GasBalanceWei = "1000000000000000000"
	}

	client, err := NewClient(context.Background(), node.Client(), &nodeCfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client, node
}

func TestClient_ChainIDAndAccounts(t *testing.T) {
	client, node := newTestClient(t, config.NodeConfig{}, devnode.WithChainID(250))

	assert.Equal(t, int64(250), client.ChainID().Int64())

	accounts, err := client.Accounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, node.Accounts(), accounts)
}

func TestClient_ImpersonateFundsGas(t *testing.T) {
	client, node := newTestClient(t, config.NodeConfig{FundGas: true, GasBalanceWei: "5000"})
	whale := common.HexToAddress("0x3e4a7b48c03636dc9f5da7c3d54bf8326f02c8e0")

	require.NoError(t, client.Impersonate(context.Background(), whale))
	assert.True(t, node.IsImpersonated(whale))
	assert.Equal(t, int64(5000), node.Balance(whale).Int64())

	balance, err := client.BalanceAt(context.Background(), whale)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), balance.Int64())

	require.NoError(t, client.StopImpersonating(context.Background(), whale))
	assert.False(t, node.IsImpersonated(whale))
}

func TestClient_ImpersonateWithoutGas(t *testing.T) {
	client, node := newTestClient(t, config.NodeConfig{Namespace: "hardhat", FundGas: false})
	whale := common.HexToAddress("0xd551234ae421e3bcba99a0da6d736074f22192ff")

	require.NoError(t, client.Impersonate(context.Background(), whale))
	assert.True(t, node.IsImpersonated(whale))
	assert.Equal(t, int64(0), node.Balance(whale).Int64())
}

func TestClient_SendTransaction(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(pingABI))
	require.NoError(t, err)
	client, node := newTestClient(t, config.NodeConfig{}, devnode.WithABI(parsed))

	data, err := parsed.Pack("ping")
	require.NoError(t, err)
	to := common.HexToAddress("0x1000000000000000000000000000000000000001")
	from := node.Accounts()[0]

	receipt, err := client.SendTransaction(context.Background(), TxRequest{
		From:  from,
		To:    &to,
		Data:  data,
		Label: "test.ping",
	})
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)

	calls := node.Calls("ping")
	require.Len(t, calls, 1)
	assert.Equal(t, from, calls[0].From)
	assert.Equal(t, receipt.TxHash, calls[0].Hash)
}

func TestClient_SendTransactionValue(t *testing.T) {
	client, node := newTestClient(t, config.NodeConfig{})
	from := node.Accounts()[0]
	to := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")

	_, err := client.SendTransaction(context.Background(), TxRequest{
		From:  from,
		To:    &to,
		Value: big.NewInt(1_000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), node.Balance(to).Int64())
}

func TestClient_SendTransactionReverted(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(pingABI))
	require.NoError(t, err)
	client, node := newTestClient(t, config.NodeConfig{}, devnode.WithABI(parsed))
	node.RevertOn("ping")

	data, err := parsed.Pack("ping")
	require.NoError(t, err)
	to := common.HexToAddress("0x1000000000000000000000000000000000000001")

	receipt, err := client.SendTransaction(context.Background(), TxRequest{
		From:  node.Accounts()[0],
		To:    &to,
		Data:  data,
		Label: "test.ping",
	})
	require.ErrorIs(t, err, ErrReverted)
	require.NotNil(t, receipt)

	var txErr *TxError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "test.ping", txErr.Label)
	assert.Equal(t, receipt.TxHash, txErr.Hash)
}

func TestClient_SendTransactionNoSigner(t *testing.T) {
	client, _ := newTestClient(t, config.NodeConfig{})
	to := common.HexToAddress("0x1000000000000000000000000000000000000001")

	_, err := client.SendTransaction(context.Background(), TxRequest{
		From: common.HexToAddress("0x3e4a7b48c03636dc9f5da7c3d54bf8326f02c8e0"),
		To:   &to,
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrReverted)
	assert.Contains(t, err.Error(), "no signer available")
}

func TestClient_SnapshotRevert(t *testing.T) {
	client, node := newTestClient(t, config.NodeConfig{})
	ctx := context.Background()

	id, err := client.Snapshot(ctx)
	require.NoError(t, err)

	to := node.Accounts()[1]
	_, err = client.SendTransaction(ctx, TxRequest{From: node.Accounts()[0], To: &to, Value: big.NewInt(1)})
	require.NoError(t, err)
	require.Len(t, node.Transactions(), 1)

	require.NoError(t, client.Revert(ctx, id))
	assert.Empty(t, node.Transactions())

	err = client.Revert(ctx, id)
	require.ErrorIs(t, err, ErrSnapshotNotFound)
}
