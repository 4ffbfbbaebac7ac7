package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/chainsafe/strategy-harness/internal/metrics"
	"github.com/chainsafe/strategy-harness/pkg/config"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// Client talks to a development node (anvil or hardhat) whose accounts are
// unlocked and which supports account impersonation and state snapshots.
type Client struct {
	config  *config.NodeConfig
	rpc     *rpc.Client
	eth     *ethclient.Client
	logger  *zap.Logger
	chainID *big.Int
}

// Dial connects to the node at cfg.RPCURL
func Dial(ctx context.Context, cfg *config.NodeConfig, logger *zap.Logger) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to node RPC: %w", err)
	}

	c, err := NewClient(ctx, rpcClient, cfg, logger)
	if err != nil {
		rpcClient.Close()
		return nil, err
	}
	return c, nil
}

// NewClient wraps an established RPC connection
func NewClient(ctx context.Context, rpcClient *rpc.Client, cfg *config.NodeConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	eth := ethclient.NewClient(rpcClient)
	chainID, err := eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	var version string
	if err := rpcClient.CallContext(ctx, &version, "web3_clientVersion"); err != nil {
		logger.Warn("Failed to get node client version", zap.Error(err))
	}

	logger.Info("Connected to dev node",
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("namespace", cfg.Namespace),
		zap.String("client_version", version),
		zap.String("chain_id", chainID.String()))

	return &Client{
		config:  cfg,
		rpc:     rpcClient,
		eth:     eth,
		logger:  logger,
		chainID: chainID,
	}, nil
}

// Close closes the RPC connection
func (c *Client) Close() {
	if c.rpc != nil {
		c.rpc.Close()
	}
}

// ChainID returns the chain id reported by the node
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Eth exposes the typed eth_* client
func (c *Client) Eth() *ethclient.Client {
	return c.eth
}

// Accounts returns the node's unlocked accounts
func (c *Client) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := c.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// Impersonate lets the node accept transactions from addr without its key.
// Gas is topped up when fund_gas is enabled.
func (c *Client) Impersonate(ctx context.Context, addr common.Address) error {
	if err := c.rpc.CallContext(ctx, nil, c.method("impersonateAccount"), addr); err != nil {
		return fmt.Errorf("failed to impersonate %s: %w", addr.Hex(), err)
	}
	metrics.Impersonations.Inc()
	c.logger.Debug("Impersonating account", zap.String("address", addr.Hex()))

	if !c.config.FundGas {
		return nil
	}

	wei, ok := new(big.Int).SetString(c.config.GasBalanceWei, 10)
	if !ok {
		return fmt.Errorf("invalid gas_balance_wei %q", c.config.GasBalanceWei)
	}
	balance, err := c.eth.BalanceAt(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("failed to get balance of %s: %w", addr.Hex(), err)
	}
	if balance.Cmp(wei) >= 0 {
		return nil
	}
	return c.SetBalance(ctx, addr, wei)
}

// StopImpersonating revokes a previous Impersonate
func (c *Client) StopImpersonating(ctx context.Context, addr common.Address) error {
	if err := c.rpc.CallContext(ctx, nil, c.method("stopImpersonatingAccount"), addr); err != nil {
		return fmt.Errorf("failed to stop impersonating %s: %w", addr.Hex(), err)
	}
	return nil
}

// SetBalance overwrites the native balance of addr
func (c *Client) SetBalance(ctx context.Context, addr common.Address, wei *big.Int) error {
	if err := c.rpc.CallContext(ctx, nil, c.method("setBalance"), addr, (*hexutil.Big)(wei)); err != nil {
		return fmt.Errorf("failed to set balance of %s: %w", addr.Hex(), err)
	}
	return nil
}

// BalanceAt returns the latest native balance of addr
func (c *Client) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	balance, err := c.eth.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance of %s: %w", addr.Hex(), err)
	}
	return balance, nil
}

// Snapshot checkpoints the node state
func (c *Client) Snapshot(ctx context.Context) (*SnapshotID, error) {
	var id SnapshotID
	if err := c.rpc.CallContext(ctx, &id, "evm_snapshot"); err != nil {
		return nil, fmt.Errorf("failed to take snapshot: %w", err)
	}
	c.logger.Debug("Took snapshot", zap.String("id", id.String()))
	return &id, nil
}

// Revert restores the node state to a snapshot. Snapshots are single use.
func (c *Client) Revert(ctx context.Context, id *SnapshotID) error {
	var ok bool
	if err := c.rpc.CallContext(ctx, &ok, "evm_revert", id); err != nil {
		return fmt.Errorf("failed to revert to snapshot: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id.String())
	}
	c.logger.Debug("Reverted to snapshot", zap.String("id", id.String()))
	return nil
}

// Call executes a read-only call against the latest block
func (c *Client) Call(ctx context.Context, from common.Address, to common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{From: from, To: &to, Data: data}
	out, err := c.eth.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call to %s failed: %w", to.Hex(), err)
	}
	return out, nil
}

// SendTransaction submits req through eth_sendTransaction, waits for it to
// be mined and returns the receipt. A failed receipt yields a *TxError
// wrapping ErrReverted.
func (c *Client) SendTransaction(ctx context.Context, req TxRequest) (*types.Receipt, error) {
	label := req.Label
	if label == "" {
		label = "transaction"
	}

	var hash common.Hash
	if err := c.rpc.CallContext(ctx, &hash, "eth_sendTransaction", req.args()); err != nil {
		if isRevert(err) {
			metrics.TransactionsSent.WithLabelValues(label, metrics.StatusReverted).Inc()
			return nil, &TxError{Label: label, Err: ErrReverted, Reason: err.Error()}
		}
		metrics.TransactionsSent.WithLabelValues(label, metrics.StatusFailed).Inc()
		return nil, &TxError{Label: label, Err: fmt.Errorf("failed to send transaction: %w", err)}
	}

	receipt, err := c.waitMined(ctx, hash)
	if err != nil {
		metrics.TransactionsSent.WithLabelValues(label, metrics.StatusFailed).Inc()
		return nil, &TxError{Label: label, Hash: hash, Err: fmt.Errorf("failed to wait for receipt: %w", err)}
	}

	metrics.GasUsed.WithLabelValues(label).Observe(float64(receipt.GasUsed))

	if receipt.Status != types.ReceiptStatusSuccessful {
		metrics.TransactionsSent.WithLabelValues(label, metrics.StatusReverted).Inc()
		c.logger.Error("Transaction reverted",
			zap.String("label", label),
			zap.String("from", req.From.Hex()),
			zap.String("tx_hash", hash.Hex()))
		return receipt, &TxError{Label: label, Hash: hash, Err: ErrReverted}
	}

	metrics.TransactionsSent.WithLabelValues(label, metrics.StatusSuccess).Inc()
	c.logger.Debug("Transaction mined",
		zap.String("label", label),
		zap.String("from", req.From.Hex()),
		zap.String("tx_hash", hash.Hex()),
		zap.Uint64("gas_used", receipt.GasUsed))

	return receipt, nil
}

func (c *Client) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	timeout := c.config.TxTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return bind.WaitMined(ctx, c.eth, hash)
}

func (c *Client) method(name string) string {
	ns := c.config.Namespace
	if ns == "" {
		ns = "anvil"
	}
	return ns + "_" + name
}

func isRevert(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "revert")
}
