package devnode

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// errExecutionReverted mirrors the message anvil returns for failed calls
var errExecutionReverted = errors.New("execution reverted")

const (
	txBaseGas        = 21000
	txDataGasPerByte = 16
)

// EthAPI implements the eth_* JSON-RPC namespace
type EthAPI struct {
	node *Node
}

// ChainId returns the chain ID (EIP-155)
func (api *EthAPI) ChainId() hexutil.Uint64 {
	return hexutil.Uint64(api.node.chainID)
}

// BlockNumber returns the latest block number
func (api *EthAPI) BlockNumber() hexutil.Uint64 {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	return hexutil.Uint64(api.node.state.block)
}

// Accounts returns the unlocked accounts
func (api *EthAPI) Accounts() []common.Address {
	return api.node.Accounts()
}

// GasPrice returns a fixed gas price
func (api *EthAPI) GasPrice() *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(1_000_000_000))
}

// GetBalance returns the native balance of an account
func (api *EthAPI) GetBalance(address common.Address, blockNrOrHash *rpc.BlockNumberOrHash) *hexutil.Big {
	return (*hexutil.Big)(api.node.Balance(address))
}

// GetTransactionCount returns the account nonce
func (api *EthAPI) GetTransactionCount(address common.Address, blockNrOrHash *rpc.BlockNumberOrHash) hexutil.Uint64 {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	return hexutil.Uint64(api.node.state.nonces[address])
}

// GetCode returns the creation code recorded for a deployed contract
func (api *EthAPI) GetCode(address common.Address, blockNrOrHash *rpc.BlockNumberOrHash) hexutil.Bytes {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	return api.node.state.codes[address]
}

// SendTransaction accepts a transaction from an unlocked or impersonated
// account and mines it immediately.
func (api *EthAPI) SendTransaction(ctx context.Context, args SendTxArgs) (common.Hash, error) {
	n := api.node
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.canSign(args.From) {
		return common.Hash{}, fmt.Errorf("no signer available for %s", args.From.Hex())
	}

	value := new(big.Int)
	if args.Value != nil {
		value = args.Value.ToInt()
	}
	balance := n.balanceLocked(args.From)
	if balance.Cmp(value) < 0 {
		return common.Hash{}, fmt.Errorf("insufficient funds for transfer: have %s want %s", balance, value)
	}

	data := args.GetData()
	method, decoded, err := n.decode(data)
	if err != nil {
		return common.Hash{}, err
	}

	nonce := n.state.nonces[args.From]
	nonceBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(nonceBytes, nonce)
	hash := crypto.Keccak256Hash(args.From.Bytes(), nonceBytes, data)

	n.state.nonces[args.From] = nonce + 1
	n.state.block++

	tx := Transaction{
		Hash:  hash,
		From:  args.From,
		To:    args.To,
		Value: value,
		Data:  append([]byte(nil), data...),
	}
	if method != nil {
		tx.Method = method.RawName
		tx.Args = decoded
		tx.Reverted = n.reverts[method.RawName]
	}

	receipt := &RPCReceipt{
		TransactionHash:   hash,
		BlockHash:         blockHash(n.chainID, n.state.block),
		BlockNumber:       hexutil.Uint64(n.state.block),
		From:              args.From,
		To:                args.To,
		GasUsed:           hexutil.Uint64(txBaseGas + txDataGasPerByte*uint64(len(data))),
		CumulativeGasUsed: hexutil.Uint64(txBaseGas + txDataGasPerByte*uint64(len(data))),
		Logs:              make([]*types.Log, 0),
		Status:            hexutil.Uint64(types.ReceiptStatusSuccessful),
		EffectiveGasPrice: hexutil.Uint64(1_000_000_000),
		Type:              hexutil.Uint64(types.DynamicFeeTxType),
	}

	switch {
	case tx.Reverted:
		receipt.Status = hexutil.Uint64(types.ReceiptStatusFailed)
	case args.To == nil:
		created := crypto.CreateAddress(args.From, nonce)
		tx.Created = created
		receipt.ContractAddress = &created
		n.state.codes[created] = tx.Data
	default:
		n.state.balances[args.From] = balance.Sub(balance, value)
		to := n.balanceLocked(*args.To)
		n.state.balances[*args.To] = to.Add(to, value)
	}

	n.state.txs = append(n.state.txs, tx)
	n.state.receipts[hash] = receipt

	n.logger.Debug("Transaction accepted",
		zap.String("tx_hash", hash.Hex()),
		zap.String("from", args.From.Hex()),
		zap.String("method", tx.Method),
		zap.Bool("reverted", tx.Reverted))

	return hash, nil
}

// GetTransactionReceipt returns the receipt for a transaction
func (api *EthAPI) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*RPCReceipt, error) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()

	receipt, ok := api.node.state.receipts[hash]
	if !ok {
		return nil, nil
	}
	return receipt, nil
}

// Call answers a read-only call through the registered handlers
func (api *EthAPI) Call(ctx context.Context, args CallArgs, blockNrOrHash *rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	if args.To == nil {
		return nil, errors.New("missing call target")
	}

	n := api.node
	n.mu.Lock()
	method, decoded, err := n.decode(args.GetData())
	var handler CallHandler
	if method != nil {
		handler = n.handlers[method.RawName]
	}
	n.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if method == nil {
		n.logger.Warn("eth_call with unknown selector", zap.String("to", args.To.Hex()))
		return nil, errExecutionReverted
	}
	if handler == nil {
		n.logger.Warn("eth_call without handler",
			zap.String("to", args.To.Hex()),
			zap.String("method", method.RawName))
		return nil, errExecutionReverted
	}

	values, err := handler(*args.To, decoded)
	if err != nil {
		return nil, err
	}
	out, err := method.Outputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s result: %w", method.RawName, err)
	}
	return out, nil
}

// blockHash derives a deterministic hash for a synthetic block
func blockHash(chainID, number uint64) common.Hash {
	data := make([]byte, 16)
	binary.BigEndian.PutUint64(data[0:8], chainID)
	binary.BigEndian.PutUint64(data[8:16], number)
	return sha256.Sum256(data)
}
