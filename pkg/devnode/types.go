package devnode

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// CallArgs represents the arguments to eth_call
type CallArgs struct {
	From  *common.Address `json:"from"`
	To    *common.Address `json:"to"`
	Gas   *hexutil.Uint64 `json:"gas"`
	Value *hexutil.Big    `json:"value"`
	Data  *hexutil.Bytes  `json:"data"`
	Input *hexutil.Bytes  `json:"input"`
}

// GetData returns the input data, preferring 'input' over 'data'
func (args *CallArgs) GetData() []byte {
	if args.Input != nil {
		return *args.Input
	}
	if args.Data != nil {
		return *args.Data
	}
	return nil
}

// SendTxArgs represents the arguments to eth_sendTransaction
type SendTxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Gas   *hexutil.Uint64 `json:"gas"`
	Value *hexutil.Big    `json:"value"`
	Data  *hexutil.Bytes  `json:"data"`
	Input *hexutil.Bytes  `json:"input"`
}

// GetData returns the input data, preferring 'input' over 'data'
func (args *SendTxArgs) GetData() []byte {
	if args.Input != nil {
		return *args.Input
	}
	if args.Data != nil {
		return *args.Data
	}
	return nil
}

// RPCReceipt represents a transaction receipt in JSON-RPC format
type RPCReceipt struct {
	TransactionHash   common.Hash     `json:"transactionHash"`
	TransactionIndex  hexutil.Uint    `json:"transactionIndex"`
	BlockHash         common.Hash     `json:"blockHash"`
	BlockNumber       hexutil.Uint64  `json:"blockNumber"`
	From              common.Address  `json:"from"`
	To                *common.Address `json:"to"`
	CumulativeGasUsed hexutil.Uint64  `json:"cumulativeGasUsed"`
	GasUsed           hexutil.Uint64  `json:"gasUsed"`
	ContractAddress   *common.Address `json:"contractAddress"`
	Logs              []*types.Log    `json:"logs"`
	LogsBloom         types.Bloom     `json:"logsBloom"`
	Status            hexutil.Uint64  `json:"status"`
	EffectiveGasPrice hexutil.Uint64  `json:"effectiveGasPrice"`
	Type              hexutil.Uint64  `json:"type"`
}

// Transaction is a transaction accepted by the node, decoded against the
// registered ABIs where possible.
type Transaction struct {
	Hash     common.Hash
	From     common.Address
	To       *common.Address
	Value    *big.Int
	Data     []byte
	Reverted bool

	// Method and Args are empty for deployments, plain transfers and
	// selectors no registered ABI knows.
	Method string
	Args   []interface{}

	// Created is set for contract deployments.
	Created common.Address
}

// IsDeployment reports whether the transaction created a contract
func (tx Transaction) IsDeployment() bool {
	return tx.To == nil
}

// CallHandler answers eth_call for a decoded method. The returned values
// are packed with the method's output types.
type CallHandler func(to common.Address, args []interface{}) ([]interface{}, error)

// state is the part of the node captured by evm_snapshot
type state struct {
	block        uint64
	txs          []Transaction
	receipts     map[common.Hash]*RPCReceipt
	nonces       map[common.Address]uint64
	balances     map[common.Address]*big.Int
	codes        map[common.Address][]byte
	impersonated map[common.Address]bool
}

func (s *state) clone() state {
	c := state{
		block:        s.block,
		txs:          append([]Transaction(nil), s.txs...),
		receipts:     make(map[common.Hash]*RPCReceipt, len(s.receipts)),
		nonces:       make(map[common.Address]uint64, len(s.nonces)),
		balances:     make(map[common.Address]*big.Int, len(s.balances)),
		codes:        make(map[common.Address][]byte, len(s.codes)),
		impersonated: make(map[common.Address]bool, len(s.impersonated)),
	}
	for k, v := range s.receipts {
		c.receipts[k] = v
	}
	for k, v := range s.nonces {
		c.nonces[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = new(big.Int).Set(v)
	}
	for k, v := range s.codes {
		c.codes[k] = v
	}
	for k, v := range s.impersonated {
		c.impersonated[k] = v
	}
	return c
}
