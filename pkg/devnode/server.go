// Package devnode implements an in-process development chain that speaks the
// subset of the eth, net, web3, anvil/hardhat and evm JSON-RPC namespaces the harness
// relies on. It executes no EVM code: transactions are recorded and decoded
// against registered ABIs, and eth_call is answered by registered handlers.
package devnode

import (
	"fmt"
	"math/big"
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// DefaultChainID matches anvil's default
const DefaultChainID = 31337

// Option configures the node
type Option func(*Node)

// WithChainID sets the chain id returned by eth_chainId
func WithChainID(id uint64) Option {
	return func(n *Node) { n.chainID = id }
}

// WithLogger sets the node logger
func WithLogger(l *zap.Logger) Option {
	return func(n *Node) { n.logger = l }
}

// WithAccounts sets the number of unlocked accounts
func WithAccounts(count int) Option {
	return func(n *Node) { n.accountCount = count }
}

// WithABI registers ABIs used to decode transactions and calls
func WithABI(abis ...abi.ABI) Option {
	return func(n *Node) { n.abis = append(n.abis, abis...) }
}

// Node is an in-process dev chain
type Node struct {
	mu sync.Mutex

	chainID      uint64
	accountCount int
	logger       *zap.Logger

	accounts  []common.Address
	abis      []abi.ABI
	handlers  map[string]CallHandler
	reverts   map[string]bool
	state     state
	snapshots []state

	rpcServer *rpc.Server
}

// New creates a node with funded unlocked accounts
func New(opts ...Option) (*Node, error) {
	n := &Node{
		chainID:      DefaultChainID,
		accountCount: 10,
		logger:       zap.NewNop(),
		handlers:     make(map[string]CallHandler),
		reverts:      make(map[string]bool),
		state: state{
			receipts:     make(map[common.Hash]*RPCReceipt),
			nonces:       make(map[common.Address]uint64),
			balances:     make(map[common.Address]*big.Int),
			codes:        make(map[common.Address][]byte),
			impersonated: make(map[common.Address]bool),
		},
		rpcServer: rpc.NewServer(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}

	initial := new(big.Int).Mul(big.NewInt(10_000), big.NewInt(params.Ether))
	for i := 0; i < n.accountCount; i++ {
		addr := common.BytesToAddress(crypto.Keccak256([]byte(fmt.Sprintf("devnode-account-%d", i))))
		n.accounts = append(n.accounts, addr)
		n.state.balances[addr] = new(big.Int).Set(initial)
	}

	if err := n.rpcServer.RegisterName("eth", &EthAPI{node: n}); err != nil {
		return nil, fmt.Errorf("failed to register eth API: %w", err)
	}
	cheats := &CheatAPI{node: n}
	for _, ns := range []string{"anvil", "hardhat"} {
		if err := n.rpcServer.RegisterName(ns, cheats); err != nil {
			return nil, fmt.Errorf("failed to register %s API: %w", ns, err)
		}
	}
	if err := n.rpcServer.RegisterName("evm", &EvmAPI{node: n}); err != nil {
		return nil, fmt.Errorf("failed to register evm API: %w", err)
	}
	if err := n.rpcServer.RegisterName("net", &NetAPI{node: n}); err != nil {
		return nil, fmt.Errorf("failed to register net API: %w", err)
	}
	if err := n.rpcServer.RegisterName("web3", &Web3API{}); err != nil {
		return nil, fmt.Errorf("failed to register web3 API: %w", err)
	}

	n.logger.Info("Dev node initialized",
		zap.Uint64("chain_id", n.chainID),
		zap.Int("accounts", len(n.accounts)))

	return n, nil
}

// Client returns an in-process RPC client connected to the node
func (n *Node) Client() *rpc.Client {
	return rpc.DialInProc(n.rpcServer)
}

// ServeHTTP handles HTTP JSON-RPC requests
func (n *Node) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.rpcServer.ServeHTTP(w, r)
}

// Close stops the RPC server
func (n *Node) Close() {
	n.rpcServer.Stop()
}

// Accounts returns the unlocked accounts
func (n *Node) Accounts() []common.Address {
	return append([]common.Address(nil), n.accounts...)
}

// HandleCall registers the eth_call responder for a method name
func (n *Node) HandleCall(method string, h CallHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = h
}

// HandleConst registers a responder that always returns the same values
func (n *Node) HandleConst(method string, values ...interface{}) {
	n.HandleCall(method, func(common.Address, []interface{}) ([]interface{}, error) {
		return values, nil
	})
}

// RevertOn makes every transaction calling method mine with a failed status
func (n *Node) RevertOn(method string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reverts[method] = true
}

// Transactions returns the accepted transactions in order
func (n *Node) Transactions() []Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Transaction(nil), n.state.txs...)
}

// Calls returns the accepted transactions that invoked method
func (n *Node) Calls(method string) []Transaction {
	var out []Transaction
	for _, tx := range n.Transactions() {
		if tx.Method == method {
			out = append(out, tx)
		}
	}
	return out
}

// Deployments returns the contract creation transactions in order
func (n *Node) Deployments() []Transaction {
	var out []Transaction
	for _, tx := range n.Transactions() {
		if tx.IsDeployment() {
			out = append(out, tx)
		}
	}
	return out
}

// IsImpersonated reports whether addr is currently impersonated
func (n *Node) IsImpersonated(addr common.Address) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.impersonated[addr]
}

// Balance returns the native balance of addr
func (n *Node) Balance(addr common.Address) *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.balanceLocked(addr)
}

func (n *Node) balanceLocked(addr common.Address) *big.Int {
	if b, ok := n.state.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (n *Node) canSign(addr common.Address) bool {
	if n.state.impersonated[addr] {
		return true
	}
	for _, a := range n.accounts {
		if a == addr {
			return true
		}
	}
	return false
}

// decode resolves a selector against the registered ABIs
func (n *Node) decode(data []byte) (*abi.Method, []interface{}, error) {
	if len(data) < 4 {
		return nil, nil, nil
	}
	for i := range n.abis {
		method, err := n.abis[i].MethodById(data[:4])
		if err != nil {
			continue
		}
		// overloads share RawName, which is what handlers are keyed by
		args, err := method.Inputs.Unpack(data[4:])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode %s arguments: %w", method.Name, err)
		}
		return method, args, nil
	}
	return nil, nil, nil
}
