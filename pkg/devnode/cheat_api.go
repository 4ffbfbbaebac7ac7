package devnode

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// CheatAPI implements the anvil_* and hardhat_* cheatcode namespaces
type CheatAPI struct {
	node *Node
}

// ImpersonateAccount allows transactions from address without its key
func (api *CheatAPI) ImpersonateAccount(address common.Address) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	api.node.state.impersonated[address] = true
	api.node.logger.Debug("Impersonating account", zap.String("address", address.Hex()))
}

// StopImpersonatingAccount revokes ImpersonateAccount
func (api *CheatAPI) StopImpersonatingAccount(address common.Address) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	delete(api.node.state.impersonated, address)
}

// SetBalance overwrites the native balance of address
func (api *CheatAPI) SetBalance(address common.Address, balance hexutil.Big) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	api.node.state.balances[address] = new(big.Int).Set(balance.ToInt())
}

// EvmAPI implements the evm_* namespace
type EvmAPI struct {
	node *Node
}

// Snapshot checkpoints the node state and returns its id
func (api *EvmAPI) Snapshot() hexutil.Uint64 {
	n := api.node
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snapshots = append(n.snapshots, n.state.clone())
	return hexutil.Uint64(len(n.snapshots) - 1)
}

// Revert restores a snapshot, discarding it and every later one
func (api *EvmAPI) Revert(id hexutil.Uint64) bool {
	n := api.node
	n.mu.Lock()
	defer n.mu.Unlock()
	if uint64(id) >= uint64(len(n.snapshots)) {
		return false
	}
	n.state = n.snapshots[id]
	n.snapshots = n.snapshots[:id]
	n.logger.Debug("Reverted to snapshot", zap.Uint64("id", uint64(id)))
	return true
}

// Mine advances the block number without transactions
func (api *EvmAPI) Mine() string {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	api.node.state.block++
	return "0x0"
}
