package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Strategy is a yearn BaseStrategy handle
type Strategy struct {
	*BoundContract
}

// NewStrategy binds the strategy interface at address
func NewStrategy(address common.Address, backend Backend) (*Strategy, error) {
	parsed, err := ParseABI(StrategyABI)
	if err != nil {
		return nil, err
	}
	return &Strategy{NewBoundContract("strategy", address, parsed, backend)}, nil
}

// Harvest realizes profit or loss and reports it to the vault
func (s *Strategy) Harvest(ctx context.Context, from common.Address) (*types.Receipt, error) {
	return s.Transact(ctx, from, "harvest")
}

// SetKeeper assigns the keeper role
func (s *Strategy) SetKeeper(ctx context.Context, from common.Address, keeper common.Address) (*types.Receipt, error) {
	return s.Transact(ctx, from, "setKeeper", keeper)
}

// SetEmergencyExit makes the next harvest return all funds to the vault
func (s *Strategy) SetEmergencyExit(ctx context.Context, from common.Address) (*types.Receipt, error) {
	return s.Transact(ctx, from, "setEmergencyExit")
}

// EstimatedTotalAssets returns the strategy's own view of its assets
func (s *Strategy) EstimatedTotalAssets(ctx context.Context) (*big.Int, error) {
	return s.callBig(ctx, "estimatedTotalAssets")
}

// EmergencyExit reports whether emergency exit is active
func (s *Strategy) EmergencyExit(ctx context.Context) (bool, error) {
	values, err := s.Call(ctx, "emergencyExit")
	if err != nil {
		return false, err
	}
	b, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("strategy.emergencyExit returned %T, want bool", values[0])
	}
	return b, nil
}

// Vault returns the vault the strategy reports to
func (s *Strategy) Vault(ctx context.Context) (common.Address, error) {
	return s.callAddress(ctx, "vault")
}

// Keeper returns the keeper address
func (s *Strategy) Keeper(ctx context.Context) (common.Address, error) {
	return s.callAddress(ctx, "keeper")
}

// Want returns the token the strategy manages
func (s *Strategy) Want(ctx context.Context) (common.Address, error) {
	return s.callAddress(ctx, "want")
}
