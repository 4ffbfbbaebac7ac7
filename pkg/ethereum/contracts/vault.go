package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// StrategyParams mirrors the vault's per-strategy accounting record
type StrategyParams struct {
	PerformanceFee    *big.Int
	Activation        *big.Int
	DebtRatio         *big.Int
	MinDebtPerHarvest *big.Int
	MaxDebtPerHarvest *big.Int
	LastReport        *big.Int
	TotalDebt         *big.Int
	TotalGain         *big.Int
	TotalLoss         *big.Int
}

// StrategyTerms are the registration parameters passed to addStrategy
type StrategyTerms struct {
	DebtRatio         *big.Int
	MinDebtPerHarvest *big.Int
	MaxDebtPerHarvest *big.Int
	PerformanceFee    *big.Int
}

// Vault is a yearn vault handle
type Vault struct {
	*BoundContract
}

// NewVault binds the vault interface at address
func NewVault(address common.Address, backend Backend) (*Vault, error) {
	parsed, err := ParseABI(VaultABI)
	if err != nil {
		return nil, err
	}
	return &Vault{NewBoundContract("vault", address, parsed, backend)}, nil
}

// Initialize binds the vault to its token and governance roles
func (v *Vault) Initialize(
	ctx context.Context,
	from common.Address,
	token, governance, rewards common.Address,
	nameOverride, symbolOverride string,
	guardian common.Address,
) (*types.Receipt, error) {
	return v.Transact(ctx, from, "initialize", token, governance, rewards, nameOverride, symbolOverride, guardian)
}

// SetDepositLimit caps total deposits; governance only
func (v *Vault) SetDepositLimit(ctx context.Context, from common.Address, limit *big.Int) (*types.Receipt, error) {
	return v.Transact(ctx, from, "setDepositLimit", limit)
}

// SetManagement assigns the management role; governance only
func (v *Vault) SetManagement(ctx context.Context, from common.Address, management common.Address) (*types.Receipt, error) {
	return v.Transact(ctx, from, "setManagement", management)
}

// AddStrategy registers a strategy; governance only
func (v *Vault) AddStrategy(ctx context.Context, from common.Address, strategy common.Address, terms StrategyTerms) (*types.Receipt, error) {
	return v.Transact(ctx, from, "addStrategy",
		strategy,
		terms.DebtRatio,
		terms.MinDebtPerHarvest,
		terms.MaxDebtPerHarvest,
		terms.PerformanceFee,
	)
}

// RevokeStrategy sets a strategy's debt ratio to zero
func (v *Vault) RevokeStrategy(ctx context.Context, from common.Address, strategy common.Address) (*types.Receipt, error) {
	return v.Transact(ctx, from, "revokeStrategy", strategy)
}

// DepositAll deposits the sender's entire token balance
func (v *Vault) DepositAll(ctx context.Context, from common.Address) (*types.Receipt, error) {
	return v.Transact(ctx, from, "deposit")
}

// Deposit deposits amount from the sender
func (v *Vault) Deposit(ctx context.Context, from common.Address, amount *big.Int) (*types.Receipt, error) {
	return v.Transact(ctx, from, "deposit0", amount)
}

// Token returns the vault's underlying token
func (v *Vault) Token(ctx context.Context) (common.Address, error) {
	return v.callAddress(ctx, "token")
}

// Governance returns the governance address
func (v *Vault) Governance(ctx context.Context) (common.Address, error) {
	return v.callAddress(ctx, "governance")
}

// Management returns the management address
func (v *Vault) Management(ctx context.Context) (common.Address, error) {
	return v.callAddress(ctx, "management")
}

// DepositLimit returns the configured deposit cap
func (v *Vault) DepositLimit(ctx context.Context) (*big.Int, error) {
	return v.callBig(ctx, "depositLimit")
}

// TotalAssets returns the vault's idle plus deployed assets
func (v *Vault) TotalAssets(ctx context.Context) (*big.Int, error) {
	return v.callBig(ctx, "totalAssets")
}

// PricePerShare returns the share price in token units
func (v *Vault) PricePerShare(ctx context.Context) (*big.Int, error) {
	return v.callBig(ctx, "pricePerShare")
}

// BalanceOf returns the share balance of owner
func (v *Vault) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return v.callBig(ctx, "balanceOf", owner)
}

// Strategies returns the vault's accounting record for strategy
func (v *Vault) Strategies(ctx context.Context, strategy common.Address) (*StrategyParams, error) {
	values, err := v.Call(ctx, "strategies", strategy)
	if err != nil {
		return nil, err
	}
	if len(values) != 9 {
		return nil, fmt.Errorf("vault.strategies returned %d values, want 9", len(values))
	}

	fields := make([]*big.Int, len(values))
	for i, raw := range values {
		b, ok := raw.(*big.Int)
		if !ok {
			return nil, fmt.Errorf("vault.strategies value %d is %T, want *big.Int", i, raw)
		}
		fields[i] = b
	}

	return &StrategyParams{
		PerformanceFee:    fields[0],
		Activation:        fields[1],
		DebtRatio:         fields[2],
		MinDebtPerHarvest: fields[3],
		MaxDebtPerHarvest: fields[4],
		LastReport:        fields[5],
		TotalDebt:         fields[6],
		TotalGain:         fields[7],
		TotalLoss:         fields[8],
	}, nil
}
