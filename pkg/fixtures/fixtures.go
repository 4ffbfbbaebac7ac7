// Package fixtures builds the on-chain test environment for a strategy run:
// the account roster, pinned token and pool handles, whale funding, and the
// vault and strategy deployments. Each fixture is created on first use and
// memoized, so requesting the strategy transparently deploys the vault.
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/chainsafe/strategy-harness/pkg/artifact"
	"github.com/chainsafe/strategy-harness/pkg/config"
	"github.com/chainsafe/strategy-harness/pkg/ethereum"
	"github.com/chainsafe/strategy-harness/pkg/ethereum/contracts"
	"github.com/chainsafe/strategy-harness/pkg/units"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ErrClosed is returned by fixtures used after Close
var ErrClosed = errors.New("fixtures closed")

// Node is the dev node surface fixtures need. *ethereum.Client implements it.
type Node interface {
	contracts.Backend
	Accounts(ctx context.Context) ([]common.Address, error)
	Impersonate(ctx context.Context, addr common.Address) error
	Snapshot(ctx context.Context) (*ethereum.SnapshotID, error)
	Revert(ctx context.Context, id *ethereum.SnapshotID) error
}

// Fixtures is one isolated fixture set. The chain is snapshotted on New and
// reverted on Close. Not safe for concurrent use.
type Fixtures struct {
	node   Node
	cfg    *config.Config
	logger *zap.Logger

	snapshot *ethereum.SnapshotID
	closed   bool

	roster        *Roster
	token         *contracts.ERC20
	tokenDecimals *uint8
	whale         *common.Address
	amount        *big.Int
	weth          *contracts.WETH
	wethAmount    *big.Int
	curvePool     *contracts.CurvePool
	vault         *contracts.Vault
	strategy      *contracts.Strategy
}

// New snapshots the chain and returns an empty fixture set
func New(ctx context.Context, node Node, cfg *config.Config, logger *zap.Logger) (*Fixtures, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	id, err := node.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot chain: %w", err)
	}

	return &Fixtures{
		node:     node,
		cfg:      cfg,
		logger:   logger,
		snapshot: id,
	}, nil
}

// Close reverts the chain to the snapshot taken by New
func (f *Fixtures) Close(ctx context.Context) error {
	if f.closed {
		return nil
	}
	f.closed = true

	if err := f.node.Revert(ctx, f.snapshot); err != nil {
		return fmt.Errorf("failed to reset chain: %w", err)
	}
	f.logger.Debug("Fixtures closed, chain reset")
	return nil
}

// RelativeApprox is the tolerance for approximate amount assertions
func (f *Fixtures) RelativeApprox() float64 {
	return f.cfg.Amounts.RelativeApprox
}

// Roster resolves the labeled identities from the node's accounts
func (f *Fixtures) Roster(ctx context.Context) (*Roster, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	if f.roster != nil {
		return f.roster, nil
	}

	accounts, err := f.node.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	roster, err := ResolveRoster(accounts, f.cfg.Accounts)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Resolved account roster", roster.Fields()...)
	f.roster = roster
	return roster, nil
}

// Token binds the pinned want token
func (f *Fixtures) Token(ctx context.Context) (*contracts.ERC20, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	if f.token != nil {
		return f.token, nil
	}

	token, err := contracts.NewERC20("token", common.HexToAddress(f.cfg.Contracts.Token), f.node)
	if err != nil {
		return nil, err
	}
	f.token = token
	return token, nil
}

// TokenDecimals returns the token's declared precision
func (f *Fixtures) TokenDecimals(ctx context.Context) (uint8, error) {
	if f.tokenDecimals != nil {
		return *f.tokenDecimals, nil
	}

	token, err := f.Token(ctx)
	if err != nil {
		return 0, err
	}
	decimals, err := token.Decimals(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get token decimals: %w", err)
	}
	f.tokenDecimals = &decimals
	return decimals, nil
}

// TokenWhale impersonates the pinned large holder of the token
func (f *Fixtures) TokenWhale(ctx context.Context) (common.Address, error) {
	if err := f.check(); err != nil {
		return common.Address{}, err
	}
	if f.whale != nil {
		return *f.whale, nil
	}

	whale := common.HexToAddress(f.cfg.Contracts.TokenWhale)
	if err := f.node.Impersonate(ctx, whale); err != nil {
		return common.Address{}, err
	}

	f.logger.Info("Impersonated token whale", zap.String("address", whale.Hex()))
	f.whale = &whale
	return whale, nil
}

// Amount funds governance with the configured number of whole tokens, drawn
// from an impersonated reserve, and returns the amount in base units.
func (f *Fixtures) Amount(ctx context.Context) (*big.Int, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	if f.amount != nil {
		return new(big.Int).Set(f.amount), nil
	}

	roster, err := f.Roster(ctx)
	if err != nil {
		return nil, err
	}
	token, err := f.Token(ctx)
	if err != nil {
		return nil, err
	}
	decimals, err := f.TokenDecimals(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := units.Scale(f.cfg.Amounts.FundingUnits, decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid funding amount: %w", err)
	}

	reserve := common.HexToAddress(f.cfg.Contracts.Reserve)
	if err := f.node.Impersonate(ctx, reserve); err != nil {
		return nil, err
	}
	if _, err := token.Transfer(ctx, reserve, roster.Gov, amount); err != nil {
		return nil, fmt.Errorf("failed to fund governance from reserve: %w", err)
	}

	f.logger.Info("Funded governance",
		zap.String("reserve", reserve.Hex()),
		zap.String("amount", units.Format(amount, decimals)))

	f.amount = amount
	return new(big.Int).Set(amount), nil
}

// DepositAmount is the configured user deposit in token base units
func (f *Fixtures) DepositAmount(ctx context.Context) (*big.Int, error) {
	decimals, err := f.TokenDecimals(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := units.Scale(f.cfg.Amounts.DepositUnits, decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid deposit amount: %w", err)
	}
	return amount, nil
}

// WETH binds the pinned wrapped-native token
func (f *Fixtures) WETH(ctx context.Context) (*contracts.WETH, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	if f.weth != nil {
		return f.weth, nil
	}

	weth, err := contracts.NewWETH(common.HexToAddress(f.cfg.Contracts.WETH), f.node)
	if err != nil {
		return nil, err
	}
	f.weth = weth
	return weth, nil
}

// WETHAmount has governance wrap one whole unit of the native token
func (f *Fixtures) WETHAmount(ctx context.Context) (*big.Int, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	if f.wethAmount != nil {
		return new(big.Int).Set(f.wethAmount), nil
	}

	roster, err := f.Roster(ctx)
	if err != nil {
		return nil, err
	}
	weth, err := f.WETH(ctx)
	if err != nil {
		return nil, err
	}
	decimals, err := weth.Decimals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get weth decimals: %w", err)
	}

	amount := units.One(decimals)
	if _, err := weth.Wrap(ctx, roster.Gov, amount); err != nil {
		return nil, fmt.Errorf("failed to wrap native token: %w", err)
	}

	f.wethAmount = amount
	return new(big.Int).Set(amount), nil
}

// CurvePool binds the pinned liquidity pool
func (f *Fixtures) CurvePool(ctx context.Context) (*contracts.CurvePool, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	if f.curvePool != nil {
		return f.curvePool, nil
	}

	pool, err := contracts.NewCurvePool(common.HexToAddress(f.cfg.Contracts.CurvePool), f.node)
	if err != nil {
		return nil, err
	}
	f.curvePool = pool
	return pool, nil
}

// Vault deploys the vault from guardian, initializes it, lifts the deposit
// limit and assigns management.
func (f *Fixtures) Vault(ctx context.Context) (*contracts.Vault, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	if f.vault != nil {
		return f.vault, nil
	}

	roster, err := f.Roster(ctx)
	if err != nil {
		return nil, err
	}
	token, err := f.Token(ctx)
	if err != nil {
		return nil, err
	}
	limit, err := units.ParseInt(f.cfg.Vault.DepositLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid deposit limit: %w", err)
	}

	art, err := artifact.Load(f.cfg.Artifacts.Vault)
	if err != nil {
		return nil, err
	}
	addr, _, err := contracts.Deploy(ctx, f.node, roster.Guardian, art)
	if err != nil {
		return nil, err
	}
	vault, err := contracts.NewVault(addr, f.node)
	if err != nil {
		return nil, err
	}

	if _, err := vault.Initialize(ctx, roster.Guardian,
		token.Address(), roster.Gov, roster.Rewards,
		f.cfg.Vault.NameOverride, f.cfg.Vault.SymbolOverride,
		roster.Guardian,
	); err != nil {
		return nil, fmt.Errorf("failed to initialize vault: %w", err)
	}
	if _, err := vault.SetDepositLimit(ctx, roster.Gov, limit); err != nil {
		return nil, fmt.Errorf("failed to set deposit limit: %w", err)
	}
	if _, err := vault.SetManagement(ctx, roster.Gov, roster.Management); err != nil {
		return nil, fmt.Errorf("failed to set management: %w", err)
	}

	f.logger.Info("Vault deployed",
		zap.String("address", addr.Hex()),
		zap.String("token", token.Address().Hex()))

	f.vault = vault
	return vault, nil
}

// Strategy deploys the strategy against the vault from strategist, assigns
// the keeper and registers it with the vault.
func (f *Fixtures) Strategy(ctx context.Context) (*contracts.Strategy, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	if f.strategy != nil {
		return f.strategy, nil
	}

	terms, initParam, err := f.strategyTerms()
	if err != nil {
		return nil, err
	}
	roster, err := f.Roster(ctx)
	if err != nil {
		return nil, err
	}
	vault, err := f.Vault(ctx)
	if err != nil {
		return nil, err
	}

	art, err := artifact.Load(f.cfg.Artifacts.Strategy)
	if err != nil {
		return nil, err
	}
	addr, _, err := contracts.Deploy(ctx, f.node, roster.Strategist, art, vault.Address(), initParam)
	if err != nil {
		return nil, err
	}
	strategy, err := contracts.NewStrategy(addr, f.node)
	if err != nil {
		return nil, err
	}

	if _, err := strategy.SetKeeper(ctx, roster.Strategist, roster.Keeper); err != nil {
		return nil, fmt.Errorf("failed to set keeper: %w", err)
	}
	if _, err := vault.AddStrategy(ctx, roster.Gov, addr, terms); err != nil {
		return nil, fmt.Errorf("failed to add strategy: %w", err)
	}

	f.logger.Info("Strategy deployed",
		zap.String("address", addr.Hex()),
		zap.String("contract", art.Name),
		zap.String("vault", vault.Address().Hex()))

	f.strategy = strategy
	return strategy, nil
}

func (f *Fixtures) strategyTerms() (contracts.StrategyTerms, *big.Int, error) {
	sc := f.cfg.Strategy

	initParam, err := units.ParseInt(sc.InitParam)
	if err != nil {
		return contracts.StrategyTerms{}, nil, fmt.Errorf("invalid strategy init param: %w", err)
	}
	minDebt, err := units.ParseInt(sc.MinDebtPerHarvest)
	if err != nil {
		return contracts.StrategyTerms{}, nil, fmt.Errorf("invalid min debt per harvest: %w", err)
	}
	maxDebt, err := units.ParseInt(sc.MaxDebtPerHarvest)
	if err != nil {
		return contracts.StrategyTerms{}, nil, fmt.Errorf("invalid max debt per harvest: %w", err)
	}

	return contracts.StrategyTerms{
		DebtRatio:         big.NewInt(sc.DebtRatio),
		MinDebtPerHarvest: minDebt,
		MaxDebtPerHarvest: maxDebt,
		PerformanceFee:    big.NewInt(sc.PerformanceFee),
	}, initParam, nil
}

func (f *Fixtures) check() error {
	if f.closed {
		return ErrClosed
	}
	return nil
}
