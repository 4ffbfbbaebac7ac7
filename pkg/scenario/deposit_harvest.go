package scenario

import (
	"context"
	"fmt"

	"github.com/chainsafe/strategy-harness/pkg/ethereum/contracts"
	"github.com/chainsafe/strategy-harness/pkg/fixtures"
	"github.com/chainsafe/strategy-harness/pkg/units"
	"github.com/ethereum/go-ethereum/core/types"
)

// DepositHarvest funds the user from the whale, deposits into the vault and
// harvests once. Success means no transaction was rejected.
var DepositHarvest = Scenario{
	Name:        "deposit-harvest",
	Description: "user deposits into the vault, strategist harvests",
	Run:         depositThenHarvest,
}

// env is the fixture graph a scenario works with
type env struct {
	roster   *fixtures.Roster
	token    *contracts.ERC20
	vault    *contracts.Vault
	strategy *contracts.Strategy
}

func setup(ctx context.Context, f *fixtures.Fixtures) (*env, error) {
	roster, err := f.Roster(ctx)
	if err != nil {
		return nil, err
	}
	token, err := f.Token(ctx)
	if err != nil {
		return nil, err
	}
	vault, err := f.Vault(ctx)
	if err != nil {
		return nil, err
	}
	strategy, err := f.Strategy(ctx)
	if err != nil {
		return nil, err
	}
	return &env{
		roster:   roster,
		token:    token,
		vault:    vault,
		strategy: strategy,
	}, nil
}

func depositThenHarvest(ctx context.Context, f *fixtures.Fixtures, rep *Report) error {
	e, err := setup(ctx, f)
	if err != nil {
		return err
	}
	whale, err := f.TokenWhale(ctx)
	if err != nil {
		return err
	}
	deposit, err := f.DepositAmount(ctx)
	if err != nil {
		return err
	}
	rep.Deposit = deposit

	steps := []struct {
		label string
		send  func() (*types.Receipt, error)
	}{
		{"token.transfer", func() (*types.Receipt, error) {
			return e.token.Transfer(ctx, whale, e.roster.User, deposit)
		}},
		{"token.approve", func() (*types.Receipt, error) {
			return e.token.Approve(ctx, e.roster.User, e.vault.Address(), units.MaxUint256)
		}},
		{"vault.deposit", func() (*types.Receipt, error) {
			return e.vault.DepositAll(ctx, e.roster.User)
		}},
		{"strategy.harvest", func() (*types.Receipt, error) {
			return e.strategy.Harvest(ctx, e.roster.Strategist)
		}},
	}
	for _, step := range steps {
		receipt, err := step.send()
		rep.record(step.label, receipt)
		if err != nil {
			return err
		}
	}

	return snapshotState(ctx, e, rep)
}

// snapshotState reads the post-run balances into the report
func snapshotState(ctx context.Context, e *env, rep *Report) error {
	shares, err := e.vault.BalanceOf(ctx, e.roster.User)
	if err != nil {
		return fmt.Errorf("failed to read user shares: %w", err)
	}
	params, err := e.vault.Strategies(ctx, e.strategy.Address())
	if err != nil {
		return fmt.Errorf("failed to read strategy params: %w", err)
	}
	total, err := e.vault.TotalAssets(ctx)
	if err != nil {
		return fmt.Errorf("failed to read vault total assets: %w", err)
	}

	rep.UserShares = shares
	rep.StrategyDebt = params.TotalDebt
	rep.TotalAssets = total
	return nil
}
