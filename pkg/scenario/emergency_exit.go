package scenario

import (
	"context"
	"fmt"

	"github.com/chainsafe/strategy-harness/pkg/fixtures"
	"github.com/chainsafe/strategy-harness/pkg/units"
)

// EmergencyExit runs DepositHarvest, then shuts the strategy down and
// checks that every unit of debt made it back to the vault.
var EmergencyExit = Scenario{
	Name:        "emergency-exit",
	Description: "deposit and harvest, then emergency exit returns all funds to the vault",
	Run:         emergencyExit,
}

func emergencyExit(ctx context.Context, f *fixtures.Fixtures, rep *Report) error {
	if err := depositThenHarvest(ctx, f, rep); err != nil {
		return err
	}
	e, err := setup(ctx, f)
	if err != nil {
		return err
	}

	receipt, err := e.strategy.SetEmergencyExit(ctx, e.roster.Strategist)
	rep.record("strategy.setEmergencyExit", receipt)
	if err != nil {
		return err
	}
	receipt, err = e.strategy.Harvest(ctx, e.roster.Strategist)
	rep.record("strategy.harvest", receipt)
	if err != nil {
		return err
	}

	if err := snapshotState(ctx, e, rep); err != nil {
		return err
	}

	if rep.StrategyDebt.Sign() != 0 {
		return fmt.Errorf("%w: strategy debt after emergency exit is %s, want 0", ErrAssertion, rep.StrategyDebt)
	}
	if !units.ApproxEqual(rep.TotalAssets, rep.Deposit, f.RelativeApprox()) {
		return fmt.Errorf("%w: vault total assets %s not within %g of deposit %s",
			ErrAssertion, rep.TotalAssets, f.RelativeApprox(), rep.Deposit)
	}
	return nil
}
