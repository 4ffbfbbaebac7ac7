package fixtures

import (
	"fmt"

	"github.com/chainsafe/strategy-harness/pkg/config"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Roster holds the labeled test identities
type Roster struct {
	Gov        common.Address
	Rewards    common.Address
	Guardian   common.Address
	Management common.Address
	Strategist common.Address
	Keeper     common.Address
	User       common.Address
}

// ResolveRoster maps configured account indexes onto the node's unlocked accounts
func ResolveRoster(accounts []common.Address, cfg config.AccountsConfig) (*Roster, error) {
	pick := func(role string, idx int) (common.Address, error) {
		if idx < 0 || idx >= len(accounts) {
			return common.Address{}, fmt.Errorf("account index %d for %s out of range (node has %d accounts)", idx, role, len(accounts))
		}
		return accounts[idx], nil
	}

	var (
		r   Roster
		err error
	)
	roles := []struct {
		name string
		idx  int
		dst  *common.Address
	}{
		{"gov", cfg.Gov, &r.Gov},
		{"rewards", cfg.Rewards, &r.Rewards},
		{"guardian", cfg.Guardian, &r.Guardian},
		{"management", cfg.Management, &r.Management},
		{"strategist", cfg.Strategist, &r.Strategist},
		{"keeper", cfg.Keeper, &r.Keeper},
		{"user", cfg.User, &r.User},
	}
	for _, role := range roles {
		if *role.dst, err = pick(role.name, role.idx); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

// Fields returns the roster as log fields
func (r *Roster) Fields() []zap.Field {
	return []zap.Field{
		zap.String("gov", r.Gov.Hex()),
		zap.String("rewards", r.Rewards.Hex()),
		zap.String("guardian", r.Guardian.Hex()),
		zap.String("management", r.Management.Hex()),
		zap.String("strategist", r.Strategist.Hex()),
		zap.String("keeper", r.Keeper.Hex()),
		zap.String("user", r.User.Hex()),
	}
}
