package scenario

import (
	"math/big"

	"github.com/chainsafe/strategy-harness/pkg/config"
	"github.com/chainsafe/strategy-harness/pkg/devnode"
	"github.com/chainsafe/strategy-harness/pkg/ethereum/contracts"
	"github.com/chainsafe/strategy-harness/pkg/units"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// DryRunTokenDecimals is the precision the dry-run node reports for the want token
const DryRunTokenDecimals = 6

// NewDryRunNode starts an in-process node whose view calls are answered by
// replaying the accepted transactions through a 1:1 share, zero-yield vault
// model. It lets scenarios run end to end without a fork.
func NewDryRunNode(cfg *config.Config, logger *zap.Logger) (*devnode.Node, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abis, err := contracts.AllABIs()
	if err != nil {
		return nil, err
	}
	node, err := devnode.New(
		devnode.WithABI(abis...),
		devnode.WithChainID(cfg.Node.Container.ChainID),
		devnode.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	sim := &simulation{
		node:  node,
		token: common.HexToAddress(cfg.Contracts.Token),
		weth:  common.HexToAddress(cfg.Contracts.WETH),
	}
	sim.install()
	return node, nil
}

type simulation struct {
	node  *devnode.Node
	token common.Address
	weth  common.Address
}

// ledger is the vault model rebuilt from the transaction log
type ledger struct {
	tokens       map[common.Address]*big.Int
	shares       map[common.Address]*big.Int
	idle         *big.Int
	debt         *big.Int
	exit         bool
	depositLimit *big.Int
	terms        map[common.Address][]*big.Int
}

func credit(m map[common.Address]*big.Int, addr common.Address, amount *big.Int) {
	if _, ok := m[addr]; !ok {
		m[addr] = new(big.Int)
	}
	m[addr].Add(m[addr], amount)
}

func debit(m map[common.Address]*big.Int, addr common.Address, amount *big.Int) {
	// untracked senders are whales with unbounded balances
	if b, ok := m[addr]; ok {
		b.Sub(b, amount)
		if b.Sign() < 0 {
			b.SetInt64(0)
		}
	}
}

func (s *simulation) replay() *ledger {
	l := &ledger{
		tokens: make(map[common.Address]*big.Int),
		shares: make(map[common.Address]*big.Int),
		idle:   new(big.Int),
		debt:   new(big.Int),
		terms:  make(map[common.Address][]*big.Int),
	}

	for _, tx := range s.node.Transactions() {
		if tx.Reverted || tx.To == nil {
			continue
		}
		switch tx.Method {
		case "transfer":
			if *tx.To != s.token {
				continue
			}
			to, amount := tx.Args[0].(common.Address), tx.Args[1].(*big.Int)
			debit(l.tokens, tx.From, amount)
			credit(l.tokens, to, amount)
		case "deposit":
			if *tx.To == s.weth {
				continue
			}
			var amount *big.Int
			if len(tx.Args) == 1 {
				amount = tx.Args[0].(*big.Int)
			} else if b, ok := l.tokens[tx.From]; ok {
				amount = new(big.Int).Set(b)
			} else {
				amount = new(big.Int)
			}
			debit(l.tokens, tx.From, amount)
			credit(l.shares, tx.From, amount)
			l.idle.Add(l.idle, amount)
		case "setDepositLimit":
			l.depositLimit = tx.Args[0].(*big.Int)
		case "addStrategy":
			terms := make([]*big.Int, 4)
			for i := range terms {
				terms[i] = tx.Args[i+1].(*big.Int)
			}
			l.terms[tx.Args[0].(common.Address)] = terms
		case "setEmergencyExit":
			l.exit = true
		case "harvest":
			if l.exit {
				l.idle.Add(l.idle, l.debt)
				l.debt.SetInt64(0)
			} else {
				l.debt.Add(l.debt, l.idle)
				l.idle.SetInt64(0)
			}
		}
	}
	return l
}

func (s *simulation) install() {
	n := s.node

	n.HandleCall("decimals", func(to common.Address, _ []interface{}) ([]interface{}, error) {
		if to == s.weth {
			return []interface{}{uint8(18)}, nil
		}
		return []interface{}{uint8(DryRunTokenDecimals)}, nil
	})
	n.HandleCall("balanceOf", func(to common.Address, args []interface{}) ([]interface{}, error) {
		owner := args[0].(common.Address)
		l := s.replay()
		m := l.shares
		if to == s.token {
			m = l.tokens
		}
		if b, ok := m[owner]; ok {
			return []interface{}{b}, nil
		}
		return []interface{}{new(big.Int)}, nil
	})
	n.HandleCall("totalAssets", func(common.Address, []interface{}) ([]interface{}, error) {
		l := s.replay()
		return []interface{}{new(big.Int).Add(l.idle, l.debt)}, nil
	})
	n.HandleCall("depositLimit", func(common.Address, []interface{}) ([]interface{}, error) {
		l := s.replay()
		if l.depositLimit == nil {
			return []interface{}{new(big.Int)}, nil
		}
		return []interface{}{l.depositLimit}, nil
	})
	n.HandleCall("strategies", func(_ common.Address, args []interface{}) ([]interface{}, error) {
		l := s.replay()
		out := make([]interface{}, 9)
		for i := range out {
			out[i] = new(big.Int)
		}
		if terms, ok := l.terms[args[0].(common.Address)]; ok {
			out[0] = terms[3]
			out[2] = terms[0]
			out[3] = terms[1]
			out[4] = terms[2]
			out[6] = l.debt
		}
		return out, nil
	})
	n.HandleCall("estimatedTotalAssets", func(common.Address, []interface{}) ([]interface{}, error) {
		return []interface{}{s.replay().debt}, nil
	})
	n.HandleCall("emergencyExit", func(common.Address, []interface{}) ([]interface{}, error) {
		return []interface{}{s.replay().exit}, nil
	})
	n.HandleConst("pricePerShare", units.One(DryRunTokenDecimals))
	n.HandleConst("token", s.token)
	n.HandleConst("want", s.token)
	n.HandleConst("get_virtual_price", units.One(18))
}
