package scenario

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// TxRecord is a mined transaction issued by a scenario
type TxRecord struct {
	Label   string      `json:"label"`
	Hash    common.Hash `json:"hash"`
	GasUsed uint64      `json:"gas_used"`
}

// Report summarizes a scenario run
type Report struct {
	RunID    string
	Scenario string
	Started  time.Time
	Duration time.Duration

	Transactions []TxRecord

	Deposit      *big.Int
	UserShares   *big.Int
	StrategyDebt *big.Int
	TotalAssets  *big.Int

	Err error
}

func (r *Report) record(label string, receipt *types.Receipt) {
	if receipt == nil {
		return
	}
	r.Transactions = append(r.Transactions, TxRecord{
		Label:   label,
		Hash:    receipt.TxHash,
		GasUsed: receipt.GasUsed,
	})
}

// Fields returns the report as log fields
func (r *Report) Fields() []zap.Field {
	fields := []zap.Field{
		zap.String("run_id", r.RunID),
		zap.String("scenario", r.Scenario),
		zap.Duration("duration", r.Duration),
		zap.Int("transactions", len(r.Transactions)),
	}
	for _, v := range []struct {
		key string
		val *big.Int
	}{
		{"deposit", r.Deposit},
		{"user_shares", r.UserShares},
		{"strategy_debt", r.StrategyDebt},
		{"total_assets", r.TotalAssets},
	} {
		if v.val != nil {
			fields = append(fields, zap.String(v.key, v.val.String()))
		}
	}
	return fields
}
