// Package units converts between human token amounts and on-chain integers.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxUint256 is 2^256 - 1, the "unlimited" value for limits and approvals.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ErrFractional is returned when an amount cannot be represented in base units.
var ErrFractional = errors.New("amount has more precision than token decimals")

// Scale converts a decimal amount of whole tokens into base units,
// i.e. amount * 10^decimals.
func Scale(amount string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount %q is negative", amount)
	}
	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("%w: %s with %d decimals", ErrFractional, amount, decimals)
	}
	return shifted.BigInt(), nil
}

// One returns 10^decimals, the base-unit value of a single token.
func One(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// ParseInt parses a base-10 integer. The literal "max" yields MaxUint256.
func ParseInt(s string) (*big.Int, error) {
	if strings.EqualFold(strings.TrimSpace(s), "max") {
		return new(big.Int).Set(MaxUint256), nil
	}
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("integer %q is negative", s)
	}
	if v.Cmp(MaxUint256) > 0 {
		return nil, fmt.Errorf("integer %q overflows uint256", s)
	}
	return v, nil
}

// Format renders base units as a decimal token amount.
func Format(v *big.Int, decimals uint8) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -int32(decimals)).String()
}

// ApproxEqual reports whether got is within rel (relative to want) of want,
// the same tolerance rule as pytest.approx with only rel set.
func ApproxEqual(got, want *big.Int, rel float64) bool {
	g := decimal.NewFromBigInt(got, 0)
	w := decimal.NewFromBigInt(want, 0)
	tolerance := w.Abs().Mul(decimal.NewFromFloat(rel))
	return g.Sub(w).Abs().LessThanOrEqual(tolerance)
}
