package contracts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CurvePool is a read-only Curve stable pool handle
type CurvePool struct {
	*BoundContract
}

// NewCurvePool binds the pool interface at address
func NewCurvePool(address common.Address, backend Backend) (*CurvePool, error) {
	parsed, err := ParseABI(CurvePoolABI)
	if err != nil {
		return nil, err
	}
	return &CurvePool{NewBoundContract("curve_pool", address, parsed, backend)}, nil
}

// Coin returns the i-th pool asset
func (p *CurvePool) Coin(ctx context.Context, i int64) (common.Address, error) {
	return p.callAddress(ctx, "coins", big.NewInt(i))
}

// Balance returns the pool's balance of the i-th asset
func (p *CurvePool) Balance(ctx context.Context, i int64) (*big.Int, error) {
	return p.callBig(ctx, "balances", big.NewInt(i))
}

// VirtualPrice returns the LP token virtual price, scaled by 1e18
func (p *CurvePool) VirtualPrice(ctx context.Context) (*big.Int, error) {
	return p.callBig(ctx, "get_virtual_price")
}
