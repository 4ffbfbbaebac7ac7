package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ERC20 is a fungible token handle
type ERC20 struct {
	*BoundContract
}

// NewERC20 binds the ERC-20 interface at address
func NewERC20(name string, address common.Address, backend Backend) (*ERC20, error) {
	parsed, err := ParseABI(ERC20ABI)
	if err != nil {
		return nil, err
	}
	return &ERC20{NewBoundContract(name, address, parsed, backend)}, nil
}

// Decimals returns the token's declared precision
func (t *ERC20) Decimals(ctx context.Context) (uint8, error) {
	values, err := t.Call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("%s.decimals returned %T, want uint8", t.name, values[0])
	}
	return d, nil
}

// Symbol returns the token symbol
func (t *ERC20) Symbol(ctx context.Context) (string, error) {
	values, err := t.Call(ctx, "symbol")
	if err != nil {
		return "", err
	}
	s, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("%s.symbol returned %T, want string", t.name, values[0])
	}
	return s, nil
}

// BalanceOf returns the token balance of owner
func (t *ERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return t.callBig(ctx, "balanceOf", owner)
}

// Allowance returns how much spender may pull from owner
func (t *ERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return t.callBig(ctx, "allowance", owner, spender)
}

// Transfer moves amount from `from` to `to`
func (t *ERC20) Transfer(ctx context.Context, from, to common.Address, amount *big.Int) (*types.Receipt, error) {
	return t.Transact(ctx, from, "transfer", to, amount)
}

// Approve lets spender pull up to amount from owner
func (t *ERC20) Approve(ctx context.Context, owner, spender common.Address, amount *big.Int) (*types.Receipt, error) {
	return t.Transact(ctx, owner, "approve", spender, amount)
}
