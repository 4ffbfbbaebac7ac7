package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/chainsafe/strategy-harness/pkg/ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// WETH is a wrapped-native token handle
type WETH struct {
	*BoundContract
}

// NewWETH binds the WETH interface at address
func NewWETH(address common.Address, backend Backend) (*WETH, error) {
	parsed, err := ParseABI(WETHABI)
	if err != nil {
		return nil, err
	}
	return &WETH{NewBoundContract("weth", address, parsed, backend)}, nil
}

// Decimals returns the token's declared precision
func (w *WETH) Decimals(ctx context.Context) (uint8, error) {
	values, err := w.Call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("weth.decimals returned %T, want uint8", values[0])
	}
	return d, nil
}

// BalanceOf returns the wrapped balance of owner
func (w *WETH) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return w.callBig(ctx, "balanceOf", owner)
}

// Wrap sends native value to the contract. The fallback credits the sender,
// so this matches a bare transfer to the WETH address.
func (w *WETH) Wrap(ctx context.Context, from common.Address, amount *big.Int) (*types.Receipt, error) {
	to := w.address
	return w.backend.SendTransaction(ctx, ethereum.TxRequest{
		From:  from,
		To:    &to,
		Value: amount,
		Label: "weth.wrap",
	})
}

// Deposit wraps amount through the explicit deposit() entrypoint
func (w *WETH) Deposit(ctx context.Context, from common.Address, amount *big.Int) (*types.Receipt, error) {
	return w.TransactValue(ctx, from, amount, "deposit")
}
