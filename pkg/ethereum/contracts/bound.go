package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/chainsafe/strategy-harness/pkg/ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is the node surface contract handles need. *ethereum.Client implements it.
type Backend interface {
	Call(ctx context.Context, from common.Address, to common.Address, data []byte) ([]byte, error)
	SendTransaction(ctx context.Context, req ethereum.TxRequest) (*types.Receipt, error)
}

// BoundContract is a contract address paired with its ABI
type BoundContract struct {
	name    string
	address common.Address
	abi     abi.ABI
	backend Backend
}

// NewBoundContract binds an ABI to an address. name prefixes transaction labels.
func NewBoundContract(name string, address common.Address, parsed abi.ABI, backend Backend) *BoundContract {
	return &BoundContract{
		name:    name,
		address: address,
		abi:     parsed,
		backend: backend,
	}
}

// Address returns the bound address
func (c *BoundContract) Address() common.Address {
	return c.address
}

// Name returns the label prefix
func (c *BoundContract) Name() string {
	return c.name
}

// Call invokes a view method and returns its decoded outputs
func (c *BoundContract) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s.%s: %w", c.name, method, err)
	}

	out, err := c.backend.Call(ctx, common.Address{}, c.address, data)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", c.name, method, err)
	}

	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s.%s: %w", c.name, method, err)
	}
	return values, nil
}

// Transact sends a state-changing call from an unlocked or impersonated account
func (c *BoundContract) Transact(ctx context.Context, from common.Address, method string, args ...interface{}) (*types.Receipt, error) {
	return c.TransactValue(ctx, from, nil, method, args...)
}

// TransactValue is Transact with native value attached
func (c *BoundContract) TransactValue(ctx context.Context, from common.Address, value *big.Int, method string, args ...interface{}) (*types.Receipt, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s.%s: %w", c.name, method, err)
	}

	to := c.address
	return c.backend.SendTransaction(ctx, ethereum.TxRequest{
		From:  from,
		To:    &to,
		Value: value,
		Data:  data,
		Label: c.name + "." + c.abi.Methods[method].RawName,
	})
}

func (c *BoundContract) callBig(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	values, err := c.Call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s.%s returned no values", c.name, method)
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s.%s returned %T, want *big.Int", c.name, method, values[0])
	}
	return v, nil
}

func (c *BoundContract) callAddress(ctx context.Context, method string, args ...interface{}) (common.Address, error) {
	values, err := c.Call(ctx, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	if len(values) == 0 {
		return common.Address{}, fmt.Errorf("%s.%s returned no values", c.name, method)
	}
	v, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s.%s returned %T, want address", c.name, method, values[0])
	}
	return v, nil
}
