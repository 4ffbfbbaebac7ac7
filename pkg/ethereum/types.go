package ethereum

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// ErrReverted is returned when the node rejects or reverts a transaction
	ErrReverted = errors.New("transaction reverted")
	// ErrNoContractCreated is returned when a deployment receipt carries no contract address
	ErrNoContractCreated = errors.New("no contract created")
	// ErrSnapshotNotFound is returned when the node refuses to revert to a snapshot
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// TxRequest describes a transaction sent from an unlocked or impersonated account.
// A nil To deploys Data as contract creation code.
type TxRequest struct {
	From  common.Address
	To    *common.Address
	Value *big.Int
	Gas   uint64
	Data  []byte

	// Label names the transaction in logs and metrics, e.g. "vault.addStrategy".
	Label string
}

// rpcTxArgs is the eth_sendTransaction parameter object
type rpcTxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to,omitempty"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
}

func (r TxRequest) args() rpcTxArgs {
	args := rpcTxArgs{
		From: r.From,
		To:   r.To,
		Data: r.Data,
	}
	if r.Gas != 0 {
		gas := hexutil.Uint64(r.Gas)
		args.Gas = &gas
	}
	if r.Value != nil && r.Value.Sign() > 0 {
		args.Value = (*hexutil.Big)(r.Value)
	}
	return args
}

// TxError reports a failed transaction
type TxError struct {
	Label  string
	Hash   common.Hash
	Reason string
	Err    error
}

func (e *TxError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Label, e.Err)
	if e.Hash != (common.Hash{}) {
		msg = fmt.Sprintf("%s (tx %s)", msg, e.Hash.Hex())
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	return msg
}

func (e *TxError) Unwrap() error {
	return e.Err
}

// SnapshotID identifies a node state checkpoint
type SnapshotID = hexutil.Big
