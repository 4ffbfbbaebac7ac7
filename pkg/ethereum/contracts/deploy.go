package contracts

import (
	"context"
	"fmt"

	"github.com/chainsafe/strategy-harness/internal/metrics"
	"github.com/chainsafe/strategy-harness/pkg/artifact"
	"github.com/chainsafe/strategy-harness/pkg/ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Deploy creates a contract from an artifact, ABI-encoding the constructor
// arguments against the artifact's own ABI.
func Deploy(ctx context.Context, backend Backend, from common.Address, art *artifact.Artifact, args ...interface{}) (common.Address, *types.Receipt, error) {
	ctorArgs, err := art.ABI.Pack("", args...)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("failed to pack %s constructor: %w", art.Name, err)
	}

	data := make([]byte, 0, len(art.Bytecode)+len(ctorArgs))
	data = append(data, art.Bytecode...)
	data = append(data, ctorArgs...)

	receipt, err := backend.SendTransaction(ctx, ethereum.TxRequest{
		From:  from,
		Data:  data,
		Label: "deploy." + art.Name,
	})
	if err != nil {
		return common.Address{}, receipt, fmt.Errorf("failed to deploy %s: %w", art.Name, err)
	}
	if receipt.ContractAddress == (common.Address{}) {
		return common.Address{}, receipt, fmt.Errorf("failed to deploy %s: %w", art.Name, ethereum.ErrNoContractCreated)
	}

	metrics.ContractsDeployed.WithLabelValues(art.Name).Inc()
	return receipt.ContractAddress, receipt, nil
}
