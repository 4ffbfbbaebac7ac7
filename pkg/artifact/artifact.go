// Package artifact loads compiled contract artifacts produced by brownie,
// hardhat or foundry builds.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// ErrEmptyBytecode is returned for interfaces and abstract contracts.
	ErrEmptyBytecode = errors.New("artifact has no deployable bytecode")
	// ErrUnlinkedBytecode is returned when library placeholders remain in the bytecode.
	ErrUnlinkedBytecode = errors.New("artifact bytecode has unlinked library references")
)

// Artifact is a compiled contract ready for deployment
type Artifact struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
}

// file covers the union of the supported layouts. Brownie and hardhat store
// bytecode as a hex string; foundry nests it under bytecode.object.
type file struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
}

type foundryBytecode struct {
	Object string `json:"object"`
}

// Load reads an artifact from disk
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	a, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	if a.Name == "" {
		a.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return a, nil
}

// Parse decodes artifact JSON
func Parse(data []byte) (*Artifact, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	if len(f.ABI) == 0 {
		return nil, errors.New("artifact has no abi")
	}

	parsed, err := abi.JSON(bytes.NewReader(f.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse abi: %w", err)
	}

	code, err := decodeBytecode(f.Bytecode)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Name:     f.ContractName,
		ABI:      parsed,
		Bytecode: code,
	}, nil
}

func decodeBytecode(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrEmptyBytecode
	}

	var hexCode string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &hexCode); err != nil {
			return nil, fmt.Errorf("failed to decode bytecode: %w", err)
		}
	} else {
		var fb foundryBytecode
		if err := json.Unmarshal(raw, &fb); err != nil {
			return nil, fmt.Errorf("failed to decode bytecode: %w", err)
		}
		hexCode = fb.Object
	}

	hexCode = strings.TrimSpace(hexCode)
	if !strings.HasPrefix(hexCode, "0x") {
		hexCode = "0x" + hexCode
	}
	if strings.Contains(hexCode, "__") {
		return nil, ErrUnlinkedBytecode
	}
	if hexCode == "0x" {
		return nil, ErrEmptyBytecode
	}

	code, err := hexutil.Decode(hexCode)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bytecode: %w", err)
	}
	return code, nil
}
