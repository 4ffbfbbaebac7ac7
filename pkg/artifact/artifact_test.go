package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strategyABI = `[{"type":"constructor","inputs":[{"name":"_vault","type":"address"},{"name":"_maxSingleInvest","type":"uint256"}],"stateMutability":"nonpayable"},{"type":"function","name":"harvest","inputs":[],"outputs":[],"stateMutability":"nonpayable"}]`

func TestParse_Layouts(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"brownie", `{"contractName":"FusdtCurveIce","abi":` + strategyABI + `,"bytecode":"0x6080604052"}`},
		{"hardhat without prefix", `{"contractName":"FusdtCurveIce","abi":` + strategyABI + `,"bytecode":"6080604052"}`},
		{"foundry", `{"abi":` + strategyABI + `,"bytecode":{"object":"0x6080604052","linkReferences":{}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Parse([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52}, a.Bytecode)
			assert.Len(t, a.ABI.Constructor.Inputs, 2)
			assert.Contains(t, a.ABI.Methods, "harvest")
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`{"abi":` + strategyABI + `,"bytecode":"0x"}`))
	require.ErrorIs(t, err, ErrEmptyBytecode)

	_, err = Parse([]byte(`{"abi":` + strategyABI + `}`))
	require.ErrorIs(t, err, ErrEmptyBytecode)

	_, err = Parse([]byte(`{"abi":` + strategyABI + `,"bytecode":"0x6080__$a1b2c3$__6040"}`))
	require.ErrorIs(t, err, ErrUnlinkedBytecode)

	_, err = Parse([]byte(`{"bytecode":"0x6080"}`))
	require.Error(t, err)

	_, err = Parse([]byte(`not json`))
	require.Error(t, err)
}

func TestLoad_NameFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Vault.json")
	body := `{"abi":[{"type":"function","name":"deposit","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"nonpayable"}],"bytecode":"0x6001"}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	a, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Vault", a.Name)
	assert.Equal(t, []byte{0x60, 0x01}, a.Bytecode)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
