package units

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScale(t *testing.T) {
	tests := []struct {
		amount   string
		decimals uint8
		want     string
	}{
		{"10000", 6, "10000000000"},
		{"1000", 6, "1000000000"},
		{"1", 18, "1000000000000000000"},
		{"0.5", 6, "500000"},
		{"2000", 0, "2000"},
	}
	for _, tt := range tests {
		got, err := Scale(tt.amount, tt.decimals)
		require.NoError(t, err, tt.amount)
		assert.Equal(t, tt.want, got.String(), tt.amount)
	}
}

func TestScale_Errors(t *testing.T) {
	_, err := Scale("0.0000001", 6)
	require.ErrorIs(t, err, ErrFractional)

	_, err = Scale("-1", 6)
	require.Error(t, err)

	_, err = Scale("ten", 6)
	require.Error(t, err)
}

func TestMaxUint256(t *testing.T) {
	assert.Equal(t, 256, MaxUint256.BitLen())
	plusOne := new(big.Int).Add(MaxUint256, big.NewInt(1))
	assert.Equal(t, 0, plusOne.Cmp(new(big.Int).Lsh(big.NewInt(1), 256)))
}

func TestParseInt(t *testing.T) {
	v, err := ParseInt("max")
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(MaxUint256))
	// callers may mutate the result
	v.SetInt64(1)
	assert.Equal(t, 256, MaxUint256.BitLen())

	v, err = ParseInt("2000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000_000), v.Int64())

	_, err = ParseInt("1e6")
	require.Error(t, err)

	_, err = ParseInt(new(big.Int).Lsh(big.NewInt(1), 256).String())
	require.Error(t, err)
}

func TestOneAndFormat(t *testing.T) {
	assert.Equal(t, "1000000", One(6).String())
	assert.Equal(t, "1234.5", Format(big.NewInt(1_234_500_000), 6))
	assert.Equal(t, "0", Format(nil, 6))
}

func TestApproxEqual(t *testing.T) {
	want := big.NewInt(1_000_000_000)
	assert.True(t, ApproxEqual(big.NewInt(1_000_000_000), want, 1e-5))
	assert.True(t, ApproxEqual(big.NewInt(999_990_000), want, 1e-5))
	assert.False(t, ApproxEqual(big.NewInt(999_989_999), want, 1e-5))
	assert.True(t, ApproxEqual(big.NewInt(1_000_010_000), want, 1e-5))
}
