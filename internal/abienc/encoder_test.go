package abienc

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePackedWidths(t *testing.T) {
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	got, err := EncodePacked(
		[]Type{Address, Uint256, Uint24, Int24, Bytes32},
		[]any{addr, big.NewInt(1), uint32(3000), int32(-60), common.HexToHash("0x01")},
	)
	require.NoError(t, err)

	require.Len(t, got, 20+32+3+3+32)
	assert.Equal(t, addr.Bytes(), got[:20])
	assert.Equal(t, byte(0x01), got[51], "uint256 %x", got[20:52])
	assert.Equal(t, []byte{0x00, 0x0b, 0xb8}, got[52:55])
	assert.Equal(t, []byte{0xff, 0xff, 0xc4}, got[55:58])
	assert.Equal(t, byte(0x01), got[len(got)-1])
}

func TestEncodePaddedMatchesABIPack(t *testing.T) {
	names := []string{"address", "address", "uint24", "int24", "address"}
	types := make([]Type, 0, len(names))
	args := make(abi.Arguments, 0, len(names))
	for _, name := range names {
		tag, err := ParseType(name)
		require.NoError(t, err, name)
		types = append(types, tag)

		abiType, err := abi.NewType(tag.String(), "", nil)
		require.NoError(t, err, name)
		args = append(args, abi.Argument{Type: abiType})
	}

	c0 := common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599")
	c1 := common.HexToAddress("0xC02aaA39b223FE8d0A0e5C4f27eAD9083C756Cc2")
	hooks := common.Address{}

	want, err := args.Pack(c0, c1, big.NewInt(3000), big.NewInt(-60), hooks)
	require.NoError(t, err)

	got, err := EncodePadded(types, []any{c0, c1, uint32(3000), int32(-60), hooks})
	require.NoError(t, err)

	assert.Equal(t, hexutil.Encode(want), hexutil.Encode(got))
}

func TestEncodeErrors(t *testing.T) {
	cases := []struct {
		name   string
		types  []Type
		values []any
	}{
		{"arity", []Type{Address, Uint256}, []any{common.Address{}}},
		{"short address", []Type{Address}, []any{[]byte{0x01, 0x02}}},
		{"bad hex address", []Type{Address}, []any{"0x1234"}},
		{"uint overflow", []Type{Uint24}, []any{uint32(1 << 24)}},
		{"negative uint", []Type{Uint256}, []any{big.NewInt(-1)}},
		{"int24 overflow", []Type{Int24}, []any{int32(1 << 23)}},
		{"int24 underflow", []Type{Int24}, []any{int32(-(1 << 23) - 1)}},
		{"uint256 overflow", []Type{Uint256}, []any{new(big.Int).Lsh(big.NewInt(1), 256)}},
		{"nil big int", []Type{Uint256}, []any{(*big.Int)(nil)}},
		{"big int by value", []Type{Uint256}, []any{*big.NewInt(1)}},
		{"short bytes32", []Type{Bytes32}, []any{[]byte{0x01}}},
		{"bad width", []Type{Uint(12)}, []any{uint8(1)}},
		{"unsupported value", []Type{Uint256}, []any{"12"}},
	}

	for _, tc := range cases {
		for mode, encode := range map[string]func([]Type, []any) ([]byte, error){
			"packed": EncodePacked,
			"padded": EncodePadded,
		} {
			_, err := encode(tc.types, tc.values)
			var encErr *EncodingError
			assert.ErrorAs(t, err, &encErr, "%s/%s", tc.name, mode)
		}
	}
}

func TestInt24Boundaries(t *testing.T) {
	got, err := EncodePacked([]Type{Int24, Int24}, []any{int32(-(1 << 23)), int32((1 << 23) - 1)})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80, 0x00, 0x00, 0x7f, 0xff, 0xff}, got)
}

func TestParseType(t *testing.T) {
	for name, want := range map[string]Type{
		"address": Address,
		"bytes32": Bytes32,
		"uint":    Uint256,
		"uint24":  Uint24,
		"int24":   Int24,
		"int256":  Int(256),
	} {
		got, err := ParseType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
		if name != "uint" {
			assert.Equal(t, name, got.String())
		}
	}

	for _, name := range []string{"uint7", "int264", "bytes", "string"} {
		_, err := ParseType(name)
		assert.Error(t, err, name)
	}
}
