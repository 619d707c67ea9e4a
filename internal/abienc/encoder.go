package abienc

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

const slotSize = 32

// EncodingError reports a malformed value or a type/value arity mismatch.
type EncodingError struct {
	Index  int
	Type   string
	Reason string
}

func (e *EncodingError) Error() string {
	if e.Index < 0 {
		return "encoding: " + e.Reason
	}
	return fmt.Sprintf("encoding slot %d (%s): %s", e.Index, e.Type, e.Reason)
}

// EncodePacked concatenates values at their natural width with no padding,
// matching Solidity abi.encodePacked for elementary types.
func EncodePacked(types []Type, values []any) ([]byte, error) {
	if err := checkArity(types, values); err != nil {
		return nil, err
	}

	size := 0
	for _, t := range types {
		size += t.packedSize()
	}
	out := make([]byte, 0, size)

	for i, t := range types {
		word, err := encodeValue(i, t, values[i], t.packedSize())
		if err != nil {
			return nil, err
		}
		out = append(out, word...)
	}
	return out, nil
}

// EncodePadded places every value in a 32-byte slot, matching abi.encode for a
// tuple of static elementary types.
func EncodePadded(types []Type, values []any) ([]byte, error) {
	if err := checkArity(types, values); err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(types)*slotSize)
	for i, t := range types {
		word, err := encodeValue(i, t, values[i], slotSize)
		if err != nil {
			return nil, err
		}
		out = append(out, word...)
	}
	return out, nil
}

func checkArity(types []Type, values []any) error {
	if len(types) != len(values) {
		return &EncodingError{Index: -1, Reason: fmt.Sprintf("%d types for %d values", len(types), len(values))}
	}
	return nil
}

func encodeValue(index int, t Type, value any, width int) ([]byte, error) {
	fail := func(format string, args ...any) error {
		return &EncodingError{Index: index, Type: t.String(), Reason: fmt.Sprintf(format, args...)}
	}

	if err := t.validate(); err != nil {
		return nil, fail("%v", err)
	}

	switch t.Kind {
	case KindAddress:
		addr, err := toAddress(value)
		if err != nil {
			return nil, fail("%v", err)
		}
		return common.LeftPadBytes(addr.Bytes(), width), nil

	case KindBytes32:
		word, err := toBytes32(value)
		if err != nil {
			return nil, fail("%v", err)
		}
		return word[:], nil

	case KindUint:
		n, err := toBigInt(value)
		if err != nil {
			return nil, fail("%v", err)
		}
		if n.Sign() < 0 {
			return nil, fail("negative value %s", n)
		}
		if n.BitLen() > t.Bits {
			return nil, fail("value %s exceeds %d bits", n, t.Bits)
		}
		return common.LeftPadBytes(n.Bytes(), width), nil

	case KindInt:
		n, err := toBigInt(value)
		if err != nil {
			return nil, fail("%v", err)
		}
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Bits-1))
		minVal := new(big.Int).Neg(limit)
		if n.Cmp(minVal) < 0 || n.Cmp(limit) >= 0 {
			return nil, fail("value %s out of int%d range", n, t.Bits)
		}
		if width == slotSize {
			return math.U256Bytes(new(big.Int).Set(n)), nil
		}
		return twosComplement(n, t.Bits), nil
	}

	return nil, fail("unsupported type")
}

func twosComplement(n *big.Int, bits int) []byte {
	v := new(big.Int).Set(n)
	if v.Sign() < 0 {
		v.Add(v, new(big.Int).Lsh(big.NewInt(1), uint(bits)))
	}
	return common.LeftPadBytes(v.Bytes(), bits/8)
}

func toAddress(value any) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		if v == nil {
			return common.Address{}, fmt.Errorf("nil address")
		}
		return *v, nil
	case [20]byte:
		return common.Address(v), nil
	case []byte:
		if len(v) != common.AddressLength {
			return common.Address{}, fmt.Errorf("address must be %d bytes, got %d", common.AddressLength, len(v))
		}
		return common.BytesToAddress(v), nil
	case string:
		if !common.IsHexAddress(v) {
			return common.Address{}, fmt.Errorf("invalid address %q", v)
		}
		return common.HexToAddress(v), nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func toBytes32(value any) ([32]byte, error) {
	switch v := value.(type) {
	case [32]byte:
		return v, nil
	case common.Hash:
		return v, nil
	case []byte:
		if len(v) != 32 {
			return [32]byte{}, fmt.Errorf("bytes32 must be 32 bytes, got %d", len(v))
		}
		var out [32]byte
		copy(out[:], v)
		return out, nil
	default:
		return [32]byte{}, fmt.Errorf("unsupported bytes32 type %T", value)
	}
}

func toBigInt(value any) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return v, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}
