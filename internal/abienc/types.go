package abienc

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the family of an ABI elementary type.
type Kind uint8

const (
	KindAddress Kind = iota + 1
	KindUint
	KindInt
	KindBytes32
)

// Type is an ABI elementary type tag.
type Type struct {
	Kind Kind
	Bits int
}

var (
	Address = Type{Kind: KindAddress, Bits: 160}
	Bytes32 = Type{Kind: KindBytes32, Bits: 256}
	Uint256 = Uint(256)
	Uint24  = Uint(24)
	Int24   = Int(24)
)

// Uint returns the uintN type tag.
func Uint(bits int) Type {
	return Type{Kind: KindUint, Bits: bits}
}

// Int returns the intN type tag.
func Int(bits int) Type {
	return Type{Kind: KindInt, Bits: bits}
}

// ParseType parses a Solidity elementary type name such as "uint24" or "address".
func ParseType(name string) (Type, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "address":
		return Address, nil
	case name == "bytes32":
		return Bytes32, nil
	case name == "uint":
		return Uint256, nil
	case name == "int":
		return Int(256), nil
	case strings.HasPrefix(name, "uint"):
		bits, err := strconv.Atoi(name[len("uint"):])
		if err != nil {
			return Type{}, fmt.Errorf("invalid type %q", name)
		}
		t := Uint(bits)
		return t, t.validate()
	case strings.HasPrefix(name, "int"):
		bits, err := strconv.Atoi(name[len("int"):])
		if err != nil {
			return Type{}, fmt.Errorf("invalid type %q", name)
		}
		t := Int(bits)
		return t, t.validate()
	default:
		return Type{}, fmt.Errorf("unsupported type %q", name)
	}
}

// String returns the Solidity type name.
func (t Type) String() string {
	switch t.Kind {
	case KindAddress:
		return "address"
	case KindBytes32:
		return "bytes32"
	case KindUint:
		return "uint" + strconv.Itoa(t.Bits)
	case KindInt:
		return "int" + strconv.Itoa(t.Bits)
	default:
		return "unknown"
	}
}

// packedSize is the tightly packed width in bytes.
func (t Type) packedSize() int {
	switch t.Kind {
	case KindAddress:
		return 20
	case KindBytes32:
		return 32
	default:
		return t.Bits / 8
	}
}

func (t Type) validate() error {
	switch t.Kind {
	case KindAddress:
		if t.Bits != 160 {
			return fmt.Errorf("address must be 160 bits")
		}
	case KindBytes32:
		if t.Bits != 256 {
			return fmt.Errorf("bytes32 must be 256 bits")
		}
	case KindUint, KindInt:
		if t.Bits < 8 || t.Bits > 256 || t.Bits%8 != 0 {
			return fmt.Errorf("invalid integer width %d", t.Bits)
		}
	default:
		return fmt.Errorf("unknown type kind %d", t.Kind)
	}
	return nil
}
