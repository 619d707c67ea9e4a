package poolkey

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"commitGuard/internal/abienc"
)

// Descriptor is a v4 PoolKey. Currency ordering is the caller's concern.
type Descriptor struct {
	Currency0   common.Address
	Currency1   common.Address
	Fee         uint32
	TickSpacing int32
	Hooks       common.Address
}

// DescriptorInput is the string form of a Descriptor.
type DescriptorInput struct {
	Currency0   string `json:"currency0"`
	Currency1   string `json:"currency1"`
	Fee         string `json:"fee"`
	TickSpacing string `json:"tick_spacing"`
	Hooks       string `json:"hooks"`
}

var poolKeyTypes = []abienc.Type{
	abienc.Address,
	abienc.Address,
	abienc.Uint24,
	abienc.Int24,
	abienc.Address,
}

// DerivePoolID returns keccak256(abi.encode(poolKey)).
func DerivePoolID(d Descriptor) (common.Hash, error) {
	encoded, err := abienc.EncodePadded(poolKeyTypes, []any{
		d.Currency0,
		d.Currency1,
		d.Fee,
		d.TickSpacing,
		d.Hooks,
	})
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(encoded), nil
}

// Sorted returns the descriptor with currencies in ascending address order.
func (d Descriptor) Sorted() Descriptor {
	if bytes.Compare(d.Currency0.Bytes(), d.Currency1.Bytes()) > 0 {
		d.Currency0, d.Currency1 = d.Currency1, d.Currency0
	}
	return d
}

// ParseDescriptor validates and converts string inputs. An empty hooks
// address means no hooks.
func ParseDescriptor(in DescriptorInput) (Descriptor, error) {
	c0, err := parseAddress("currency0", in.Currency0)
	if err != nil {
		return Descriptor{}, err
	}
	c1, err := parseAddress("currency1", in.Currency1)
	if err != nil {
		return Descriptor{}, err
	}

	hooks := common.Address{}
	if strings.TrimSpace(in.Hooks) != "" {
		hooks, err = parseAddress("hooks", in.Hooks)
		if err != nil {
			return Descriptor{}, err
		}
	}

	fee, err := strconv.ParseUint(strings.TrimSpace(in.Fee), 10, 24)
	if err != nil {
		return Descriptor{}, fmt.Errorf("fee: %w", err)
	}
	spacing, err := strconv.ParseInt(strings.TrimSpace(in.TickSpacing), 10, 24)
	if err != nil {
		return Descriptor{}, fmt.Errorf("tick_spacing: %w", err)
	}

	return Descriptor{
		Currency0:   c0,
		Currency1:   c1,
		Fee:         uint32(fee),
		TickSpacing: int32(spacing),
		Hooks:       hooks,
	}, nil
}

func parseAddress(field, input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("%s: invalid address %q", field, input)
	}
	return common.HexToAddress(input), nil
}
