package commit

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/params"
)

// TradeIntent is the preimage of a commit hash. The nonce is a uint256; a
// deployment whose verifier takes bytes32 converts with NonceFromBytes32.
type TradeIntent struct {
	Sender       common.Address
	AmountIn     *big.Int
	MinAmountOut *big.Int
	TokenIn      common.Address
	TokenOut     common.Address
	Nonce        *big.Int
}

// IntentInput is the string form of a TradeIntent as read from flags or JSONL.
type IntentInput struct {
	Sender       string `json:"sender"`
	AmountIn     string `json:"amount_in"`
	MinAmountOut string `json:"min_amount_out"`
	TokenIn      string `json:"token_in"`
	TokenOut     string `json:"token_out"`
	Nonce        string `json:"nonce"`
}

// NonceFromBytes32 interprets a 32-byte nonce as a big-endian uint256. The
// packed encoding of the result is identical to the input bytes.
func NonceFromBytes32(nonce [32]byte) *big.Int {
	return new(big.Int).SetBytes(nonce[:])
}

// ParseIntent validates and converts string inputs into a TradeIntent.
// Amounts accept plain integers, 0x-hex, or an "ether" suffix ("1.5ether").
func ParseIntent(in IntentInput) (TradeIntent, error) {
	sender, err := parseAddress("sender", in.Sender)
	if err != nil {
		return TradeIntent{}, err
	}
	tokenIn, err := parseAddress("token_in", in.TokenIn)
	if err != nil {
		return TradeIntent{}, err
	}
	tokenOut, err := parseAddress("token_out", in.TokenOut)
	if err != nil {
		return TradeIntent{}, err
	}
	amountIn, err := ParseAmount(in.AmountIn)
	if err != nil {
		return TradeIntent{}, fmt.Errorf("amount_in: %w", err)
	}
	minAmountOut, err := ParseAmount(in.MinAmountOut)
	if err != nil {
		return TradeIntent{}, fmt.Errorf("min_amount_out: %w", err)
	}
	nonce, err := ParseNonce(in.Nonce)
	if err != nil {
		return TradeIntent{}, fmt.Errorf("nonce: %w", err)
	}

	return TradeIntent{
		Sender:       sender,
		AmountIn:     amountIn,
		MinAmountOut: minAmountOut,
		TokenIn:      tokenIn,
		TokenOut:     tokenOut,
		Nonce:        nonce,
	}, nil
}

// ParseAmount parses a base-unit integer or a decimal ether amount.
func ParseAmount(input string) (*big.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty amount")
	}
	lower := strings.ToLower(input)
	if strings.HasSuffix(lower, "ether") {
		return parseEther(strings.TrimSpace(strings.TrimSuffix(lower, "ether")))
	}
	return parseInteger(input)
}

// ParseNonce parses a decimal integer or a 0x-hex value of at most 32 bytes.
func ParseNonce(input string) (*big.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty nonce")
	}
	if strings.HasPrefix(input, "0x") || strings.HasPrefix(input, "0X") {
		data, err := hexutil.Decode(normalizeHex(input))
		if err != nil {
			return nil, fmt.Errorf("invalid hex nonce: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("nonce longer than 32 bytes")
		}
		var word [32]byte
		copy(word[32-len(data):], data)
		return NonceFromBytes32(word), nil
	}
	return parseInteger(input)
}

func parseAddress(field, input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("%s: invalid address %q", field, input)
	}
	return common.HexToAddress(input), nil
}

func parseInteger(input string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(input, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", input)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("negative value %q", input)
	}
	return n, nil
}

func parseEther(input string) (*big.Int, error) {
	rat, ok := new(big.Rat).SetString(input)
	if !ok {
		return nil, fmt.Errorf("invalid ether amount %q", input)
	}
	if rat.Sign() < 0 {
		return nil, fmt.Errorf("negative value %q", input)
	}
	rat.Mul(rat, new(big.Rat).SetInt64(params.Ether))
	if !rat.IsInt() {
		return nil, fmt.Errorf("ether amount %q has more than 18 decimals", input)
	}
	return new(big.Int).Set(rat.Num()), nil
}

// hexutil.Decode rejects odd-length input such as 0x1a4.
func normalizeHex(input string) string {
	digits := input[2:]
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	return "0x" + digits
}
