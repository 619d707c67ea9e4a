package price

import (
	"math/big"
	"strings"

	"commitGuard/internal/abienc"
)

const maxSqrtPriceBits = 160

var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// SpotPrice returns sqrtPriceX96^2 / 2^192 * 10^(decimals1-decimals0) as an
// exact rational.
func SpotPrice(sqrtPriceX96 *big.Int, decimals0, decimals1 uint8) (*big.Rat, error) {
	if sqrtPriceX96 == nil {
		return nil, &abienc.EncodingError{Index: -1, Reason: "nil sqrtPriceX96"}
	}
	if sqrtPriceX96.Sign() < 0 || sqrtPriceX96.BitLen() > maxSqrtPriceBits {
		return nil, &abienc.EncodingError{Index: -1, Reason: "sqrtPriceX96 " + sqrtPriceX96.String() + " is not a uint160"}
	}

	num := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	den := new(big.Int).Set(q192)

	shift := int(decimals1) - int(decimals0)
	if shift > 0 {
		num.Mul(num, pow10(shift))
	} else if shift < 0 {
		den.Mul(den, pow10(-shift))
	}
	return new(big.Rat).SetFrac(num, den), nil
}

// SqrtPriceToDecimal formats SpotPrice with decimals1 fraction digits.
func SqrtPriceToDecimal(sqrtPriceX96 *big.Int, decimals0, decimals1 uint8) (string, error) {
	rat, err := SpotPrice(sqrtPriceX96, decimals0, decimals1)
	if err != nil {
		return "", err
	}
	return rat.FloatString(int(decimals1)), nil
}

// Invert returns 1/price for a decimal string, formatted to precision digits.
func Invert(price string, precision int) (string, error) {
	rat, ok := new(big.Rat).SetString(strings.TrimSpace(price))
	if !ok {
		return "", &abienc.EncodingError{Index: -1, Reason: "invalid decimal " + price}
	}
	inv, err := InvertRat(rat)
	if err != nil {
		return "", err
	}
	if precision < 0 {
		precision = 0
	}
	return inv.FloatString(precision), nil
}

// InvertRat returns 1/price without rounding.
func InvertRat(price *big.Rat) (*big.Rat, error) {
	if price == nil || price.Sign() == 0 {
		return nil, &DivisionByZeroError{Operation: "invert price"}
	}
	return new(big.Rat).Inv(price), nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
