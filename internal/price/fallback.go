package price

import (
	"math/big"

	"github.com/shopspring/decimal"

	"commitGuard/internal/model"
)

// CrossDecimals is the fixed-point scale of a fallback cross price.
const CrossDecimals = 18

// CrossRate returns a.Answer * 10^18 / b.Answer in integer arithmetic.
func CrossRate(a, b model.FallbackQuote) (*big.Int, error) {
	if a.Answer == nil || b.Answer == nil {
		return nil, ErrMissingAnswer
	}
	if b.Answer.Sign() == 0 {
		return nil, &DivisionByZeroError{Operation: "fallback cross rate"}
	}

	n := new(big.Int).Mul(a.Answer, pow10(CrossDecimals))
	return n.Quo(n, b.Answer), nil
}

// ResolveFallback formats CrossRate as an 18-digit fixed-point decimal.
func ResolveFallback(a, b model.FallbackQuote) (string, error) {
	cross, err := CrossRate(a, b)
	if err != nil {
		return "", err
	}
	return decimal.NewFromBigInt(cross, -CrossDecimals).StringFixed(CrossDecimals), nil
}
