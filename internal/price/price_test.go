package price

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commitGuard/internal/abienc"
	"commitGuard/internal/model"
)

var q96 = new(big.Int).Lsh(big.NewInt(1), 96)

func TestSqrtPriceToDecimalParity(t *testing.T) {
	got, err := SqrtPriceToDecimal(q96, 18, 18)
	require.NoError(t, err)
	assert.Equal(t, "1.000000000000000000", got)

	doubled := new(big.Int).Lsh(q96, 1)
	got, err = SqrtPriceToDecimal(doubled, 18, 18)
	require.NoError(t, err)
	assert.Equal(t, "4.000000000000000000", got)
}

func TestSqrtPriceToDecimalScalesByDecimals(t *testing.T) {
	// raw price 1, decimals1 - decimals0 = -10
	got, err := SqrtPriceToDecimal(q96, 18, 8)
	require.NoError(t, err)
	assert.Equal(t, "0.00000000", got)

	got, err = SqrtPriceToDecimal(q96, 8, 18)
	require.NoError(t, err)
	assert.Equal(t, "10000000000.000000000000000000", got)
}

func TestSqrtPriceRejectsOutOfRange(t *testing.T) {
	var encErr *abienc.EncodingError

	_, err := SqrtPriceToDecimal(new(big.Int).Lsh(big.NewInt(1), 160), 18, 18)
	require.ErrorAs(t, err, &encErr)

	_, err = SqrtPriceToDecimal(big.NewInt(-1), 18, 18)
	require.ErrorAs(t, err, &encErr)

	_, err = SqrtPriceToDecimal(nil, 18, 18)
	require.ErrorAs(t, err, &encErr)
}

func TestSpotTimesInverseIsOne(t *testing.T) {
	// sqrt(2.25) * 2^96
	sqrt := new(big.Int).Mul(q96, big.NewInt(3))
	sqrt.Rsh(sqrt, 1)

	spot, err := SqrtPriceToDecimal(sqrt, 18, 18)
	require.NoError(t, err)
	assert.Equal(t, "2.250000000000000000", spot)

	inv, err := Invert(spot, 18)
	require.NoError(t, err)
	assert.Equal(t, "0.444444444444444444", inv)

	a, _ := new(big.Rat).SetString(spot)
	b, _ := new(big.Rat).SetString(inv)
	product, _ := new(big.Rat).Mul(a, b).Float64()
	assert.InDelta(t, 1.0, product, 1e-15)
}

func TestInvertZero(t *testing.T) {
	var divErr *DivisionByZeroError

	_, err := Invert("0.000", 18)
	require.ErrorAs(t, err, &divErr)

	_, err = InvertRat(new(big.Rat))
	require.ErrorAs(t, err, &divErr)
}

func TestInvertRejectsGarbage(t *testing.T) {
	var encErr *abienc.EncodingError
	_, err := Invert("one", 18)
	require.ErrorAs(t, err, &encErr)
}

func TestAverageTickTruncatesTowardZero(t *testing.T) {
	tick, err := AverageTick(model.TwapWindow{TickCumulativeStart: 0, TickCumulativeEnd: 7, ElapsedSeconds: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), tick)

	tick, err = AverageTick(model.TwapWindow{TickCumulativeStart: 7, TickCumulativeEnd: 0, ElapsedSeconds: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(-3), tick)
}

func TestComputeTwapZeroTick(t *testing.T) {
	twap, err := ComputeTwap(model.TwapWindow{TickCumulativeStart: 100, TickCumulativeEnd: 100, ElapsedSeconds: 1800}, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), twap.AverageTick)
	assert.Equal(t, "10000000000.000000000000000000", twap.Text)
}

func TestComputeTwapNegativeDelta(t *testing.T) {
	// end below start gives a negative tick and a price above the scale
	twap, err := ComputeTwap(model.TwapWindow{TickCumulativeStart: 1800, TickCumulativeEnd: 0, ElapsedSeconds: 1800}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), twap.AverageTick)
	assert.Equal(t, "1.000100000000000000", twap.Text)

	twap, err = ComputeTwap(model.TwapWindow{TickCumulativeStart: 0, TickCumulativeEnd: 1800, ElapsedSeconds: 1800}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), twap.AverageTick)
	assert.Equal(t, "0.999900009999000100", twap.Text)
}

func TestComputeTwapMatchesFloat(t *testing.T) {
	twap, err := ComputeTwap(model.TwapWindow{TickCumulativeStart: 0, TickCumulativeEnd: 257000 * 1800, ElapsedSeconds: 1800}, 10)
	require.NoError(t, err)

	got, _ := twap.Price.Float64()
	want := 1e10 / math.Pow(1.0001, 257000)
	assert.InEpsilon(t, want, got, 1e-9)
}

func TestComputeTwapInvalidWindow(t *testing.T) {
	var winErr *InvalidWindowError

	_, err := ComputeTwap(model.TwapWindow{TickCumulativeStart: 0, TickCumulativeEnd: 10}, 10)
	require.ErrorAs(t, err, &winErr)

	_, err = ComputeTwap(model.TwapWindow{TickCumulativeEnd: (MaxTick + 1) * 10, ElapsedSeconds: 10}, 10)
	require.ErrorAs(t, err, &winErr)
}

func TestTwapWindowFromObserve(t *testing.T) {
	window, err := TwapWindowFromObserve([]int64{100, 400}, []uint32{1800, 0})
	require.NoError(t, err)
	assert.Equal(t, model.TwapWindow{TickCumulativeStart: 100, TickCumulativeEnd: 400, ElapsedSeconds: 1800}, window)

	window, err = TwapWindowFromObserve([]int64{400, 100}, []uint32{0, 1800})
	require.NoError(t, err)
	assert.Equal(t, model.TwapWindow{TickCumulativeStart: 100, TickCumulativeEnd: 400, ElapsedSeconds: 1800}, window)

	_, err = TwapWindowFromObserve([]int64{1}, []uint32{0, 1})
	require.Error(t, err)
}

func TestScaleExponent(t *testing.T) {
	assert.Equal(t, 10, ScaleExponent(18, 8))
	assert.Equal(t, -12, ScaleExponent(6, 18))
}

func TestIsStaleBoundary(t *testing.T) {
	now := uint64(1_700_000_000)

	assert.False(t, IsStale(now-2, now, 2))
	assert.True(t, IsStale(now-3, now, 2))
	assert.False(t, IsStale(now, now, 0))
	assert.False(t, IsStale(now+30, now, 2))
	assert.Equal(t, uint64(0), Age(now+30, now))
}

func TestResolveFallback(t *testing.T) {
	a := model.FallbackQuote{Answer: big.NewInt(300000000000)}
	b := model.FallbackQuote{Answer: big.NewInt(60000000000)}

	got, err := ResolveFallback(a, b)
	require.NoError(t, err)
	assert.Equal(t, "5.000000000000000000", got)

	got, err = ResolveFallback(b, a)
	require.NoError(t, err)
	assert.Equal(t, "0.200000000000000000", got)
}

func TestResolveFallbackTruncates(t *testing.T) {
	got, err := ResolveFallback(model.FallbackQuote{Answer: big.NewInt(1)}, model.FallbackQuote{Answer: big.NewInt(3)})
	require.NoError(t, err)
	assert.Equal(t, "0.333333333333333333", got)
}

func TestResolveFallbackZeroDenominator(t *testing.T) {
	var divErr *DivisionByZeroError
	_, err := ResolveFallback(model.FallbackQuote{Answer: big.NewInt(1)}, model.FallbackQuote{Answer: big.NewInt(0)})
	require.ErrorAs(t, err, &divErr)
}

func TestResolveFallbackMissingAnswer(t *testing.T) {
	_, err := ResolveFallback(model.FallbackQuote{}, model.FallbackQuote{Answer: big.NewInt(1)})
	require.ErrorIs(t, err, ErrMissingAnswer)

	var encErr *abienc.EncodingError
	assert.False(t, errors.As(err, &encErr))
}
