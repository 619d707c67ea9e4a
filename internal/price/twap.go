package price

import (
	"fmt"
	"math/big"

	"commitGuard/internal/model"
)

const (
	// MaxTick bounds the tick range of concentrated-liquidity pools.
	MaxTick = 887272

	TwapFractionDigits = 18

	floatPrec = 256
)

// tickBase is the 1 basis point price step.
var tickBase = big.NewRat(10001, 10000)

// Twap is a TWAP result.
type Twap struct {
	AverageTick int64
	Price       *big.Float
	Text        string
}

// AverageTick returns (end - start) / elapsed, truncated toward zero.
func AverageTick(window model.TwapWindow) (int64, error) {
	if window.ElapsedSeconds == 0 {
		return 0, &InvalidWindowError{Reason: "elapsed seconds must be positive"}
	}
	delta := window.TickCumulativeEnd - window.TickCumulativeStart
	tick := delta / int64(window.ElapsedSeconds)
	if tick > MaxTick || tick < -MaxTick {
		return 0, &InvalidWindowError{
			ElapsedSeconds: window.ElapsedSeconds,
			Reason:         fmt.Sprintf("average tick %d outside [-%d, %d]", tick, MaxTick, MaxTick),
		}
	}
	return tick, nil
}

// ComputeTwap returns 10^scaleExponent / 1.0001^averageTick.
func ComputeTwap(window model.TwapWindow, scaleExponent int) (Twap, error) {
	tick, err := AverageTick(window)
	if err != nil {
		return Twap{}, err
	}
	price := TickToPrice(tick, scaleExponent)
	return Twap{
		AverageTick: tick,
		Price:       price,
		Text:        price.Text('f', TwapFractionDigits),
	}, nil
}

// ScaleExponent derives the TWAP scaling exponent from the pair's decimals.
func ScaleExponent(decimals0, decimals1 uint8) int {
	return int(decimals0) - int(decimals1)
}

// TickToPrice returns 10^scaleExponent / 1.0001^tick at 256-bit precision.
func TickToPrice(tick int64, scaleExponent int) *big.Float {
	base := new(big.Float).SetPrec(floatPrec).SetRat(tickBase)

	exp := tick
	if exp < 0 {
		exp = -exp
	}
	power := powFloat(base, uint64(exp))

	scale := new(big.Float).SetPrec(floatPrec).SetInt(pow10(absInt(scaleExponent)))
	if scaleExponent < 0 {
		scale.Quo(new(big.Float).SetPrec(floatPrec).SetInt64(1), scale)
	}

	if tick >= 0 {
		return scale.Quo(scale, power)
	}
	return scale.Mul(scale, power)
}

// TwapWindowFromObserve builds a window from an observe(secondsAgos) result.
// The reading with the larger secondsAgo is the start of the window.
func TwapWindowFromObserve(tickCumulatives []int64, secondsAgos []uint32) (model.TwapWindow, error) {
	if len(tickCumulatives) != 2 || len(secondsAgos) != 2 {
		return model.TwapWindow{}, fmt.Errorf("observe needs exactly two points, got %d cumulatives and %d offsets", len(tickCumulatives), len(secondsAgos))
	}

	startIdx, endIdx := 0, 1
	if secondsAgos[1] > secondsAgos[0] {
		startIdx, endIdx = 1, 0
	}
	return model.TwapWindow{
		TickCumulativeStart: tickCumulatives[startIdx],
		TickCumulativeEnd:   tickCumulatives[endIdx],
		ElapsedSeconds:      secondsAgos[startIdx] - secondsAgos[endIdx],
	}, nil
}

func powFloat(base *big.Float, n uint64) *big.Float {
	result := new(big.Float).SetPrec(floatPrec).SetInt64(1)
	b := new(big.Float).SetPrec(floatPrec).Set(base)
	for n > 0 {
		if n&1 == 1 {
			result.Mul(result, b)
		}
		b.Mul(b, b)
		n >>= 1
	}
	return result
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
