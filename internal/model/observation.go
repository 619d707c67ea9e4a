package model

import "math/big"

// Slot0 is the full slot0() tuple of a V3 pool.
type Slot0 struct {
	SqrtPriceX96               *big.Int
	Tick                       int32
	ObservationIndex           uint16
	ObservationCardinality     uint16
	ObservationCardinalityNext uint16
	FeeProtocol                uint8
	Unlocked                   bool
}

// V4Slot0 is the StateView getSlot0(poolId) tuple.
type V4Slot0 struct {
	SqrtPriceX96 *big.Int
	Tick         int32
	ProtocolFee  uint32
	LPFee        uint32
}

// Observation is one entry of a pool's oracle ring buffer.
type Observation struct {
	BlockTimestamp                    uint32
	TickCumulative                    int64
	SecondsPerLiquidityCumulativeX128 *big.Int
	Initialized                       bool
}

// PriceObservation is a read-only price snapshot: slot0 joined with the
// timestamp of the observation slot0 points at.
type PriceObservation struct {
	SqrtPriceX96     *big.Int
	Tick             int32
	ObservationIndex uint16
	Timestamp        uint64
}

// TwapWindow holds two tick accumulator readings ElapsedSeconds apart.
type TwapWindow struct {
	TickCumulativeStart int64
	TickCumulativeEnd   int64
	ElapsedSeconds      uint32
}

// FallbackQuote is a latestRoundData() answer from an aggregator feed.
type FallbackQuote struct {
	RoundID         *big.Int
	Answer          *big.Int
	StartedAt       *big.Int
	UpdatedAt       *big.Int
	AnsweredInRound *big.Int
}
