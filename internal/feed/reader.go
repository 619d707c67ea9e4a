package feed

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"commitGuard/internal/model"
)

// Caller is the eth_call surface the readers need.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error)
}

// ReadSlot0 returns the slot0() tuple of a V3 pool.
func ReadSlot0(ctx context.Context, caller Caller, pool common.Address) (model.Slot0, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return model.Slot0{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := callMethod(ctx, caller, pool, poolABI, "slot0")
	if err != nil {
		return model.Slot0{}, err
	}
	if len(values) != 7 {
		return model.Slot0{}, fmt.Errorf("slot0: unexpected %d outputs", len(values))
	}

	sqrt, err := asBigInt(values[0])
	if err != nil {
		return model.Slot0{}, fmt.Errorf("slot0 sqrtPriceX96: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return model.Slot0{}, fmt.Errorf("slot0 tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return model.Slot0{}, fmt.Errorf("slot0 tick: %w", err)
	}
	index, _ := values[2].(uint16)
	cardinality, _ := values[3].(uint16)
	cardinalityNext, _ := values[4].(uint16)
	feeProtocol, _ := values[5].(uint8)
	unlocked, _ := values[6].(bool)

	return model.Slot0{
		SqrtPriceX96:               sqrt,
		Tick:                       tick,
		ObservationIndex:           index,
		ObservationCardinality:     cardinality,
		ObservationCardinalityNext: cardinalityNext,
		FeeProtocol:                feeProtocol,
		Unlocked:                   unlocked,
	}, nil
}

// ReadObserve calls observe(secondsAgos) and returns the tick cumulatives.
func ReadObserve(ctx context.Context, caller Caller, pool common.Address, secondsAgos []uint32) ([]int64, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := callMethod(ctx, caller, pool, poolABI, "observe", secondsAgos)
	if err != nil {
		return nil, err
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("observe: unexpected %d outputs", len(values))
	}

	raw, ok := values[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("observe: unsupported tickCumulatives type %T", values[0])
	}
	if len(raw) != len(secondsAgos) {
		return nil, fmt.Errorf("observe: got %d cumulatives for %d offsets", len(raw), len(secondsAgos))
	}
	out := make([]int64, len(raw))
	for i, v := range raw {
		if !v.IsInt64() {
			return nil, fmt.Errorf("observe: tick cumulative %s overflows int64", v)
		}
		out[i] = v.Int64()
	}
	return out, nil
}

// ReadObservation returns observations(index) of a V3 pool.
func ReadObservation(ctx context.Context, caller Caller, pool common.Address, index uint16) (model.Observation, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return model.Observation{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := callMethod(ctx, caller, pool, poolABI, "observations", new(big.Int).SetUint64(uint64(index)))
	if err != nil {
		return model.Observation{}, err
	}
	if len(values) != 4 {
		return model.Observation{}, fmt.Errorf("observations: unexpected %d outputs", len(values))
	}

	ts, ok := values[0].(uint32)
	if !ok {
		return model.Observation{}, fmt.Errorf("observations: unsupported timestamp type %T", values[0])
	}
	cumulative, err := asBigInt(values[1])
	if err != nil {
		return model.Observation{}, fmt.Errorf("observations tickCumulative: %w", err)
	}
	perLiquidity, err := asBigInt(values[2])
	if err != nil {
		return model.Observation{}, fmt.Errorf("observations secondsPerLiquidity: %w", err)
	}
	initialized, _ := values[3].(bool)

	return model.Observation{
		BlockTimestamp:                    ts,
		TickCumulative:                    cumulative.Int64(),
		SecondsPerLiquidityCumulativeX128: perLiquidity,
		Initialized:                       initialized,
	}, nil
}

// ReadPriceObservation joins slot0 with the timestamp of the observation it points at.
func ReadPriceObservation(ctx context.Context, caller Caller, pool common.Address) (model.PriceObservation, error) {
	slot0, err := ReadSlot0(ctx, caller, pool)
	if err != nil {
		return model.PriceObservation{}, err
	}
	obs, err := ReadObservation(ctx, caller, pool, slot0.ObservationIndex)
	if err != nil {
		return model.PriceObservation{}, err
	}
	return model.PriceObservation{
		SqrtPriceX96:     slot0.SqrtPriceX96,
		Tick:             slot0.Tick,
		ObservationIndex: slot0.ObservationIndex,
		Timestamp:        uint64(obs.BlockTimestamp),
	}, nil
}

// ReadLatestRound returns latestRoundData() of an aggregator feed.
func ReadLatestRound(ctx context.Context, caller Caller, feed common.Address) (model.FallbackQuote, error) {
	feedABI, err := AggregatorABI()
	if err != nil {
		return model.FallbackQuote{}, fmt.Errorf("parse aggregator abi: %w", err)
	}
	values, err := callMethod(ctx, caller, feed, feedABI, "latestRoundData")
	if err != nil {
		return model.FallbackQuote{}, err
	}
	if len(values) != 5 {
		return model.FallbackQuote{}, fmt.Errorf("latestRoundData: unexpected %d outputs", len(values))
	}

	ints := make([]*big.Int, len(values))
	for i, v := range values {
		n, err := asBigInt(v)
		if err != nil {
			return model.FallbackQuote{}, fmt.Errorf("latestRoundData output %d: %w", i, err)
		}
		ints[i] = n
	}
	return model.FallbackQuote{
		RoundID:         ints[0],
		Answer:          ints[1],
		StartedAt:       ints[2],
		UpdatedAt:       ints[3],
		AnsweredInRound: ints[4],
	}, nil
}

// ReadFeedDecimals returns decimals() of an aggregator feed.
func ReadFeedDecimals(ctx context.Context, caller Caller, feed common.Address) (uint8, error) {
	feedABI, err := AggregatorABI()
	if err != nil {
		return 0, fmt.Errorf("parse aggregator abi: %w", err)
	}
	values, err := callMethod(ctx, caller, feed, feedABI, "decimals")
	if err != nil {
		return 0, err
	}
	return asUint8(values[0])
}

// ReadFeedDescription returns description() of an aggregator feed.
func ReadFeedDescription(ctx context.Context, caller Caller, feed common.Address) (string, error) {
	feedABI, err := AggregatorABI()
	if err != nil {
		return "", fmt.Errorf("parse aggregator abi: %w", err)
	}
	values, err := callMethod(ctx, caller, feed, feedABI, "description")
	if err != nil {
		return "", err
	}
	description, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("description: unsupported type %T", values[0])
	}
	return description, nil
}

// ReadV4Slot0 returns StateView.getSlot0(poolId).
func ReadV4Slot0(ctx context.Context, caller Caller, stateView common.Address, poolID common.Hash) (model.V4Slot0, error) {
	viewABI, err := StateViewABI()
	if err != nil {
		return model.V4Slot0{}, fmt.Errorf("parse state view abi: %w", err)
	}
	values, err := callMethod(ctx, caller, stateView, viewABI, "getSlot0", [32]byte(poolID))
	if err != nil {
		return model.V4Slot0{}, err
	}
	if len(values) != 4 {
		return model.V4Slot0{}, fmt.Errorf("getSlot0: unexpected %d outputs", len(values))
	}

	sqrt, err := asBigInt(values[0])
	if err != nil {
		return model.V4Slot0{}, fmt.Errorf("getSlot0 sqrtPriceX96: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return model.V4Slot0{}, fmt.Errorf("getSlot0 tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return model.V4Slot0{}, fmt.Errorf("getSlot0 tick: %w", err)
	}
	protocolFee, err := asBigInt(values[2])
	if err != nil {
		return model.V4Slot0{}, fmt.Errorf("getSlot0 protocolFee: %w", err)
	}
	lpFee, err := asBigInt(values[3])
	if err != nil {
		return model.V4Slot0{}, fmt.Errorf("getSlot0 lpFee: %w", err)
	}

	return model.V4Slot0{
		SqrtPriceX96: sqrt,
		Tick:         tick,
		ProtocolFee:  uint32(protocolFee.Uint64()),
		LPFee:        uint32(lpFee.Uint64()),
	}, nil
}

func callMethod(ctx context.Context, caller Caller, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	if caller == nil {
		return nil, fmt.Errorf("chain caller is nil")
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}
