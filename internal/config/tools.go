package config

import (
	"github.com/spf13/pflag"

	"commitGuard/internal/poolkey"
)

// PoolIDConfig holds configuration for the poolid command.
type PoolIDConfig struct {
	Key  poolkey.DescriptorInput
	Sort bool
}

func LoadPoolID(cfgFile string, flags *pflag.FlagSet) (PoolIDConfig, error) {
	v, err := load(cfgFile, flags, nil)
	if err != nil {
		return PoolIDConfig{}, err
	}
	return PoolIDConfig{
		Key:  loadV4Key(v),
		Sort: v.GetBool("sort"),
	}, nil
}

// SpotConfig holds configuration for the offline spot command.
type SpotConfig struct {
	SqrtPriceX96 string
	Decimals0    uint8
	Decimals1    uint8
	Precision    int
}

func LoadSpot(cfgFile string, flags *pflag.FlagSet) (SpotConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"decimals0": 18,
		"decimals1": 18,
		"precision": 18,
	})
	if err != nil {
		return SpotConfig{}, err
	}
	d0, err := optionalUint8(v, "decimals0")
	if err != nil {
		return SpotConfig{}, err
	}
	d1, err := optionalUint8(v, "decimals1")
	if err != nil {
		return SpotConfig{}, err
	}
	return SpotConfig{
		SqrtPriceX96: v.GetString("sqrt-price-x96"),
		Decimals0:    *d0,
		Decimals1:    *d1,
		Precision:    v.GetInt("precision"),
	}, nil
}

// TwapConfig holds configuration for the offline twap command.
type TwapConfig struct {
	TickCumulativeStart int64
	TickCumulativeEnd   int64
	Elapsed             uint32
	ScaleExponent       int
}

func LoadTwap(cfgFile string, flags *pflag.FlagSet) (TwapConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"twap-scale-exponent": 10,
	})
	if err != nil {
		return TwapConfig{}, err
	}
	return TwapConfig{
		TickCumulativeStart: v.GetInt64("start"),
		TickCumulativeEnd:   v.GetInt64("end"),
		Elapsed:             v.GetUint32("elapsed"),
		ScaleExponent:       v.GetInt("twap-scale-exponent"),
	}, nil
}
