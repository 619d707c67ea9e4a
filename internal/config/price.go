package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"commitGuard/internal/poolkey"
)

// PriceConfig holds configuration for the price command.
type PriceConfig struct {
	RPCURL         string
	Pool           string
	Decimals0      *uint8
	Decimals1      *uint8
	Token0         string
	Token1         string
	TwapWindow     uint32
	ScaleExponent  *int
	StaleThreshold uint64
	Clock          string

	FeedA string
	FeedB string

	StateView string
	V4Key     *poolkey.DescriptorInput

	MaxRetries   int
	RetryBackoff time.Duration
	RPCTimeout   time.Duration
	Interval     time.Duration

	RedisAddr   string
	RedisPrefix string
	RedisTTL    time.Duration

	Sinks    Sinks
	LogLevel string
}

// LoadPrice merges config sources into PriceConfig.
func LoadPrice(cfgFile string, flags *pflag.FlagSet) (PriceConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"twap-window":     1800,
		"stale-threshold": 2,
		"clock":           "wall",
		"max-retries":     3,
		"retry-backoff":   500 * time.Millisecond,
		"rpc-timeout":     10 * time.Second,
		"redis-prefix":    "guard:token:",
	})
	if err != nil {
		return PriceConfig{}, err
	}

	d0, err := optionalUint8(v, "decimals0")
	if err != nil {
		return PriceConfig{}, err
	}
	d1, err := optionalUint8(v, "decimals1")
	if err != nil {
		return PriceConfig{}, err
	}

	cfg := PriceConfig{
		RPCURL:         v.GetString("rpc"),
		Pool:           v.GetString("pool"),
		Decimals0:      d0,
		Decimals1:      d1,
		Token0:         v.GetString("token0"),
		Token1:         v.GetString("token1"),
		TwapWindow:     v.GetUint32("twap-window"),
		ScaleExponent:  optionalInt(v, "twap-scale-exponent"),
		StaleThreshold: v.GetUint64("stale-threshold"),
		Clock:          v.GetString("clock"),
		FeedA:          v.GetString("feed-a"),
		FeedB:          v.GetString("feed-b"),
		StateView:      v.GetString("state-view"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		RPCTimeout:     v.GetDuration("rpc-timeout"),
		Interval:       v.GetDuration("interval"),
		RedisAddr:      v.GetString("redis-addr"),
		RedisPrefix:    v.GetString("redis-prefix"),
		RedisTTL:       v.GetDuration("redis-ttl"),
		Sinks:          loadSinks(v),
		LogLevel:       v.GetString("log-level"),
	}

	if v.GetString("v4-currency0") != "" || v.GetString("v4-currency1") != "" {
		key := loadV4Key(v)
		cfg.V4Key = &key
	}

	return cfg, nil
}

func loadV4Key(v *viper.Viper) poolkey.DescriptorInput {
	return poolkey.DescriptorInput{
		Currency0:   v.GetString("v4-currency0"),
		Currency1:   v.GetString("v4-currency1"),
		Fee:         v.GetString("v4-fee"),
		TickSpacing: v.GetString("v4-tick-spacing"),
		Hooks:       v.GetString("v4-hooks"),
	}
}
