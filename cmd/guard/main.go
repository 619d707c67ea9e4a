package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "guard",
		Short:        "Commit-reveal hashing and manipulation-resistant pool pricing",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	commitCmd := &cobra.Command{
		Use:   "commit",
		Short: "Compute commit hashes for trade intents",
		RunE:  runCommit,
	}

	commitCmd.Flags().String("sender", "", "trader address")
	commitCmd.Flags().String("amount-in", "", "input amount in base units, or with an ether suffix")
	commitCmd.Flags().String("min-amount-out", "", "minimum output amount in base units, or with an ether suffix")
	commitCmd.Flags().String("token-in", "", "input token address")
	commitCmd.Flags().String("token-out", "", "output token address")
	commitCmd.Flags().String("nonce", "", "uint256 nonce (decimal or 0x-hex)")
	commitCmd.Flags().String("in", "", "input intents JSONL (batch mode)")
	commitCmd.Flags().String("out", "", "output commit records JSONL")
	commitCmd.Flags().String("errors", "./data/commit_errors.jsonl", "rejected intents JSONL (batch mode)")
	commitCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	commitCmd.Flags().String("nats-url", "", "NATS URL")
	commitCmd.Flags().String("nats-prefix", "guard", "NATS subject prefix")
	commitCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(commitCmd)

	poolIDCmd := &cobra.Command{
		Use:   "poolid",
		Short: "Derive a v4 pool id from its key",
		RunE:  runPoolID,
	}

	addV4KeyFlags(poolIDCmd)
	poolIDCmd.Flags().Bool("sort", false, "sort currencies before hashing")

	root.AddCommand(poolIDCmd)

	spotCmd := &cobra.Command{
		Use:   "spot",
		Short: "Convert a sqrtPriceX96 value to a decimal price",
		RunE:  runSpot,
	}

	spotCmd.Flags().String("sqrt-price-x96", "", "sqrtPriceX96 from slot0")
	spotCmd.Flags().Uint8("decimals0", 18, "quote token decimals (pool token1)")
	spotCmd.Flags().Uint8("decimals1", 18, "base token decimals (pool token0)")
	spotCmd.Flags().Int("precision", 18, "fraction digits of the inverted price")

	root.AddCommand(spotCmd)

	twapCmd := &cobra.Command{
		Use:   "twap",
		Short: "Compute a TWAP from two tick accumulator readings",
		RunE:  runTwap,
	}

	twapCmd.Flags().Int64("start", 0, "tick cumulative at the start of the window")
	twapCmd.Flags().Int64("end", 0, "tick cumulative at the end of the window")
	twapCmd.Flags().Uint32("elapsed", 0, "seconds between the readings")
	twapCmd.Flags().Int("twap-scale-exponent", 10, "power of ten divided by 1.0001^tick")

	root.AddCommand(twapCmd)

	priceCmd := &cobra.Command{
		Use:   "price",
		Short: "Evaluate pool price, TWAP, staleness and fallback",
		RunE:  runPrice,
	}

	priceCmd.Flags().String("rpc", "", "RPC URL")
	priceCmd.Flags().String("pool", "", "V3 pool address")
	priceCmd.Flags().Uint8("decimals0", 0, "quote token decimals, pool token1 (read from chain when unset)")
	priceCmd.Flags().Uint8("decimals1", 0, "base token decimals, pool token0 (read from chain when unset)")
	priceCmd.Flags().String("token0", "", "token0 address (read from the pool when unset)")
	priceCmd.Flags().String("token1", "", "token1 address (read from the pool when unset)")
	priceCmd.Flags().Uint32("twap-window", 1800, "TWAP window in seconds")
	priceCmd.Flags().Int("twap-scale-exponent", 0, "TWAP power of ten (decimals0 - decimals1 when unset)")
	priceCmd.Flags().Uint64("stale-threshold", 2, "maximum observation age in seconds")
	priceCmd.Flags().String("clock", "wall", "staleness clock (wall, block)")
	priceCmd.Flags().String("feed-a", "", "fallback numerator feed address")
	priceCmd.Flags().String("feed-b", "", "fallback denominator feed address")
	priceCmd.Flags().String("state-view", "", "v4 StateView address")
	addV4KeyFlags(priceCmd)
	priceCmd.Flags().Int("max-retries", 3, "maximum retry attempts per chain read")
	priceCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	priceCmd.Flags().Duration("rpc-timeout", 10*time.Second, "timeout per RPC call")
	priceCmd.Flags().Duration("interval", 0, "re-evaluate every interval (0 evaluates once)")
	priceCmd.Flags().String("redis-addr", "", "Redis address for the shared token cache")
	priceCmd.Flags().String("redis-prefix", "guard:token:", "Redis key prefix")
	priceCmd.Flags().Duration("redis-ttl", 0, "Redis entry TTL (0 keeps entries)")
	priceCmd.Flags().String("out", "", "output price reports JSONL")
	priceCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	priceCmd.Flags().String("nats-url", "", "NATS URL")
	priceCmd.Flags().String("nats-prefix", "guard", "NATS subject prefix")
	priceCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(priceCmd)

	return root
}

func addV4KeyFlags(cmd *cobra.Command) {
	cmd.Flags().String("v4-currency0", "", "v4 pool currency0")
	cmd.Flags().String("v4-currency1", "", "v4 pool currency1")
	cmd.Flags().String("v4-fee", "", "v4 pool fee (uint24)")
	cmd.Flags().String("v4-tick-spacing", "", "v4 pool tick spacing (int24)")
	cmd.Flags().String("v4-hooks", "", "v4 hooks address (zero when empty)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
