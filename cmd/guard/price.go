package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"commitGuard/internal/chain"
	"commitGuard/internal/config"
	"commitGuard/internal/feed"
	"commitGuard/internal/model"
	"commitGuard/internal/oracle"
	"commitGuard/internal/poolkey"
	"commitGuard/internal/storage"
	redisstore "commitGuard/internal/storage/redis"
)

func runPrice(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPrice(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	pipelineCfg, err := buildPipelineConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, cfg.RPCTimeout)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var tokenStore feed.TokenMetaStore
	if cfg.RedisAddr != "" {
		rdb, err := redisstore.New(ctx, cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		cache, err := redisstore.NewTokenCache(rdb, cfg.RedisPrefix, cfg.RedisTTL)
		if err != nil {
			return err
		}
		tokenStore = cache
	}
	tokens := feed.NewTokenResolver(chainClient, tokenStore, logger)

	pipeline, err := oracle.NewPipeline(pipelineCfg, chainClient, tokens, logger)
	if err != nil {
		return err
	}

	if pipelineCfg.FeedA != (common.Address{}) {
		describeFeeds(ctx, chainClient, logger, pipelineCfg.FeedA, pipelineCfg.FeedB)
	}

	sinks, closeSinks, err := openSinks(ctx, cfg.Sinks, logger)
	if err != nil {
		return err
	}
	defer closeSinks()

	logger.Info("price start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("pool", cfg.Pool),
		zap.Uint32("twap_window", cfg.TwapWindow),
		zap.Uint64("stale_threshold", cfg.StaleThreshold),
		zap.String("clock", cfg.Clock),
		zap.Bool("fallback", cfg.FeedA != ""),
		zap.Duration("interval", cfg.Interval),
	)

	out := cmd.OutOrStdout()
	if cfg.Interval <= 0 {
		return evaluateOnce(ctx, pipeline, sinks, out)
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		if err := evaluateOnce(ctx, pipeline, sinks, out); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("price evaluation failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			logger.Info("price stop")
			return nil
		case <-ticker.C:
		}
	}
}

func evaluateOnce(ctx context.Context, pipeline *oracle.Pipeline, sinks storage.Sink, out io.Writer) error {
	report, err := pipeline.Evaluate(ctx)
	if err != nil {
		return err
	}
	if err := sinks.PutPriceReports(ctx, []model.PriceReport{report}); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return json.NewEncoder(out).Encode(report)
}

// describeFeeds logs each fallback feed and warns when their decimals differ.
func describeFeeds(ctx context.Context, caller feed.Caller, logger *zap.Logger, feeds ...common.Address) {
	var decimals []uint8
	for _, address := range feeds {
		d, err := feed.ReadFeedDecimals(ctx, caller, address)
		if err != nil {
			logger.Warn("feed decimals read failed", zap.String("feed", address.Hex()), zap.Error(err))
			return
		}
		description, err := feed.ReadFeedDescription(ctx, caller, address)
		if err != nil {
			logger.Debug("feed description read failed", zap.String("feed", address.Hex()), zap.Error(err))
		}
		logger.Info("fallback feed",
			zap.String("feed", address.Hex()),
			zap.String("description", description),
			zap.Uint8("decimals", d),
		)
		decimals = append(decimals, d)
	}
	if len(decimals) == 2 && decimals[0] != decimals[1] {
		logger.Warn("fallback feeds have different decimals", zap.Uint8("feed_a", decimals[0]), zap.Uint8("feed_b", decimals[1]))
	}
}

func buildPipelineConfig(cfg config.PriceConfig) (oracle.Config, error) {
	pool, err := parseAddress("pool", cfg.Pool, true)
	if err != nil {
		return oracle.Config{}, err
	}
	token0, err := parseAddress("token0", cfg.Token0, false)
	if err != nil {
		return oracle.Config{}, err
	}
	token1, err := parseAddress("token1", cfg.Token1, false)
	if err != nil {
		return oracle.Config{}, err
	}
	feedA, err := parseAddress("feed-a", cfg.FeedA, false)
	if err != nil {
		return oracle.Config{}, err
	}
	feedB, err := parseAddress("feed-b", cfg.FeedB, false)
	if err != nil {
		return oracle.Config{}, err
	}
	stateView, err := parseAddress("state-view", cfg.StateView, false)
	if err != nil {
		return oracle.Config{}, err
	}

	var v4Key *poolkey.Descriptor
	if cfg.V4Key != nil {
		key, err := poolkey.ParseDescriptor(*cfg.V4Key)
		if err != nil {
			return oracle.Config{}, fmt.Errorf("v4 pool key: %w", err)
		}
		v4Key = &key
	}

	return oracle.Config{
		Pool:           pool,
		Decimals0:      cfg.Decimals0,
		Decimals1:      cfg.Decimals1,
		Token0:         token0,
		Token1:         token1,
		TwapWindow:     cfg.TwapWindow,
		ScaleExponent:  cfg.ScaleExponent,
		StaleThreshold: cfg.StaleThreshold,
		Clock:          cfg.Clock,
		FeedA:          feedA,
		FeedB:          feedB,
		StateView:      stateView,
		V4Key:          v4Key,
		Retry: oracle.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryBackoff,
		},
	}, nil
}

func parseAddress(field, input string, required bool) (common.Address, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		if required {
			return common.Address{}, fmt.Errorf("%s address is required", field)
		}
		return common.Address{}, nil
	}
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("%s: invalid address %q", field, input)
	}
	return common.HexToAddress(input), nil
}
