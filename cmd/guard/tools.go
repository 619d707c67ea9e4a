package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"

	"commitGuard/internal/config"
	"commitGuard/internal/model"
	"commitGuard/internal/poolkey"
	"commitGuard/internal/price"
)

func runPoolID(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPoolID(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	key, err := poolkey.ParseDescriptor(cfg.Key)
	if err != nil {
		return err
	}
	if cfg.Sort {
		key = key.Sorted()
	}
	id, err := poolkey.DerivePoolID(key)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), id.Hex())
	return nil
}

func runSpot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSpot(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	sqrt, ok := new(big.Int).SetString(strings.TrimSpace(cfg.SqrtPriceX96), 0)
	if !ok {
		return fmt.Errorf("invalid sqrt-price-x96 %q", cfg.SqrtPriceX96)
	}
	spot, err := price.SpotPrice(sqrt, cfg.Decimals0, cfg.Decimals1)
	if err != nil {
		return err
	}
	inverted, err := price.InvertRat(spot)
	if err != nil {
		return err
	}
	precision := cfg.Precision
	if precision < 0 {
		precision = 0
	}

	return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
		"spot_price":          spot.FloatString(int(cfg.Decimals1)),
		"spot_price_inverted": inverted.FloatString(precision),
	})
}

func runTwap(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadTwap(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	twap, err := price.ComputeTwap(model.TwapWindow{
		TickCumulativeStart: cfg.TickCumulativeStart,
		TickCumulativeEnd:   cfg.TickCumulativeEnd,
		ElapsedSeconds:      cfg.Elapsed,
	}, cfg.ScaleExponent)
	if err != nil {
		return err
	}

	return json.NewEncoder(cmd.OutOrStdout()).Encode(struct {
		AverageTick int64  `json:"average_tick"`
		Price       string `json:"twap_price"`
	}{twap.AverageTick, twap.Text})
}
