package oracle

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"commitGuard/internal/chain"
	"commitGuard/internal/feed"
	"commitGuard/internal/model"
	"commitGuard/internal/poolkey"
	"commitGuard/internal/price"
)

const (
	ClockWall  = "wall"
	ClockBlock = "block"

	invertedDigits = 18
)

// Chain is the chain surface the pipeline reads from.
type Chain interface {
	feed.Caller
	ChainID(ctx context.Context) (*big.Int, error)
	LatestHead(ctx context.Context) (chain.Head, error)
}

// Config controls one pipeline. Nil decimals are resolved from the pool's tokens.
type Config struct {
	Pool           common.Address
	Decimals0      *uint8
	Decimals1      *uint8
	Token0         common.Address
	Token1         common.Address
	TwapWindow     uint32
	ScaleExponent  *int
	StaleThreshold uint64
	Clock          string

	FeedA common.Address
	FeedB common.Address

	StateView common.Address
	V4Key     *poolkey.Descriptor

	Retry RetryPolicy
}

// Pipeline evaluates pool price, TWAP, staleness and fallback in one pass.
// Evaluate is not safe for concurrent use.
type Pipeline struct {
	cfg    Config
	chain  Chain
	tokens *feed.TokenResolver
	logger *zap.Logger
	now    func() time.Time
}

// NewPipeline validates cfg. tokens may be nil when both decimals are configured.
func NewPipeline(cfg Config, chainClient Chain, tokens *feed.TokenResolver, logger *zap.Logger) (*Pipeline, error) {
	if chainClient == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if cfg.Pool == (common.Address{}) {
		return nil, fmt.Errorf("pool address is required")
	}
	if cfg.TwapWindow == 0 {
		return nil, &price.InvalidWindowError{Reason: "twap window must be positive"}
	}
	switch cfg.Clock {
	case "":
		cfg.Clock = ClockWall
	case ClockWall, ClockBlock:
	default:
		return nil, fmt.Errorf("unknown clock %q", cfg.Clock)
	}
	if (cfg.FeedA == common.Address{}) != (cfg.FeedB == common.Address{}) {
		return nil, fmt.Errorf("fallback needs both feed-a and feed-b")
	}
	if cfg.V4Key != nil && cfg.StateView == (common.Address{}) {
		return nil, fmt.Errorf("v4 pool key requires a state view address")
	}
	if (cfg.Decimals0 == nil || cfg.Decimals1 == nil) && tokens == nil {
		return nil, fmt.Errorf("token decimals are not configured and no resolver is available")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		cfg:    cfg,
		chain:  chainClient,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Evaluate reads the pool and produces a PriceReport.
func (p *Pipeline) Evaluate(ctx context.Context) (model.PriceReport, error) {
	var chainID *big.Int
	if err := p.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		var err error
		chainID, err = p.chain.ChainID(ctx)
		return err
	}); err != nil {
		return model.PriceReport{}, fmt.Errorf("chain id: %w", err)
	}

	decimals0, decimals1, err := p.decimals(ctx)
	if err != nil {
		return model.PriceReport{}, err
	}

	var obs model.PriceObservation
	if err := p.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		var err error
		obs, err = feed.ReadPriceObservation(ctx, p.chain, p.cfg.Pool)
		return err
	}); err != nil {
		return model.PriceReport{}, fmt.Errorf("read pool state: %w", err)
	}

	spot, err := price.SpotPrice(obs.SqrtPriceX96, decimals0, decimals1)
	if err != nil {
		return model.PriceReport{}, fmt.Errorf("spot price: %w", err)
	}
	inverted, err := price.InvertRat(spot)
	if err != nil {
		return model.PriceReport{}, fmt.Errorf("invert spot price: %w", err)
	}

	secondsAgos := []uint32{p.cfg.TwapWindow, 0}
	var cumulatives []int64
	if err := p.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		var err error
		cumulatives, err = feed.ReadObserve(ctx, p.chain, p.cfg.Pool, secondsAgos)
		return err
	}); err != nil {
		return model.PriceReport{}, fmt.Errorf("observe: %w", err)
	}
	window, err := price.TwapWindowFromObserve(cumulatives, secondsAgos)
	if err != nil {
		return model.PriceReport{}, err
	}
	scale := price.ScaleExponent(decimals0, decimals1)
	if p.cfg.ScaleExponent != nil {
		scale = *p.cfg.ScaleExponent
	}
	twap, err := price.ComputeTwap(window, scale)
	if err != nil {
		return model.PriceReport{}, fmt.Errorf("twap: %w", err)
	}

	now, err := p.clock(ctx)
	if err != nil {
		return model.PriceReport{}, err
	}
	stale := price.IsStale(obs.Timestamp, now, p.cfg.StaleThreshold)

	report := model.PriceReport{
		ChainID:           chainID.Uint64(),
		Pool:              p.cfg.Pool.Hex(),
		SqrtPriceX96:      obs.SqrtPriceX96.String(),
		Tick:              obs.Tick,
		SpotPrice:         spot.FloatString(int(decimals1)),
		SpotPriceInverted: inverted.FloatString(invertedDigits),
		AverageTick:       twap.AverageTick,
		TwapPrice:         twap.Text,
		TwapWindowSecs:    p.cfg.TwapWindow,
		ObservationTS:     obs.Timestamp,
		EvaluatedAt:       now,
		AgeSeconds:        price.Age(obs.Timestamp, now),
		Stale:             stale,
		Price:             twap.Text,
		PriceSource:       model.PriceSourceTWAP,
	}

	if stale {
		if err := p.applyFallback(ctx, &report); err != nil {
			return model.PriceReport{}, err
		}
	}

	if p.cfg.V4Key != nil {
		state, err := p.readV4(ctx, decimals0, decimals1)
		if err != nil {
			return model.PriceReport{}, err
		}
		report.V4 = state
	}

	p.logger.Debug("price evaluated",
		zap.String("pool", report.Pool),
		zap.String("price", report.Price),
		zap.String("source", report.PriceSource),
		zap.Uint64("age_seconds", report.AgeSeconds),
	)
	return report, nil
}

func (p *Pipeline) applyFallback(ctx context.Context, report *model.PriceReport) error {
	if p.cfg.FeedA == (common.Address{}) {
		p.logger.Warn("primary price is stale and no fallback feeds are configured",
			zap.String("pool", report.Pool),
			zap.Uint64("age_seconds", report.AgeSeconds),
			zap.Uint64("threshold", p.cfg.StaleThreshold),
		)
		report.PriceSource = model.PriceSourceStalePrimary
		return nil
	}

	a, b, err := FetchFallbackQuotes(ctx, p.chain, p.cfg.FeedA, p.cfg.FeedB, p.cfg.Retry)
	if err != nil {
		return err
	}
	cross, err := price.ResolveFallback(a, b)
	if err != nil {
		return fmt.Errorf("fallback price: %w", err)
	}

	p.logger.Info("stale primary price replaced by fallback",
		zap.String("pool", report.Pool),
		zap.Uint64("age_seconds", report.AgeSeconds),
		zap.String("cross_price", cross),
	)

	report.Price = cross
	report.PriceSource = model.PriceSourceFallback
	report.Fallback = &model.FallbackPrice{
		FeedA:      p.cfg.FeedA.Hex(),
		FeedB:      p.cfg.FeedB.Hex(),
		RoundA:     bigString(a.RoundID),
		RoundB:     bigString(b.RoundID),
		AnswerA:    bigString(a.Answer),
		AnswerB:    bigString(b.Answer),
		UpdatedA:   bigString(a.UpdatedAt),
		UpdatedB:   bigString(b.UpdatedAt),
		CrossPrice: cross,
	}
	return nil
}

func (p *Pipeline) readV4(ctx context.Context, decimals0, decimals1 uint8) (*model.V4PoolState, error) {
	poolID, err := poolkey.DerivePoolID(*p.cfg.V4Key)
	if err != nil {
		return nil, fmt.Errorf("v4 pool id: %w", err)
	}

	var slot0 model.V4Slot0
	if err := p.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		var err error
		slot0, err = feed.ReadV4Slot0(ctx, p.chain, p.cfg.StateView, poolID)
		return err
	}); err != nil {
		return nil, fmt.Errorf("v4 slot0: %w", err)
	}

	spot, err := price.SqrtPriceToDecimal(slot0.SqrtPriceX96, decimals0, decimals1)
	if err != nil {
		return nil, fmt.Errorf("v4 spot price: %w", err)
	}
	return &model.V4PoolState{
		PoolID:       poolID.Hex(),
		SqrtPriceX96: slot0.SqrtPriceX96.String(),
		Tick:         slot0.Tick,
		LPFee:        slot0.LPFee,
		SpotPrice:    spot,
	}, nil
}

func (p *Pipeline) clock(ctx context.Context) (uint64, error) {
	if p.cfg.Clock != ClockBlock {
		return uint64(p.now().Unix()), nil
	}
	var head chain.Head
	if err := p.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		var err error
		head, err = p.chain.LatestHead(ctx)
		return err
	}); err != nil {
		return 0, fmt.Errorf("latest block: %w", err)
	}
	return head.Timestamp, nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}
