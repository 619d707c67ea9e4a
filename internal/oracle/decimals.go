package oracle

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"commitGuard/internal/feed"
	"commitGuard/internal/model"
)

// decimals returns the configured decimals, resolving missing ones from the
// pool's tokens. The price formulas label the quote side decimals0, so
// decimals0 comes from token1 and decimals1 from token0. Resolved values are
// kept for later evaluations.
func (p *Pipeline) decimals(ctx context.Context) (uint8, uint8, error) {
	if p.cfg.Decimals0 != nil && p.cfg.Decimals1 != nil {
		return *p.cfg.Decimals0, *p.cfg.Decimals1, nil
	}

	token0, token1 := p.cfg.Token0, p.cfg.Token1
	if token0 == (common.Address{}) || token1 == (common.Address{}) {
		var meta model.PoolMeta
		if err := p.cfg.Retry.Do(ctx, func(ctx context.Context) error {
			var err error
			meta, err = feed.FetchPoolMeta(ctx, p.chain, p.cfg.Pool)
			return err
		}); err != nil {
			return 0, 0, fmt.Errorf("pool metadata: %w", err)
		}
		token0 = common.HexToAddress(meta.Token0)
		token1 = common.HexToAddress(meta.Token1)
		p.cfg.Token0, p.cfg.Token1 = token0, token1
	}

	if p.cfg.Decimals0 == nil {
		d, err := p.resolveDecimals(ctx, token1)
		if err != nil {
			return 0, 0, err
		}
		p.cfg.Decimals0 = &d
	}
	if p.cfg.Decimals1 == nil {
		d, err := p.resolveDecimals(ctx, token0)
		if err != nil {
			return 0, 0, err
		}
		p.cfg.Decimals1 = &d
	}
	return *p.cfg.Decimals0, *p.cfg.Decimals1, nil
}

func (p *Pipeline) resolveDecimals(ctx context.Context, token common.Address) (uint8, error) {
	var meta model.TokenMeta
	if err := p.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		var err error
		meta, err = p.tokens.Resolve(ctx, token)
		return err
	}); err != nil {
		return 0, fmt.Errorf("token %s decimals: %w", token.Hex(), err)
	}
	return meta.Decimals, nil
}
