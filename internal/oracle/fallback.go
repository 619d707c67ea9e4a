package oracle

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"commitGuard/internal/feed"
	"commitGuard/internal/model"
)

// FeedUnavailableError reports a fallback feed that could not be read.
type FeedUnavailableError struct {
	Feed common.Address
	Err  error
}

func (e *FeedUnavailableError) Error() string {
	return fmt.Sprintf("feed %s unavailable: %v", e.Feed.Hex(), e.Err)
}

func (e *FeedUnavailableError) Unwrap() error {
	return e.Err
}

// FetchFallbackQuotes reads latestRoundData from both feeds concurrently.
// Either failure fails the pair and cancels the other read.
func FetchFallbackQuotes(ctx context.Context, caller feed.Caller, feedA, feedB common.Address, retry RetryPolicy) (model.FallbackQuote, model.FallbackQuote, error) {
	var a, b model.FallbackQuote

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		quote, err := readQuote(gctx, caller, feedA, retry)
		a = quote
		return err
	})
	g.Go(func() error {
		quote, err := readQuote(gctx, caller, feedB, retry)
		b = quote
		return err
	})
	if err := g.Wait(); err != nil {
		return model.FallbackQuote{}, model.FallbackQuote{}, err
	}
	return a, b, nil
}

func readQuote(ctx context.Context, caller feed.Caller, address common.Address, retry RetryPolicy) (model.FallbackQuote, error) {
	var quote model.FallbackQuote
	err := retry.Do(ctx, func(ctx context.Context) error {
		var err error
		quote, err = feed.ReadLatestRound(ctx, caller, address)
		return err
	})
	if err != nil {
		return model.FallbackQuote{}, &FeedUnavailableError{Feed: address, Err: err}
	}
	return quote, nil
}
