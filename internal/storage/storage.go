package storage

import (
	"context"
	"errors"

	"commitGuard/internal/model"
)

// Sink receives price reports and commit records. Sinks are write-only.
type Sink interface {
	PutPriceReports(ctx context.Context, reports []model.PriceReport) error
	PutCommits(ctx context.Context, commits []model.CommitRecord) error
}

// Multi fans writes out to every sink and joins their errors.
type Multi []Sink

func (m Multi) PutPriceReports(ctx context.Context, reports []model.PriceReport) error {
	var errs []error
	for _, sink := range m {
		if err := sink.PutPriceReports(ctx, reports); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) PutCommits(ctx context.Context, commits []model.CommitRecord) error {
	var errs []error
	for _, sink := range m {
		if err := sink.PutCommits(ctx, commits); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
