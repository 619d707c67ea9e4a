package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"commitGuard/internal/model"
)

const defaultPrefix = "guard"

// Publisher publishes reports on <prefix>.price and commits on <prefix>.commit.
type Publisher struct {
	nc     *nats.Conn
	prefix string
	log    *zap.Logger
}

func Connect(url, prefix string, log *zap.Logger) (*Publisher, error) {
	if url == "" {
		return nil, errors.New("nats url is required")
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	if log == nil {
		log = zap.NewNop()
	}

	opts := []nats.Option{
		nats.Name("commit-guard"),
		nats.Timeout(5 * time.Second),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2 * time.Second),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("connected to nats", zap.String("url", url), zap.String("prefix", prefix))

	return &Publisher{nc: nc, prefix: prefix, log: log}, nil
}

func (p *Publisher) PriceSubject() string  { return p.prefix + ".price" }
func (p *Publisher) CommitSubject() string { return p.prefix + ".commit" }

func (p *Publisher) PutPriceReports(ctx context.Context, reports []model.PriceReport) error {
	for _, r := range reports {
		if err := p.publish(p.PriceSubject(), r); err != nil {
			return err
		}
	}
	return p.flush(ctx, len(reports))
}

func (p *Publisher) PutCommits(ctx context.Context, commits []model.CommitRecord) error {
	for _, c := range commits {
		if err := p.publish(p.CommitSubject(), c); err != nil {
			return err
		}
	}
	return p.flush(ctx, len(commits))
}

func (p *Publisher) publish(subject string, value interface{}) error {
	if p.nc == nil {
		return errors.New("nats connection is nil")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) flush(ctx context.Context, n int) error {
	if n == 0 {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush nats: %w", err)
	}
	return nil
}

func (p *Publisher) Ready() bool {
	if p.nc == nil {
		return false
	}
	return p.nc.Status() == nats.CONNECTED
}

// Close drains the connection. Calling it twice is safe.
func (p *Publisher) Close() error {
	if p.nc == nil || p.nc.Status() == nats.CLOSED {
		return nil
	}

	if err := p.nc.Drain(); err != nil {
		p.log.Error("failed to drain nats connection", zap.Error(err))
		p.nc.Close()
		return fmt.Errorf("failed to drain connection to NATS: %w", err)
	}

	p.nc.Close()
	p.log.Info("nats connection closed")
	return nil
}
