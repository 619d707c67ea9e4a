package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"commitGuard/internal/commit"
	"commitGuard/internal/config"
	"commitGuard/internal/model"
	"commitGuard/internal/storage"
)

const commitBatchSize = 500

func runCommit(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadCommit(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks, closeSinks, err := openSinks(ctx, cfg.Sinks, logger)
	if err != nil {
		return err
	}
	defer closeSinks()

	if cfg.In == "" {
		record, err := buildCommitRecord(cfg.Intent)
		if err != nil {
			return err
		}
		if err := sinks.PutCommits(ctx, []model.CommitRecord{record}); err != nil {
			return fmt.Errorf("write commit: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), record.CommitHash)
		return nil
	}

	return runCommitBatch(ctx, cfg, sinks, logger)
}

func runCommitBatch(ctx context.Context, cfg config.CommitConfig, sinks storage.Sink, logger *zap.Logger) error {
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	errWriter, err := newJSONLWriter(cfg.Errors, false)
	if err != nil {
		return err
	}
	defer errWriter.Close()

	logger.Info("commit batch start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Sinks.Out),
		zap.String("errors", cfg.Errors),
	)

	scanner := bufio.NewScanner(inputFile)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	batch := make([]model.CommitRecord, 0, commitBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sinks.PutCommits(ctx, batch); err != nil {
			return fmt.Errorf("write commits: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	var lineNo, total, committed, failed int
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var input commit.IntentInput
		if err := json.Unmarshal(line, &input); err != nil {
			failed++
			writeCommitError(errWriter, lineNo, line, err)
			continue
		}

		record, err := buildCommitRecord(input)
		if err != nil {
			failed++
			writeCommitError(errWriter, lineNo, line, err)
			continue
		}

		batch = append(batch, record)
		committed++
		if len(batch) >= commitBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	logger.Info("commit batch complete",
		zap.Int("total", total),
		zap.Int("committed", committed),
		zap.Int("failed", failed),
	)
	return nil
}

func buildCommitRecord(input commit.IntentInput) (model.CommitRecord, error) {
	intent, err := commit.ParseIntent(input)
	if err != nil {
		return model.CommitRecord{}, err
	}
	hash, err := commit.ComputeCommitHash(intent)
	if err != nil {
		return model.CommitRecord{}, err
	}

	return model.CommitRecord{
		CommitHash:   hash.Hex(),
		Sender:       intent.Sender.Hex(),
		AmountIn:     intent.AmountIn.String(),
		MinAmountOut: intent.MinAmountOut.String(),
		TokenIn:      intent.TokenIn.Hex(),
		TokenOut:     intent.TokenOut.Hex(),
		Nonce:        intent.Nonce.String(),
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func writeCommitError(writer *jsonlWriter, lineNo int, line []byte, err error) {
	if writer == nil {
		return
	}
	_ = writer.Write(model.CommitError{
		Line:  lineNo,
		Input: string(line),
		Error: err.Error(),
	})
}
