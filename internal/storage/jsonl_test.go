package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commitGuard/internal/model"
)

func readLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var out []map[string]interface{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var row map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &row))
		out = append(out, row)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.jsonl")
	sink := NewJsonlStorage(path)
	ctx := context.Background()

	require.NoError(t, sink.PutPriceReports(ctx, []model.PriceReport{{Pool: "0xabc", Price: "1.5", PriceSource: model.PriceSourceTWAP}}))
	require.NoError(t, sink.PutCommits(ctx, []model.CommitRecord{{CommitHash: "0x01"}, {CommitHash: "0x02"}}))
	require.NoError(t, sink.PutCommits(ctx, nil))

	rows := readLines(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "1.5", rows[0]["price"])
	assert.Equal(t, "0x02", rows[2]["commit_hash"])
}

type failingSink struct{ err error }

func (f failingSink) PutPriceReports(context.Context, []model.PriceReport) error { return f.err }
func (f failingSink) PutCommits(context.Context, []model.CommitRecord) error     { return f.err }

func TestMultiJoinsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	boom := errors.New("boom")
	multi := Multi{failingSink{err: boom}, NewJsonlStorage(path)}

	err := multi.PutCommits(context.Background(), []model.CommitRecord{{CommitHash: "0x01"}})
	require.ErrorIs(t, err, boom)
	assert.Len(t, readLines(t, path), 1)
}
