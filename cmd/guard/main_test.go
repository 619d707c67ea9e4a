package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commitGuard/internal/model"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCommitCommandGolden(t *testing.T) {
	out, err := execute(t, "commit",
		"--sender", "0x29E3b139f4393aDda86303fcdAa35F60Bb7092bF",
		"--amount-in", "1ether",
		"--min-amount-out", "500000000000000000",
		"--token-in", "0x7b79995e5f793A07Bc00c21412e50Ecae098E7f9",
		"--token-out", "0x16EFdA168bDe70E05CA6D349A690749d622F95e0",
		"--nonce", "67",
		"--log-level", "error",
	)
	require.NoError(t, err)
	assert.Equal(t, "0xe106abeec5a63667df7c35f3128bdb531796a30f718426a641e6d95c22e6a9e1", strings.TrimSpace(out))
}

func TestCommitCommandBatch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "intents.jsonl")
	out := filepath.Join(dir, "commits.jsonl")
	errPath := filepath.Join(dir, "errors.jsonl")

	lines := []string{
		`{"sender":"0x29E3b139f4393aDda86303fcdAa35F60Bb7092bF","amount_in":"1000000000000000000","min_amount_out":"500000000000000000","token_in":"0x7b79995e5f793A07Bc00c21412e50Ecae098E7f9","token_out":"0x16EFdA168bDe70E05CA6D349A690749d622F95e0","nonce":"67"}`,
		``,
		`{"sender":"0x1234","amount_in":"1","min_amount_out":"1","token_in":"0x7b79995e5f793A07Bc00c21412e50Ecae098E7f9","token_out":"0x16EFdA168bDe70E05CA6D349A690749d622F95e0","nonce":"1"}`,
		`not json`,
	}
	require.NoError(t, os.WriteFile(in, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	_, err := execute(t, "commit", "--in", in, "--out", out, "--errors", errPath, "--log-level", "error")
	require.NoError(t, err)

	var records []model.CommitRecord
	readJSONL(t, out, func(line []byte) {
		var r model.CommitRecord
		require.NoError(t, json.Unmarshal(line, &r))
		records = append(records, r)
	})
	require.Len(t, records, 1)
	assert.Equal(t, "0xe106abeec5a63667df7c35f3128bdb531796a30f718426a641e6d95c22e6a9e1", records[0].CommitHash)
	assert.Equal(t, "67", records[0].Nonce)

	var failures []model.CommitError
	readJSONL(t, errPath, func(line []byte) {
		var e model.CommitError
		require.NoError(t, json.Unmarshal(line, &e))
		failures = append(failures, e)
	})
	require.Len(t, failures, 2)
	assert.Equal(t, 3, failures[0].Line)
	assert.Equal(t, 4, failures[1].Line)
}

func TestCommitCommandRejectsBadIntent(t *testing.T) {
	_, err := execute(t, "commit", "--sender", "nope", "--log-level", "error")
	assert.Error(t, err)
}

func TestPoolIDCommand(t *testing.T) {
	args := []string{"poolid",
		"--v4-currency0", "0xC02aaA39b223FE8d0A0e5C4f27eAD9083C756Cc2",
		"--v4-currency1", "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599",
		"--v4-fee", "3000",
		"--v4-tick-spacing", "60",
	}

	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.Equal(t, "0x1ae20fa00c99b08f4cec22672b6437705ee0d72dd93a85cf3df40a6a8e51efee", strings.TrimSpace(out))

	out, err = execute(t, append(args, "--sort")...)
	require.NoError(t, err)
	assert.Equal(t, "0x0df29494f2ef2d3249f8b99e2a12d35970076a50d0c5b15a481d38fac1c3d940", strings.TrimSpace(out))
}

func TestSpotCommand(t *testing.T) {
	out, err := execute(t, "spot", "--sqrt-price-x96", "0x1000000000000000000000000")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "1.000000000000000000", got["spot_price"])
	assert.Equal(t, "1.000000000000000000", got["spot_price_inverted"])

	// the spot rounds to zero at 8 digits; the inverse comes from the exact price
	out, err = execute(t, "spot", "--sqrt-price-x96", "0x1000000000000000000000000", "--decimals0", "18", "--decimals1", "8")
	require.NoError(t, err)

	got = nil
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "0.00000000", got["spot_price"])
	assert.Equal(t, "10000000000.000000000000000000", got["spot_price_inverted"])
}

func TestTwapCommand(t *testing.T) {
	out, err := execute(t, "twap", "--start", "0", "--end", "0", "--elapsed", "1800")
	require.NoError(t, err)
	assert.Contains(t, out, `"twap_price":"10000000000.000000000000000000"`)

	_, err = execute(t, "twap", "--start", "0", "--end", "10", "--elapsed", "0")
	assert.Error(t, err)
}

func TestPriceCommandRequiresRPC(t *testing.T) {
	_, err := execute(t, "price", "--pool", "0xCBCdF9626bC03E24f779434178A73a0B4bad62eD", "--log-level", "error")
	assert.Error(t, err)
}

func readJSONL(t *testing.T, path string, fn func([]byte)) {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fn(scanner.Bytes())
	}
	require.NoError(t, scanner.Err())
}
