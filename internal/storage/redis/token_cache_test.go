package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commitGuard/internal/model"
)

var wbtc = common.HexToAddress("0x2260fac5e5542a773aa44fbcfedf7c193bc2c599")

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := &Client{
		Client: goredis.NewClient(&goredis.Options{
			Addr: mr.Addr(),
		}),
	}
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestNewTokenCacheRequiresClient(t *testing.T) {
	cache, err := NewTokenCache(nil, "", 0)
	assert.Error(t, err)
	assert.Nil(t, cache)
}

func TestTokenCacheMiss(t *testing.T) {
	_, client := setupTestRedis(t)
	cache, err := NewTokenCache(client, "", 0)
	require.NoError(t, err)

	_, ok, err := cache.GetTokenMeta(context.Background(), wbtc)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenCacheSetGet(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache, err := NewTokenCache(client, "test:token:", 0)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, cache.SetTokenMeta(ctx, model.TokenMeta{Address: wbtc.Hex(), Decimals: 8, Symbol: "WBTC"}))
	assert.True(t, mr.Exists("test:token:0x2260fac5e5542a773aa44fbcfedf7c193bc2c599"))

	meta, ok, err := cache.GetTokenMeta(ctx, wbtc)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint8(8), meta.Decimals)
	assert.Equal(t, "WBTC", meta.Symbol)
}

func TestTokenCacheTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache, err := NewTokenCache(client, "", time.Minute)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, cache.SetTokenMeta(ctx, model.TokenMeta{Address: wbtc.Hex(), Decimals: 8}))

	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.GetTokenMeta(ctx, wbtc)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenCacheRejectsBadAddress(t *testing.T) {
	_, client := setupTestRedis(t)
	cache, err := NewTokenCache(client, "", 0)
	require.NoError(t, err)

	assert.Error(t, cache.SetTokenMeta(context.Background(), model.TokenMeta{Address: "nope"}))
}

func TestTokenCacheCorruptEntry(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache, err := NewTokenCache(client, "", 0)
	require.NoError(t, err)

	require.NoError(t, mr.Set(defaultPrefix+"0x2260fac5e5542a773aa44fbcfedf7c193bc2c599", "{not json"))

	_, _, err = cache.GetTokenMeta(context.Background(), wbtc)
	assert.Error(t, err)
}
