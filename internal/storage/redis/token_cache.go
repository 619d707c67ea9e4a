package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	goredis "github.com/redis/go-redis/v9"

	"commitGuard/internal/model"
)

const defaultPrefix = "guard:token:"

type Client struct {
	*goredis.Client
}

func New(ctx context.Context, addr string) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Client{rdb}, nil
}

// TokenCache stores ERC20 metadata shared between guard processes.
// Token decimals are immutable, so a zero TTL keeps entries forever.
type TokenCache struct {
	rdb    *Client
	prefix string
	ttl    time.Duration
}

func NewTokenCache(rdb *Client, prefix string, ttl time.Duration) (*TokenCache, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client is required for the token cache")
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &TokenCache{rdb: rdb, prefix: prefix, ttl: ttl}, nil
}

func (c *TokenCache) key(address common.Address) string {
	return c.prefix + strings.ToLower(address.Hex())
}

func (c *TokenCache) GetTokenMeta(ctx context.Context, address common.Address) (model.TokenMeta, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(address)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return model.TokenMeta{}, false, nil
	}
	if err != nil {
		return model.TokenMeta{}, false, fmt.Errorf("redis get: %w", err)
	}

	var meta model.TokenMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return model.TokenMeta{}, false, fmt.Errorf("decode token meta: %w", err)
	}
	return meta, true, nil
}

func (c *TokenCache) SetTokenMeta(ctx context.Context, meta model.TokenMeta) error {
	if !common.IsHexAddress(meta.Address) {
		return fmt.Errorf("invalid token address %q", meta.Address)
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode token meta: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key(common.HexToAddress(meta.Address)), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
