package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"shopco-api/internal/dto"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProductCache holds rendered product detail views keyed by product id.
type ProductCache interface {
	Get(ctx context.Context, productID uint) (*dto.ProductResponse, bool, error)
	Set(ctx context.Context, product *dto.ProductResponse) error
	Invalidate(ctx context.Context, productID uint) error
}

type redisProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisProductCache(rdb *redis.Client, ttl time.Duration) ProductCache {
	return &redisProductCache{rdb: rdb, ttl: ttl}
}

func productKey(productID uint) string {
	return fmt.Sprintf("product:%d", productID)
}

func (c *redisProductCache) Get(ctx context.Context, productID uint) (*dto.ProductResponse, bool, error) {
	raw, err := c.rdb.Get(ctx, productKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get product: %w", err)
	}

	var product dto.ProductResponse
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, false, fmt.Errorf("decode cached product: %w", err)
	}
	return &product, true, nil
}

func (c *redisProductCache) Set(ctx context.Context, product *dto.ProductResponse) error {
	raw, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	return c.rdb.Set(ctx, productKey(product.ID), raw, c.ttl).Err()
}

func (c *redisProductCache) Invalidate(ctx context.Context, productID uint) error {
	return c.rdb.Del(ctx, productKey(productID)).Err()
}
