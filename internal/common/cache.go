package common

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache stores JSON encoded values under string keys.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
	Flush(ctx context.Context) error
}

// MemoryCache is a process local Cache.
type MemoryCache struct {
	*cache.Cache
}

func NewCache(expirationTime, cleanupTime time.Duration) *MemoryCache {
	return &MemoryCache{cache.New(expirationTime, cleanupTime)}
}

func (c *MemoryCache) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.Cache.Set(key, b, cache.DefaultExpiration)
	return nil
}

func (c *MemoryCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.Cache.Get(key)
	if !ok {
		return false, nil
	}

	b, ok := v.([]byte)
	if !ok {
		c.Cache.Delete(key)
		return false, nil
	}

	if err := json.Unmarshal(b, dst); err != nil {
		return false, err
	}

	return true, nil
}

func (c *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		c.Cache.Delete(k)
	}
	return nil
}

func (c *MemoryCache) Flush(ctx context.Context) error {
	c.Cache.Flush()
	return nil
}

func CacheKeyPost(id int) string {
	return "post:" + strconv.Itoa(id)
}

func CacheKeyUserByAccessToken(token []byte) string {
	return "user_by_access_token:" + string(token)
}
