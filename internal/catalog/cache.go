package catalog

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	homeCacheKey = "catalog:home"
	homeCacheTTL = 5 * time.Minute
)

// HomeCache keeps the rendered home payload in redis so the landing page does
// not hit Postgres on every request. Cache misses and redis failures fall
// through to the database.
type HomeCache struct {
	rdb *redis.Client
}

func NewHomeCache(rdb *redis.Client) *HomeCache { return &HomeCache{rdb: rdb} }

func (c *HomeCache) Get(ctx context.Context) (*HomePage, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, homeCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var page HomePage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, false
	}
	return &page, true
}

func (c *HomeCache) Set(ctx context.Context, page *HomePage) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, homeCacheKey, raw, homeCacheTTL).Err(); err != nil {
		log.Printf("[catalog] home cache set: %v", err)
	}
}

// Invalidate drops the cached home page after any catalog write.
func (c *HomeCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, homeCacheKey).Err(); err != nil {
		log.Printf("[catalog] home cache invalidate: %v", err)
	}
}
