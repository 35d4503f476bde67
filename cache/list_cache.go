package cache

import (
	"context"
	"encoding/json"
	"time"

	"muselib/logger"
	"muselib/model"

	"github.com/redis/go-redis/v9"
)

const genresKey = "genres"

// ListCache stores paginated list responses keyed by the resolved query tuple,
// plus the genre catalog. Redis being down degrades to cache misses: callers
// always fall through to the database. Every catalog mutation must call
// InvalidateTracks so the next list reflects the change; there is no
// patch-in-place of cached pages.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListCache creates a ListCache. A nil client disables caching.
func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{client: client, ttl: ttl}
}

// GetPage returns the cached page for the query, or nil on a miss.
func (c *ListCache) GetPage(ctx context.Context, q model.ListQuery) *model.PaginatedTracks {
	if c.client == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, q.Key()).Bytes()
	if err != nil {
		return nil
	}
	var page model.PaginatedTracks
	if err := json.Unmarshal(raw, &page); err != nil {
		logger.Warn("discarding undecodable cached page", logger.String("key", q.Key()), logger.ErrorField(err))
		return nil
	}
	return &page
}

// SetPage stores a page under the query's key.
func (c *ListCache) SetPage(ctx context.Context, q model.ListQuery, page *model.PaginatedTracks) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, q.Key(), raw, c.ttl).Err(); err != nil {
		logger.Warn("failed to cache list page", logger.String("key", q.Key()), logger.ErrorField(err))
	}
}

// InvalidateTracks drops every cached list page and the genre catalog.
func (c *ListCache) InvalidateTracks(ctx context.Context) {
	if c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, "tracks:*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warn("failed to scan cached list pages", logger.ErrorField(err))
		return
	}
	keys = append(keys, genresKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("failed to invalidate cached list pages", logger.ErrorField(err))
	}
}

// GetGenres returns the cached genre catalog, or nil on a miss.
func (c *ListCache) GetGenres(ctx context.Context) []string {
	if c.client == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, genresKey).Bytes()
	if err != nil {
		return nil
	}
	var genres []string
	if err := json.Unmarshal(raw, &genres); err != nil {
		return nil
	}
	return genres
}

// SetGenres stores the genre catalog.
func (c *ListCache) SetGenres(ctx context.Context, genres []string) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(genres)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, genresKey, raw, c.ttl).Err(); err != nil {
		logger.Warn("failed to cache genres", logger.ErrorField(err))
	}
}
