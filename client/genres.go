package client

import (
	"context"
	"sync"

	"muselib/apperr"
)

// GenreCache fetches the genre catalog once per session and serves it from
// memory afterwards. Invalidation is explicit only, via Clear.
type GenreCache struct {
	client *Client

	mu     sync.Mutex
	loaded bool
	genres []string
}

// NewGenreCache creates a genre cache over the given client.
func NewGenreCache(client *Client) *GenreCache {
	return &GenreCache{client: client}
}

// Get returns the cached catalog, fetching it on first use. A failed fetch is
// not cached: the next call retries.
func (g *GenreCache) Get(ctx context.Context) ([]string, *apperr.Error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.loaded {
		return g.genres, nil
	}

	genres, err := g.client.GetGenres(ctx)
	if err != nil {
		return nil, err
	}
	g.genres = genres
	g.loaded = true
	return g.genres, nil
}

// Clear drops the cached catalog so the next Get refetches.
func (g *GenreCache) Clear() {
	g.mu.Lock()
	g.loaded = false
	g.genres = nil
	g.mu.Unlock()
}
