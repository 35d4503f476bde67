package client

import (
	"context"
	"strconv"
	"sync"

	"muselib/apperr"
	"muselib/model"
	"muselib/query"
)

// Fetcher loads the page of tracks matching the current list state. Fetching
// is keyed by the resolved query tuple: a response for a query that is no
// longer current is discarded, so the view only ever reflects the newest
// query (last-relevant-response-wins, not last-arrived-wins).
type Fetcher struct {
	client *Client
	state  *ListState
	genres *GenreCache

	mu         sync.Mutex
	currentKey string
	current    *model.PaginatedTracks
}

// NewFetcher creates a fetcher over a client, list state and genre cache.
func NewFetcher(client *Client, state *ListState, genres *GenreCache) *Fetcher {
	return &Fetcher{client: client, state: state, genres: genres}
}

// outboundQuery translates the resolved query for transmission: the sentinel
// genre "All", and any genre the catalog does not know, mean "no filter" and
// are never sent literally.
func (f *Fetcher) outboundQuery(ctx context.Context, q model.ListQuery) model.ListQuery {
	if q.Genre == model.GenreAll {
		q.Genre = ""
		return q
	}
	known, err := f.genres.Get(ctx)
	if err != nil {
		// Without a catalog the filter cannot be validated; drop it rather
		// than send a value the server may not recognize.
		q.Genre = ""
		return q
	}
	for _, g := range known {
		if g == q.Genre {
			return q
		}
	}
	q.Genre = ""
	return q
}

// Refresh fetches the page for the state's current query. On success the
// result is published only if that query is still current. On failure the
// previously published page is left untouched.
func (f *Fetcher) Refresh(ctx context.Context) (*model.PaginatedTracks, *apperr.Error) {
	q := f.state.Query()
	key := q.Key()

	page, err := f.client.GetTracks(ctx, f.outboundQuery(ctx, q))
	if err != nil {
		return nil, err
	}

	if f.state.Query().Key() == key {
		f.mu.Lock()
		f.currentKey = key
		f.current = page
		f.mu.Unlock()
	}
	return page, nil
}

// Current returns the last published page, or nil if nothing relevant has
// loaded yet.
func (f *Fetcher) Current() *model.PaginatedTracks {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.currentKey != f.state.Query().Key() {
		// Published for an older query; a refresh is pending or needed.
		return nil
	}
	return f.current
}

// Invalidate drops the published page and the genre catalog. Call after any
// mutation so the next render refetches.
func (f *Fetcher) Invalidate() {
	f.mu.Lock()
	f.current = nil
	f.currentKey = ""
	f.mu.Unlock()
	f.genres.Clear()
}

// PageInfo derives pagination display values from the published page.
// Returns false if no page is published for the current query.
func (f *Fetcher) PageInfo() (query.PageInfo, bool) {
	page := f.Current()
	if page == nil {
		return query.PageInfo{}, false
	}
	return query.Pages(page.Meta.Total, page.Meta.Page, page.Meta.Limit), true
}

// NextPage advances one page if the published metadata allows it. Advancing
// past the last page is a no-op.
func (f *Fetcher) NextPage() {
	info, ok := f.PageInfo()
	if !ok || !info.CanNext {
		return
	}
	f.state.SetParam("page", strconv.Itoa(f.state.Query().Page+1))
}

// PrevPage goes back one page if possible. Going below page 1 is a no-op.
func (f *Fetcher) PrevPage() {
	info, ok := f.PageInfo()
	if !ok || !info.CanPrev {
		return
	}
	f.state.SetParam("page", strconv.Itoa(f.state.Query().Page-1))
}
