package client

import (
	"sync"
	"time"

	"muselib/model"
	"muselib/query"
)

// searchDebounceWait is the window applied to free-text search edits before
// they reach the URL.
const searchDebounceWait = 300 * time.Millisecond

// Navigator owns the live URL query string. ListState reads state from it and
// writes state back through it, so the URL stays the single source of truth
// for list state: shareable, bookmarkable and restorable on reload.
type Navigator interface {
	RawQuery() string
	Navigate(rawQuery string)
}

// MemoryNavigator is an in-process Navigator. OnNavigate, when set, fires
// after every navigation; fetchers use it to refetch on query changes.
type MemoryNavigator struct {
	mu         sync.Mutex
	rawQuery   string
	OnNavigate func(rawQuery string)
}

// NewMemoryNavigator creates a navigator seeded with an initial query string.
func NewMemoryNavigator(rawQuery string) *MemoryNavigator {
	return &MemoryNavigator{rawQuery: rawQuery}
}

func (n *MemoryNavigator) RawQuery() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rawQuery
}

func (n *MemoryNavigator) Navigate(rawQuery string) {
	n.mu.Lock()
	n.rawQuery = rawQuery
	callback := n.OnNavigate
	n.mu.Unlock()
	if callback != nil {
		callback(rawQuery)
	}
}

// ListState resolves the current list query from the navigator's URL and
// funnels every mutation through SetParam. There are no direct field setters.
type ListState struct {
	nav Navigator

	// Search edits are debounced so keystrokes do not become request storms.
	debouncedSearch func(args ...any)
	once            sync.Once
}

// NewListState creates list state bound to a navigator.
func NewListState(nav Navigator) *ListState {
	return &ListState{nav: nav}
}

// Params returns the current raw parameters, in URL order.
func (s *ListState) Params() query.Params {
	return query.ParseParams(s.nav.RawQuery())
}

// Query returns the current resolved query. It is re-derived from the URL on
// every call; there is no shadow copy to drift.
func (s *ListState) Query() model.ListQuery {
	return query.Decode(s.Params())
}

// SetParam sets one parameter and navigates to the updated URL. All other
// parameters are preserved, including their order.
func (s *ListState) SetParam(name, value string) {
	s.nav.Navigate(s.Params().Set(name, value).Encode())
}

// SetSearch routes a search edit through the debounce window. Only the last
// edit within the window reaches the URL.
func (s *ListState) SetSearch(value string) {
	s.once.Do(func() {
		s.debouncedSearch = query.Debounce(searchDebounceWait, func(args ...any) {
			s.SetParam("search", args[0].(string))
		})
	})
	s.debouncedSearch(value)
}
