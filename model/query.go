package model

import "fmt"

// Sort fields accepted by the list endpoint. Anything else falls back to
// SortCreatedAt during decoding.
const (
	SortTitle     = "title"
	SortArtist    = "artist"
	SortAlbum     = "album"
	SortCreatedAt = "createdAt"
)

// Sort orders accepted by the list endpoint.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// GenreAll is the client-side sentinel meaning "no genre filter". It is never
// sent to the server as a literal filter value.
const GenreAll = "All"

// ListQuery is the fully-resolved description of one listing request. Every
// field always holds a valid value; decoding raw parameters never fails.
type ListQuery struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Search string
	Genre  string
	Artist string
}

// DefaultListQuery returns a ListQuery with every field at its default.
func DefaultListQuery() ListQuery {
	return ListQuery{
		Page:   1,
		Limit:  10,
		Sort:   SortCreatedAt,
		Order:  OrderDesc,
		Search: "",
		Genre:  GenreAll,
	}
}

// Key returns a stable identity for the query tuple. Two queries with the same
// key describe the same page of results; fetchers and caches key on it.
func (q ListQuery) Key() string {
	return fmt.Sprintf("tracks:%s:%s:%d:%d:%s:%s:%s",
		q.Sort, q.Order, q.Page, q.Limit, q.Search, q.Genre, q.Artist)
}

// PaginationMeta describes the page math attached to a list response.
type PaginationMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// PaginatedTracks is one page of tracks plus its metadata.
type PaginatedTracks struct {
	Data []Track        `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// BatchDeleteResult partitions a batch delete input into the ids that were
// removed and the ones that were not found. A non-empty Failed list is a
// normal result, not an error.
type BatchDeleteResult struct {
	Success []string `json:"success"`
	Failed  []string `json:"failed"`
}
