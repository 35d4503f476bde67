package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"muselib/apperr"
	"muselib/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogServer serves a fixed catalog with server-side paging, search and
// genre filtering, enough to exercise the client contract.
type catalogServer struct {
	tracks      []model.Track
	genres      []string
	genreHits   int
	lastGenre   *string // genre param of the last list request, nil when absent
	listStarted chan struct{}
	listGate    chan struct{}
}

func newCatalogServer(n int) *catalogServer {
	s := &catalogServer{genres: []string{"Jazz", "Rock"}}
	for i := 0; i < n; i++ {
		s.tracks = append(s.tracks, model.Track{
			ID:     fmt.Sprintf("id-%02d", i),
			Title:  fmt.Sprintf("Track %02d", i),
			Artist: "Artist",
			Genres: []string{s.genres[i%2]},
			Slug:   fmt.Sprintf("track-%02d", i),
		})
	}
	return s
}

func (s *catalogServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/genres", func(w http.ResponseWriter, r *http.Request) {
		s.genreHits++
		json.NewEncoder(w).Encode(map[string][]string{"genres": s.genres})
	})
	mux.HandleFunc("/api/tracks", func(w http.ResponseWriter, r *http.Request) {
		if s.listStarted != nil {
			s.listStarted <- struct{}{}
		}
		if s.listGate != nil {
			<-s.listGate
		}

		params := r.URL.Query()
		if params.Has("genre") {
			g := params.Get("genre")
			s.lastGenre = &g
		} else {
			s.lastGenre = nil
		}

		page, _ := strconv.Atoi(params.Get("page"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(params.Get("limit"))
		if limit < 1 {
			limit = 10
		}

		var matched []model.Track
		for _, track := range s.tracks {
			if search := params.Get("search"); search != "" && !containsFold(track.Title, search) {
				continue
			}
			if genre := params.Get("genre"); genre != "" && (len(track.Genres) == 0 || track.Genres[0] != genre) {
				continue
			}
			matched = append(matched, track)
		}

		total := len(matched)
		start := (page - 1) * limit
		if start > total {
			start = total
		}
		end := start + limit
		if end > total {
			end = total
		}

		data := matched[start:end]
		if data == nil {
			data = []model.Track{}
		}
		json.NewEncoder(w).Encode(model.PaginatedTracks{
			Data: data,
			Meta: model.PaginationMeta{
				Total:      total,
				Page:       page,
				Limit:      limit,
				TotalPages: (total + limit - 1) / limit,
			},
		})
	})
	return mux
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func TestGetTracksPaging(t *testing.T) {
	srv := httptest.NewServer(newCatalogServer(20).handler())
	defer srv.Close()
	c := New(srv.URL)

	q := model.DefaultListQuery()
	q.Limit = 5
	q.Genre = ""

	page, err := c.GetTracks(context.Background(), q)
	require.Nil(t, err)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, 20, page.Meta.Total)
	assert.Equal(t, 4, page.Meta.TotalPages)

	q.Page = 4
	page, err = c.GetTracks(context.Background(), q)
	require.Nil(t, err)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, "id-15", page.Data[0].ID)
}

func TestGetTracksEmptyResult(t *testing.T) {
	srv := httptest.NewServer(newCatalogServer(20).handler())
	defer srv.Close()
	c := New(srv.URL)

	q := model.DefaultListQuery()
	q.Search = "no such track"
	q.Genre = ""

	page, err := c.GetTracks(context.Background(), q)
	require.Nil(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 0, page.Meta.Total)
}

func TestErrorsCarryKind(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]*apperr.Error{
			"error": {Kind: apperr.KindNotFound, Message: "Track not found"},
		})
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()
	c := New(srv.URL)

	_, err := c.GetTrack(context.Background(), "missing")
	require.NotNil(t, err)
	assert.Equal(t, apperr.KindNotFound, err.Kind)
	assert.Equal(t, "Track not found", err.Message)
}

func TestNetworkFailureIsTyped(t *testing.T) {
	c := New("http://127.0.0.1:1") // nothing listens here

	_, err := c.GetTracks(context.Background(), model.DefaultListQuery())
	require.NotNil(t, err)
	assert.Equal(t, apperr.KindInternal, err.Kind)
}

// Transport payloads are not trusted as pre-typed: a response violating the
// pagination invariants is rejected as a typed failure.
func TestGetTracksRejectsInconsistentMeta(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.PaginatedTracks{
			Data: []model.Track{},
			Meta: model.PaginationMeta{Total: 20, Page: 1, Limit: 10, TotalPages: 7},
		})
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()
	c := New(srv.URL)

	_, err := c.GetTracks(context.Background(), model.DefaultListQuery())
	require.NotNil(t, err)
	assert.Equal(t, apperr.KindInternal, err.Kind)
}
