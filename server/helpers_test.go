package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"muselib/config"
	"muselib/core/auth"
	"muselib/model"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// fakeTrackRepo is an in-memory TrackRepository with the same list semantics
// as the GORM implementation.
type fakeTrackRepo struct {
	mu     sync.Mutex
	tracks map[string]*model.Track
	clock  time.Time
}

func newFakeTrackRepo() *fakeTrackRepo {
	return &fakeTrackRepo{
		tracks: make(map[string]*model.Track),
		clock:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakeTrackRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Minute)
	return r.clock
}

func (r *fakeTrackRepo) List(ctx context.Context, q model.ListQuery) ([]model.Track, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []model.Track
	for _, track := range r.tracks {
		if q.Search != "" {
			s := strings.ToLower(q.Search)
			if !strings.Contains(strings.ToLower(track.Title), s) &&
				!strings.Contains(strings.ToLower(track.Artist), s) &&
				!strings.Contains(strings.ToLower(track.Album), s) {
				continue
			}
		}
		if q.Genre != "" && q.Genre != model.GenreAll {
			found := false
			for _, g := range track.Genres {
				if g == q.Genre {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if q.Artist != "" && track.Artist != q.Artist {
			continue
		}
		matched = append(matched, *track)
	}

	sort.Slice(matched, func(i, j int) bool {
		var less bool
		switch q.Sort {
		case model.SortTitle:
			less = matched[i].Title < matched[j].Title
		case model.SortArtist:
			less = matched[i].Artist < matched[j].Artist
		case model.SortAlbum:
			less = matched[i].Album < matched[j].Album
		default:
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		if q.Order == model.OrderDesc {
			return !less
		}
		return less
	})

	total := int64(len(matched))
	start := (q.Page - 1) * q.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeTrackRepo) GetByID(ctx context.Context, id string) (*model.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if track, ok := r.tracks[id]; ok {
		copied := *track
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeTrackRepo) GetBySlug(ctx context.Context, slug string) (*model.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, track := range r.tracks {
		if track.Slug == slug {
			copied := *track
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeTrackRepo) Create(ctx context.Context, track *model.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	track.CreatedAt = r.tick()
	track.UpdatedAt = track.CreatedAt
	copied := *track
	r.tracks[track.ID] = &copied
	return nil
}

func (r *fakeTrackRepo) Update(ctx context.Context, track *model.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	track.UpdatedAt = r.tick()
	copied := *track
	r.tracks[track.ID] = &copied
	return nil
}

func (r *fakeTrackRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tracks[id]; !ok {
		return false, nil
	}
	delete(r.tracks, id)
	return true, nil
}

func (r *fakeTrackRepo) ListGenres(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	var genres []string
	for _, track := range r.tracks {
		for _, g := range track.Genres {
			if _, ok := seen[g]; !ok {
				seen[g] = struct{}{}
				genres = append(genres, g)
			}
		}
	}
	sort.Strings(genres)
	return genres, nil
}

// fakeObjectStore keeps uploaded objects in memory.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.objects[objectName] = raw
	s.mu.Unlock()
	return nil
}

func (s *fakeObjectStore) Remove(ctx context.Context, objectName string) error {
	s.mu.Lock()
	delete(s.objects, objectName)
	s.mu.Unlock()
	return nil
}

func (s *fakeObjectStore) has(objectName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[objectName]
	return ok
}

// testEnv is a running API server over fakes, with a valid admin token.
type testEnv struct {
	server *httptest.Server
	repo   *fakeTrackRepo
	store  *fakeObjectStore
	token  string
}

func newTestEnv(t *testing.T) *testEnv {
	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		AdminUser:         "admin",
		AdminPasswordHash: hash,
		MinioBucket:       "test",
	}

	repo := newFakeTrackRepo()
	store := newFakeObjectStore()
	hub := NewHub()
	go hub.Run()

	handler := NewAPIHandler(repo, store, nil, hub, cfg)
	router := mux.NewRouter()
	registerRoutes(router, handler, hub)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	env := &testEnv{server: srv, repo: repo, store: store}
	env.token = env.login(t, "admin", "secret")
	return env
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	resp := e.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, false)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Token
}

// request issues a JSON request, optionally authenticated.
func (e *testEnv) request(t *testing.T, method, path string, body interface{}, authed bool) *http.Response {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// upload posts multipart audio content for a track.
func (e *testEnv) upload(t *testing.T, trackID, filename, contentType string, content []byte) *http.Response {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/api/tracks/"+trackID+"/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// createTrack creates a track via the API and returns it.
func (e *testEnv) createTrack(t *testing.T, title, artist string, genres []string) model.Track {
	resp := e.request(t, http.MethodPost, "/api/tracks", CreateTrackRequest{
		Title:  title,
		Artist: artist,
		Genres: genres,
	}, true)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var track model.Track
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&track))
	return track
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorKind(t *testing.T, resp *http.Response) string {
	body := decodeJSON[map[string]map[string]string](t, resp)
	return body["error"]["kind"]
}
