// Package client is the Go SDK for the muselib API. It implements the query
// contract shared with the server: URL-owned list state, debounced search,
// query-keyed fetching and pagination metadata, with every failure surfaced
// as a typed error instead of a raw transport error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"muselib/apperr"
	"muselib/model"
	"muselib/query"
)

// Client talks to a muselib server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// New creates a client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken attaches a bearer token to subsequent mutating requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// errorEnvelope is the server's failure payload.
type errorEnvelope struct {
	Error *apperr.Error `json:"error"`
}

// do runs a request and decodes the response into out. Transport, decode and
// server-reported failures all come back as *apperr.Error: callers branch on
// the kind, never on message text.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) *apperr.Error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("failed to build request: %v", err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("failed to read response: %v", err))
	}

	if resp.StatusCode >= 400 {
		var envelope errorEnvelope
		if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
			return envelope.Error
		}
		return apperr.Internal(fmt.Sprintf("%s %s failed with status %d", method, path, resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Internal(fmt.Sprintf("failed to decode response: %v", err))
	}
	return nil
}

func jsonBody(v interface{}) (io.Reader, *apperr.Error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("failed to encode request: %v", err))
	}
	return bytes.NewReader(raw), nil
}

// validatePage rejects transport payloads that do not satisfy the pagination
// invariants, instead of trusting them as pre-typed.
func validatePage(page *model.PaginatedTracks) *apperr.Error {
	if page.Meta.Limit <= 0 || page.Meta.Page < 1 {
		return apperr.Internal("invalid pagination metadata in response")
	}
	if len(page.Data) > page.Meta.Limit {
		return apperr.Internal("response page exceeds its limit")
	}
	want := (page.Meta.Total + page.Meta.Limit - 1) / page.Meta.Limit
	if page.Meta.TotalPages != want {
		return apperr.Internal("inconsistent totalPages in response")
	}
	return nil
}

// GetTracks fetches one page of tracks for a resolved query. The caller is
// expected to have translated the genre sentinel already (Fetcher does this).
func (c *Client) GetTracks(ctx context.Context, q model.ListQuery) (*model.PaginatedTracks, *apperr.Error) {
	params := query.Params{}
	params = params.Set("page", fmt.Sprintf("%d", q.Page))
	params = params.Set("limit", fmt.Sprintf("%d", q.Limit))
	params = params.Set("sort", q.Sort)
	params = params.Set("order", q.Order)
	if q.Search != "" {
		params = params.Set("search", q.Search)
	}
	if q.Genre != "" {
		params = params.Set("genre", q.Genre)
	}
	if q.Artist != "" {
		params = params.Set("artist", q.Artist)
	}

	var page model.PaginatedTracks
	if err := c.do(ctx, http.MethodGet, "/api/tracks?"+params.Encode(), nil, "", &page); err != nil {
		return nil, err
	}
	if err := validatePage(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetTrack fetches a track by slug.
func (c *Client) GetTrack(ctx context.Context, slug string) (*model.Track, *apperr.Error) {
	var track model.Track
	if err := c.do(ctx, http.MethodGet, "/api/tracks/"+slug, nil, "", &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// CreateTrackInput is the create payload.
type CreateTrackInput struct {
	Title      string   `json:"title"`
	Artist     string   `json:"artist"`
	Album      string   `json:"album,omitempty"`
	Genres     []string `json:"genres"`
	CoverImage string   `json:"coverImage,omitempty"`
}

// CreateTrack creates a track.
func (c *Client) CreateTrack(ctx context.Context, input CreateTrackInput) (*model.Track, *apperr.Error) {
	body, appErr := jsonBody(input)
	if appErr != nil {
		return nil, appErr
	}
	var track model.Track
	if err := c.do(ctx, http.MethodPost, "/api/tracks", body, "application/json", &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// UpdateTrack applies a partial update to a track.
func (c *Client) UpdateTrack(ctx context.Context, id string, update model.TrackUpdate) (*model.Track, *apperr.Error) {
	body, appErr := jsonBody(update)
	if appErr != nil {
		return nil, appErr
	}
	var track model.Track
	if err := c.do(ctx, http.MethodPut, "/api/tracks/"+id, body, "application/json", &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// DeleteTrack deletes a track. A false success flag means it was already gone.
func (c *Client) DeleteTrack(ctx context.Context, id string) (bool, *apperr.Error) {
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/tracks/"+id, nil, "", &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// DeleteTracks deletes a batch of tracks, returning the success/failed
// partition of the input ids.
func (c *Client) DeleteTracks(ctx context.Context, ids []string) (*model.BatchDeleteResult, *apperr.Error) {
	body, appErr := jsonBody(map[string][]string{"ids": ids})
	if appErr != nil {
		return nil, appErr
	}
	var result model.BatchDeleteResult
	if err := c.do(ctx, http.MethodPost, "/api/tracks/delete", body, "application/json", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadTrackFile uploads audio content for a track and returns the updated
// track.
func (c *Client) UploadTrackFile(ctx context.Context, id, filename, contentType string, content io.Reader) (*model.Track, *apperr.Error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("failed to build upload: %v", err))
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("failed to read upload content: %v", err))
	}
	if err := writer.Close(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("failed to finish upload: %v", err))
	}

	var track model.Track
	if appErr := c.do(ctx, http.MethodPost, "/api/tracks/"+id+"/upload", &buf, writer.FormDataContentType(), &track); appErr != nil {
		return nil, appErr
	}
	return &track, nil
}

// DeleteTrackFile clears a track's audio file reference.
func (c *Client) DeleteTrackFile(ctx context.Context, id string) (bool, *apperr.Error) {
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/tracks/"+id+"/file", nil, "", &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// GetGenres fetches the genre catalog.
func (c *Client) GetGenres(ctx context.Context) ([]string, *apperr.Error) {
	var resp struct {
		Genres []string `json:"genres"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/genres", nil, "", &resp); err != nil {
		return nil, err
	}
	return resp.Genres, nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, username, password string) *apperr.Error {
	body, appErr := jsonBody(map[string]string{"username": username, "password": password})
	if appErr != nil {
		return appErr
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, "application/json", &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}
