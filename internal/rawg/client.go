package rawg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mkh1n/play-pulse/internal/models"
)

// Client is the RAWG catalog API client.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new RAWG API client.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// UpstreamError carries the status the catalog API answered with. It is
// propagated to the caller unchanged; no retry is attempted.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("RAWG API returned status %d: %s", e.Status, e.Body)
}

// listResponse mirrors the RAWG paginated envelope.
type listResponse struct {
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []json.RawMessage `json:"results"`
}

// GetGames fetches a page of games from the RAWG list endpoint.
func (c *Client) GetGames(ctx context.Context, params models.GameListParams) (*models.GamesResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("page_size", strconv.Itoa(params.PageSize))
	q.Set("ordering", params.Ordering)
	setIfPresent(q, "search", params.Search)
	setIfPresent(q, "genres", params.Genres)
	setIfPresent(q, "platforms", params.Platforms)
	setIfPresent(q, "tags", params.Tags)
	setIfPresent(q, "dates", params.Dates)
	setIfPresent(q, "developers", params.Developers)
	setIfPresent(q, "publishers", params.Publishers)

	var result models.GamesResponse
	if err := c.getJSON(ctx, "/games", q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchGames is a convenience wrapper for arbitrary query parameters, used
// by the recommendation pipeline to fetch candidate pools.
func (c *Client) SearchGames(ctx context.Context, q url.Values) (*models.GamesResponse, error) {
	var result models.GamesResponse
	if err := c.getJSON(ctx, "/games", q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetGame fetches detailed info for one game.
func (c *Client) GetGame(ctx context.Context, id int) (*models.GameDetails, error) {
	var result models.GameDetails
	if err := c.getJSON(ctx, fmt.Sprintf("/games/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetGenres fetches the genre catalog.
func (c *Client) GetGenres(ctx context.Context) ([]models.NamedRef, error) {
	return c.getRefList(ctx, "/genres")
}

// GetPlatforms fetches the platform catalog.
func (c *Client) GetPlatforms(ctx context.Context) ([]models.NamedRef, error) {
	return c.getRefList(ctx, "/platforms")
}

func (c *Client) getRefList(ctx context.Context, path string) ([]models.NamedRef, error) {
	var envelope struct {
		Results []models.NamedRef `json:"results"`
	}
	if err := c.getJSON(ctx, path, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Results == nil {
		return []models.NamedRef{}, nil
	}
	return envelope.Results, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("key", c.apiKey)

	fullURL := c.baseURL + path + "?" + q.Encode()
	slog.Debug("fetching RAWG", "path", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build RAWG request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode RAWG response: %w", err)
	}
	return nil
}

func setIfPresent(q url.Values, key, val string) {
	if val != "" {
		q.Set(key, val)
	}
}
