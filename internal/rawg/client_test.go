package rawg

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkh1n/play-pulse/internal/models"
)

func TestGetGamesSendsKeyAndParams(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		assert.Equal(t, "/games", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"count": 2,
			"next": "https://example.com/next",
			"previous": null,
			"results": [
				{"id": 3498, "name": "GTA V", "rating": 4.47},
				{"id": 3328, "name": "The Witcher 3", "rating": 4.65}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	resp, err := client.GetGames(context.Background(), models.GameListParams{
		Page:     2,
		PageSize: 20,
		Ordering: "-rating",
		Search:   "witcher",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"test-key"}, gotQuery["key"])
	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"20"}, gotQuery["page_size"])
	assert.Equal(t, []string{"-rating"}, gotQuery["ordering"])
	assert.Equal(t, []string{"witcher"}, gotQuery["search"])

	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "GTA V", resp.Results[0].Name)
	assert.InDelta(t, 4.65, resp.Results[1].Rating, 1e-9)
}

func TestGetGamesOmitsEmptyFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("search"))
		assert.False(t, q.Has("genres"))
		_, _ = w.Write([]byte(`{"count": 0, "results": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	_, err := client.GetGames(context.Background(), models.GameListParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
}

func TestGetGameUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Not found."}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	_, err := client.GetGame(context.Background(), 999999)
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusNotFound, upstream.Status)
	assert.Contains(t, upstream.Body, "Not found")
}

func TestGetGenres(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/genres", r.URL.Path)
		_, _ = w.Write([]byte(`{"results": [{"id": 4, "name": "Action", "slug": "action"}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	genres, err := client.GetGenres(context.Background())
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, "Action", genres[0].Name)
}

func TestGetGenresEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	genres, err := client.GetGenres(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, genres)
	assert.Empty(t, genres)
}

func TestGetGameMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	_, err := client.GetGame(context.Background(), 3498)
	require.Error(t, err)
	var upstream *UpstreamError
	assert.False(t, errors.As(err, &upstream))
}
