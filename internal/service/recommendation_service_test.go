package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkh1n/play-pulse/internal/models"
	"github.com/mkh1n/play-pulse/internal/rawg"
	"github.com/mkh1n/play-pulse/internal/repository"
)

var prefRowColumns = []string{
	"id", "user_id", "genre_id", "genre_name", "weight",
	"interaction_count", "like_count", "dislike_count", "last_interaction",
}

func newRecommendationService(t *testing.T, catalogURL string) (*RecommendationService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewRecommendationService(
		repository.NewPreferenceRepository(db),
		repository.NewActionRepository(db),
		rawg.NewClient("test-key", catalogURL),
		nil,
	)
	return svc, mock
}

func emptyPrefRows() *sqlmock.Rows {
	return sqlmock.NewRows(prefRowColumns)
}

func TestGetPersonalizedColdStartFallsBackToPopular(t *testing.T) {
	var gotOrdering string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrdering = r.URL.Query().Get("ordering")
		_, _ = w.Write([]byte(`{"count": 2, "results": [
			{"id": 1, "name": "First", "rating": 4.8},
			{"id": 2, "name": "Second", "rating": 4.7}
		]}`))
	}))
	defer srv.Close()

	svc, mock := newRecommendationService(t, srv.URL)

	mock.ExpectQuery(`FROM user_genre_preferences`).
		WithArgs(42, topPreferenceCount).
		WillReturnRows(emptyPrefRows())
	mock.ExpectQuery(`FROM user_tag_preferences`).
		WithArgs(42, topPreferenceCount).
		WillReturnRows(emptyPrefRows())
	mock.ExpectQuery(`FROM user_game_actions`).
		WithArgs(42, models.ActionRate, ratingHistoryLimit).
		WillReturnRows(sqlmock.NewRows(actionRowColumns))

	games, err := svc.GetPersonalized(context.Background(), 42, 20)
	require.NoError(t, err)

	// The popularity fallback keeps catalog order and does not rescore.
	assert.Equal(t, "-rating", gotOrdering)
	require.Len(t, games, 2)
	assert.Equal(t, 1, games[0].ID)
	assert.InDelta(t, 4.8, games[0].PersonalizedScore, 1e-9)
	assert.Equal(t, "Популярная игра с высоким рейтингом", games[0].RecommendationReason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPersonalizedUsesGenreFilter(t *testing.T) {
	var gotGenres string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotGenres = r.URL.Query().Get("genres")
		_, _ = w.Write([]byte(`{"count": 1, "results": [
			{"id": 10, "name": "Candidate", "rating": 4.5,
			 "genres": [{"id": 5, "name": "RPG"}]}
		]}`))
	}))
	defer srv.Close()

	svc, mock := newRecommendationService(t, srv.URL)

	now := time.Now()
	prefRows := sqlmock.NewRows(prefRowColumns).
		AddRow(1, 42, 5, "RPG", 2.0, 10, 8, 0, now).
		AddRow(2, 42, 3, "Adventure", 1.6, 6, 4, 0, now).
		AddRow(3, 42, 7, "Puzzle", 1.2, 2, 1, 0, now)
	mock.ExpectQuery(`FROM user_genre_preferences`).
		WillReturnRows(prefRows)
	mock.ExpectQuery(`FROM user_tag_preferences`).
		WillReturnRows(emptyPrefRows())
	mock.ExpectQuery(`FROM user_game_actions`).
		WillReturnRows(sqlmock.NewRows(actionRowColumns))

	games, err := svc.GetPersonalized(context.Background(), 42, 20)
	require.NoError(t, err)

	// Only preferences above the filter threshold make it into the
	// candidate query, capped at two.
	assert.Equal(t, "5,3", gotGenres)

	require.Len(t, games, 1)
	// Base 4.5 + (2.0 - 1.0) * 0.4 from the matched RPG genre.
	assert.InDelta(t, 4.9, games[0].PersonalizedScore, 1e-9)
	assert.Equal(t, `Рекомендуем, потому что вам нравится жанр "RPG"`, games[0].RecommendationReason)
}

func TestGetPersonalizedDegradesOnRepositoryErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count": 1, "results": [{"id": 1, "name": "Popular", "rating": 4.9}]}`))
	}))
	defer srv.Close()

	svc, mock := newRecommendationService(t, srv.URL)

	mock.ExpectQuery(`FROM user_genre_preferences`).
		WillReturnError(assert.AnError)
	mock.ExpectQuery(`FROM user_tag_preferences`).
		WillReturnError(assert.AnError)
	mock.ExpectQuery(`FROM user_game_actions`).
		WillReturnError(assert.AnError)

	// Repository failures degrade to the cold-start path instead of 500s.
	games, err := svc.GetPersonalized(context.Background(), 42, 20)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Popular", games[0].Name)
}

func TestGetPopularClampsLimit(t *testing.T) {
	var gotPageSize string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPageSize = r.URL.Query().Get("page_size")
		_, _ = w.Write([]byte(`{"count": 0, "results": []}`))
	}))
	defer srv.Close()

	svc, _ := newRecommendationService(t, srv.URL)

	_, err := svc.GetPopular(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, "40", gotPageSize)

	_, err = svc.GetPopular(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "20", gotPageSize)
}

func TestGetNewReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count": 1, "results": [{"id": 1, "name": "Fresh", "rating": 4.2}]}`))
	}))
	defer srv.Close()

	svc, _ := newRecommendationService(t, srv.URL)

	games, err := svc.GetNew(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Новая популярная игра", games[0].RecommendationReason)
}
