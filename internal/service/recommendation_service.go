package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkh1n/play-pulse/internal/models"
	"github.com/mkh1n/play-pulse/internal/rawg"
	"github.com/mkh1n/play-pulse/internal/repository"
)

const (
	recommendationCacheTTL = 10 * time.Minute

	topPreferenceCount = 5
	ratingHistoryLimit = 50

	// Genre filter for the candidate pool: strongest preferences only.
	genreFilterMinWeight = 1.5
	genreFilterMax       = 2
)

// RecommendationService produces personalized, explained game lists.
type RecommendationService struct {
	prefs   *repository.PreferenceRepository
	actions *repository.ActionRepository
	client  *rawg.Client
	redis   *redis.Client
}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(
	prefs *repository.PreferenceRepository,
	actions *repository.ActionRepository,
	client *rawg.Client,
	rdb *redis.Client,
) *RecommendationService {
	return &RecommendationService{prefs: prefs, actions: actions, client: client, redis: rdb}
}

// GetPersonalized returns the scored recommendation list for a user. With
// no preference or rating data at all (cold start) it returns the
// popularity-ordered fallback unchanged.
func (s *RecommendationService) GetPersonalized(ctx context.Context, userID, limit int) ([]models.ScoredGame, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 40 {
		limit = 40
	}

	cacheKey := fmt.Sprintf("recommendations:%d:%d", userID, limit)
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		var result []models.ScoredGame
		if json.Unmarshal([]byte(cached), &result) == nil {
			slog.Debug("recommendations cache hit", "user_id", userID)
			return result, nil
		}
	}

	genrePrefs, err := s.prefs.TopGenrePreferences(userID, topPreferenceCount)
	if err != nil {
		slog.Warn("could not fetch genre preferences", "user_id", userID, "error", err)
		genrePrefs = nil
	}
	tagPrefs, err := s.prefs.TopTagPreferences(userID, topPreferenceCount)
	if err != nil {
		slog.Warn("could not fetch tag preferences", "user_id", userID, "error", err)
		tagPrefs = nil
	}
	userRatings, err := s.actions.GetRatings(userID, ratingHistoryLimit)
	if err != nil {
		slog.Warn("could not fetch rating history", "user_id", userID, "error", err)
		userRatings = nil
	}

	// Cold start: no signal at all, serve popularity unchanged.
	if len(genrePrefs) == 0 && len(tagPrefs) == 0 && len(userRatings) == 0 {
		return s.GetPopular(ctx, limit)
	}

	candidates, err := s.fetchCandidates(ctx, genrePrefs, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	scored := ScoreGames(candidates, genrePrefs, tagPrefs, userRatings)

	if data, err := json.Marshal(scored); err == nil {
		s.setCache(ctx, cacheKey, string(data), recommendationCacheTTL)
	}
	return scored, nil
}

// GetPopular returns the catalog's top-rated games, annotated the same way
// scored games are so the two lists share a response shape.
func (s *RecommendationService) GetPopular(ctx context.Context, limit int) ([]models.ScoredGame, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 40 {
		limit = 40
	}

	q := url.Values{}
	q.Set("page_size", strconv.Itoa(limit))
	q.Set("ordering", "-rating")

	resp, err := s.client.SearchGames(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch popular games: %w", err)
	}

	return annotatePopular(resp.Results, reasonPopular), nil
}

// GetNew returns the popular list with a fresher reason string.
func (s *RecommendationService) GetNew(ctx context.Context, limit int) ([]models.ScoredGame, error) {
	games, err := s.GetPopular(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range games {
		games[i].RecommendationReason = reasonNewAndPopular
	}
	return games, nil
}

// fetchCandidates pulls the candidate pool from the catalog, filtered by
// the user's strongest genre preferences when they are pronounced enough.
func (s *RecommendationService) fetchCandidates(ctx context.Context, genrePrefs []models.GenrePreference, limit int) ([]models.Game, error) {
	q := url.Values{}
	q.Set("page_size", strconv.Itoa(limit))

	var topGenreIDs []string
	for _, p := range genrePrefs {
		if p.Weight > genreFilterMinWeight {
			topGenreIDs = append(topGenreIDs, strconv.Itoa(p.GenreID))
		}
		if len(topGenreIDs) == genreFilterMax {
			break
		}
	}
	if len(topGenreIDs) > 0 {
		q.Set("genres", strings.Join(topGenreIDs, ","))
	}

	resp, err := s.client.SearchGames(ctx, q)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func annotatePopular(games []models.Game, reason string) []models.ScoredGame {
	scored := make([]models.ScoredGame, 0, len(games))
	for _, g := range games {
		score := g.Rating
		if score == 0 {
			score = defaultBaseScore
		}
		scored = append(scored, models.ScoredGame{
			Game:                 g,
			PersonalizedScore:    score,
			RecommendationReason: reason,
		})
	}
	return scored
}

// ---- Redis helpers ----

func (s *RecommendationService) getFromCache(ctx context.Context, key string) (string, error) {
	if s.redis == nil {
		return "", fmt.Errorf("redis not available")
	}
	return s.redis.Get(ctx, key).Result()
}

func (s *RecommendationService) setCache(ctx context.Context, key, value string, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Error("failed to set cache", "key", key, "error", err)
	}
}
