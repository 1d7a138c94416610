package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkh1n/play-pulse/internal/models"
	"github.com/mkh1n/play-pulse/internal/rawg"
	"github.com/mkh1n/play-pulse/internal/repository"
)

const (
	gameListCacheTTL   = 5 * time.Minute
	gameDetailCacheTTL = 30 * time.Minute
	metadataCacheTTL   = 24 * time.Hour
)

// GameService proxies the RAWG catalog and maintains the advisory shadow
// cache of items users have touched.
type GameService struct {
	games  *repository.GameRepository
	client *rawg.Client
	redis  *redis.Client
}

// NewGameService creates a new GameService.
func NewGameService(games *repository.GameRepository, client *rawg.Client, rdb *redis.Client) *GameService {
	return &GameService{games: games, client: client, redis: rdb}
}

// List returns a catalog page annotated with is_cached, and shadow-caches
// the page in the background.
func (s *GameService) List(ctx context.Context, params models.GameListParams) (*models.GamesResponse, error) {
	params.Validate()

	cacheKey := fmt.Sprintf("games:list:%d:%d:%s:%s:%s:%s:%s:%s",
		params.Page, params.PageSize, params.Ordering, params.Search,
		params.Genres, params.Platforms, params.Tags, params.Dates)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		var result models.GamesResponse
		if json.Unmarshal([]byte(cached), &result) == nil {
			slog.Debug("cache hit", "key", cacheKey)
			return &result, nil
		}
	}

	result, err := s.client.GetGames(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetch games: %w", err)
	}

	s.annotateCached(result.Results)

	// Shadow-cache the whole page. Best effort: one item failing must not
	// abort the others, and the caller never waits.
	go s.cacheGames(result.Results)

	if data, err := json.Marshal(result); err == nil {
		s.setCache(ctx, cacheKey, string(data), gameListCacheTTL)
	}

	return result, nil
}

// GetByID returns catalog detail for one game and triggers a background
// shadow-cache write.
func (s *GameService) GetByID(ctx context.Context, id int) (*models.GameDetails, error) {
	cacheKey := fmt.Sprintf("games:detail:%d", id)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		var result models.GameDetails
		if json.Unmarshal([]byte(cached), &result) == nil {
			slog.Debug("cache hit", "key", cacheKey)
			return &result, nil
		}
	}

	detail, err := s.client.GetGame(ctx, id)
	if err != nil {
		var upstream *rawg.UpstreamError
		if errors.As(err, &upstream) && upstream.Status == 404 {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch game %d: %w", id, err)
	}

	game := detail.Game
	go func() {
		if err := s.games.UpsertCachedGame(&game); err != nil {
			slog.Error("failed to cache game", "rawg_id", game.ID, "error", err)
		}
	}()
	detail.IsCached = true

	if data, err := json.Marshal(detail); err == nil {
		s.setCache(ctx, cacheKey, string(data), gameDetailCacheTTL)
	}

	return detail, nil
}

// Genres returns the genre catalog.
func (s *GameService) Genres(ctx context.Context) ([]models.NamedRef, error) {
	return s.metadata(ctx, "games:metadata:genres", s.client.GetGenres)
}

// Platforms returns the platform catalog.
func (s *GameService) Platforms(ctx context.Context) ([]models.NamedRef, error) {
	return s.metadata(ctx, "games:metadata:platforms", s.client.GetPlatforms)
}

func (s *GameService) metadata(
	ctx context.Context,
	cacheKey string,
	fetch func(context.Context) ([]models.NamedRef, error),
) ([]models.NamedRef, error) {
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		var refs []models.NamedRef
		if json.Unmarshal([]byte(cached), &refs) == nil {
			return refs, nil
		}
	}

	refs, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}

	if data, err := json.Marshal(refs); err == nil {
		s.setCache(ctx, cacheKey, string(data), metadataCacheTTL)
	}
	return refs, nil
}

func (s *GameService) annotateCached(games []models.Game) {
	ids := make([]int, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	cached, err := s.games.CachedIDs(ids)
	if err != nil {
		slog.Error("failed to check cached games", "error", err)
		return
	}
	for i := range games {
		games[i].IsCached = cached[games[i].ID]
	}
}

// cacheGames writes shadow copies for a page of results, settling every
// item regardless of individual failures.
func (s *GameService) cacheGames(games []models.Game) {
	var failed int
	for i := range games {
		if err := s.games.UpsertCachedGame(&games[i]); err != nil {
			failed++
			slog.Error("failed to cache game", "rawg_id", games[i].ID, "error", err)
		}
	}
	if failed > 0 {
		slog.Warn("batch cache completed with failures", "total", len(games), "failed", failed)
	}
}

// ---- Redis helpers ----

func (s *GameService) getFromCache(ctx context.Context, key string) (string, error) {
	if s.redis == nil {
		return "", fmt.Errorf("redis not available")
	}
	return s.redis.Get(ctx, key).Result()
}

func (s *GameService) setCache(ctx context.Context, key, value string, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Error("failed to set cache", "key", key, "error", err)
	}
}
