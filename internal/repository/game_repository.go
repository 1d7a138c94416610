package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/mkh1n/play-pulse/internal/models"
)

// GameRepository maintains the local shadow copies of catalog items.
type GameRepository struct {
	db *sql.DB
}

// NewGameRepository creates a new GameRepository.
func NewGameRepository(db *sql.DB) *GameRepository {
	return &GameRepository{db: db}
}

// UpsertCachedGame stores or refreshes the shadow copy of a catalog item,
// keyed by the RAWG id.
func (r *GameRepository) UpsertCachedGame(g *models.Game) error {
	genres, err := json.Marshal(g.Genres)
	if err != nil {
		return fmt.Errorf("marshal genres: %w", err)
	}
	tags, err := json.Marshal(g.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	platforms, err := json.Marshal(g.Platforms)
	if err != nil {
		return fmt.Errorf("marshal platforms: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO games (rawg_id, name, slug, released, background_image,
			rating, rating_top, metacritic, playtime, genres, tags, platforms,
			is_cached, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, TRUE, NOW())
		ON CONFLICT (rawg_id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			released = EXCLUDED.released,
			background_image = EXCLUDED.background_image,
			rating = EXCLUDED.rating,
			rating_top = EXCLUDED.rating_top,
			metacritic = EXCLUDED.metacritic,
			playtime = EXCLUDED.playtime,
			genres = EXCLUDED.genres,
			tags = EXCLUDED.tags,
			platforms = EXCLUDED.platforms,
			is_cached = TRUE,
			updated_at = NOW()
	`, g.ID, g.Name, g.Slug, g.Released, g.BackgroundImage,
		g.Rating, g.RatingTop, g.Metacritic, g.Playtime,
		genres, tags, platforms)
	if err != nil {
		return fmt.Errorf("upsert cached game: %w", err)
	}
	return nil
}

// CachedIDs reports which of the given RAWG ids have a shadow copy.
func (r *GameRepository) CachedIDs(rawgIDs []int) (map[int]bool, error) {
	cached := make(map[int]bool)
	if len(rawgIDs) == 0 {
		return cached, nil
	}

	rows, err := r.db.Query(
		`SELECT rawg_id FROM games WHERE rawg_id = ANY($1)`,
		pq.Array(rawgIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("query cached ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan cached id: %w", err)
		}
		cached[id] = true
	}
	return cached, rows.Err()
}

// GetCachedByIDs returns shadow copies for the given RAWG ids.
func (r *GameRepository) GetCachedByIDs(rawgIDs []int) (map[int]models.CachedGame, error) {
	result := make(map[int]models.CachedGame)
	if len(rawgIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(`
		SELECT rawg_id, name, background_image, rating, metacritic, genres, tags
		FROM games WHERE rawg_id = ANY($1)
	`, pq.Array(rawgIDs))
	if err != nil {
		return nil, fmt.Errorf("query cached games: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var g models.CachedGame
		if err := rows.Scan(
			&g.RawgID, &g.Name, &g.BackgroundImage, &g.Rating, &g.Metacritic,
			(*[]byte)(&g.Genres), (*[]byte)(&g.Tags),
		); err != nil {
			return nil, fmt.Errorf("scan cached game: %w", err)
		}
		result[g.RawgID] = g
	}
	return result, rows.Err()
}
