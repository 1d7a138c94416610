package repository

import (
	"database/sql"
	"fmt"

	"github.com/mkh1n/play-pulse/internal/models"
)

// PreferenceRepository reads per-user genre and tag affinity vectors.
type PreferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new PreferenceRepository.
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// TopGenrePreferences returns the user's strongest genre affinities,
// heaviest first.
func (r *PreferenceRepository) TopGenrePreferences(userID, limit int) ([]models.GenrePreference, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, genre_id, genre_name, weight,
			interaction_count, like_count, dislike_count, last_interaction
		FROM user_genre_preferences
		WHERE user_id = $1
		ORDER BY weight DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query genre preferences: %w", err)
	}
	defer rows.Close()

	prefs := make([]models.GenrePreference, 0)
	for rows.Next() {
		var p models.GenrePreference
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.GenreID, &p.GenreName, &p.Weight,
			&p.InteractionCount, &p.LikeCount, &p.DislikeCount, &p.LastInteraction,
		); err != nil {
			return nil, fmt.Errorf("scan genre preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// TopTagPreferences returns the user's strongest tag affinities,
// heaviest first.
func (r *PreferenceRepository) TopTagPreferences(userID, limit int) ([]models.TagPreference, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, tag_id, tag_name, weight,
			interaction_count, like_count, dislike_count, last_interaction
		FROM user_tag_preferences
		WHERE user_id = $1
		ORDER BY weight DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query tag preferences: %w", err)
	}
	defer rows.Close()

	prefs := make([]models.TagPreference, 0)
	for rows.Next() {
		var p models.TagPreference
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.TagID, &p.TagName, &p.Weight,
			&p.InteractionCount, &p.LikeCount, &p.DislikeCount, &p.LastInteraction,
		); err != nil {
			return nil, fmt.Errorf("scan tag preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}
