package repository

import (
	"database/sql"
	"fmt"

	"github.com/mkh1n/play-pulse/internal/models"
)

// ActionRepository handles database operations for user game actions.
type ActionRepository struct {
	db *sql.DB
}

// NewActionRepository creates a new ActionRepository.
func NewActionRepository(db *sql.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

const actionColumns = `id, user_id, game_id, game_name, action_type, rating,
	completion_status, purchase_status, genres, tags, created_at, updated_at`

// Upsert inserts or overwrites the live row for (user, game, action type).
func (r *ActionRepository) Upsert(a *models.UserGameAction) (*models.UserGameAction, error) {
	genres := a.Genres
	if genres == nil {
		genres = []byte("[]")
	}
	tags := a.Tags
	if tags == nil {
		tags = []byte("[]")
	}

	row := r.db.QueryRow(`
		INSERT INTO user_game_actions
			(user_id, game_id, game_name, action_type, rating,
			 completion_status, purchase_status, genres, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, game_id, action_type) DO UPDATE SET
			game_name = EXCLUDED.game_name,
			rating = EXCLUDED.rating,
			completion_status = EXCLUDED.completion_status,
			purchase_status = EXCLUDED.purchase_status,
			genres = EXCLUDED.genres,
			tags = EXCLUDED.tags,
			updated_at = NOW()
		RETURNING `+actionColumns,
		a.UserID, a.GameID, a.GameName, a.ActionType, a.Rating,
		a.CompletionStatus, a.PurchaseStatus, []byte(genres), []byte(tags))

	saved, err := scanAction(row)
	if err != nil {
		return nil, fmt.Errorf("upsert action: %w", err)
	}
	return saved, nil
}

// Delete removes the row for (user, game, action type). Deleting a row that
// does not exist is not an error.
func (r *ActionRepository) Delete(userID, gameID int, actionType string) error {
	_, err := r.db.Exec(`
		DELETE FROM user_game_actions
		WHERE user_id = $1 AND game_id = $2 AND action_type = $3
	`, userID, gameID, actionType)
	if err != nil {
		return fmt.Errorf("delete action: %w", err)
	}
	return nil
}

// GetByUserAndGame returns all actions the user has on one game.
func (r *ActionRepository) GetByUserAndGame(userID, gameID int) ([]models.UserGameAction, error) {
	rows, err := r.db.Query(`
		SELECT `+actionColumns+`
		FROM user_game_actions
		WHERE user_id = $1 AND game_id = $2
	`, userID, gameID)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()
	return collectActions(rows)
}

// GetByUser returns all actions for a user, newest first.
func (r *ActionRepository) GetByUser(userID int) ([]models.UserGameAction, error) {
	rows, err := r.db.Query(`
		SELECT `+actionColumns+`
		FROM user_game_actions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query user actions: %w", err)
	}
	defer rows.Close()
	return collectActions(rows)
}

// GetByUserAndType returns the user's actions of one type, newest first.
func (r *ActionRepository) GetByUserAndType(userID int, actionType string, limit int) ([]models.UserGameAction, error) {
	rows, err := r.db.Query(`
		SELECT `+actionColumns+`
		FROM user_game_actions
		WHERE user_id = $1 AND action_type = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, userID, actionType, limit)
	if err != nil {
		return nil, fmt.Errorf("query actions by type: %w", err)
	}
	defer rows.Close()
	return collectActions(rows)
}

// GetRatings returns up to limit rate actions for the user.
func (r *ActionRepository) GetRatings(userID, limit int) ([]models.UserGameAction, error) {
	return r.GetByUserAndType(userID, models.ActionRate, limit)
}

// GetRating returns the user's rating for a game, or nil when unrated.
func (r *ActionRepository) GetRating(userID, gameID int) (*int, error) {
	var rating sql.NullInt64
	err := r.db.QueryRow(`
		SELECT rating FROM user_game_actions
		WHERE user_id = $1 AND game_id = $2 AND action_type = $3
	`, userID, gameID, models.ActionRate).Scan(&rating)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query rating: %w", err)
	}
	if !rating.Valid {
		return nil, nil
	}
	v := int(rating.Int64)
	return &v, nil
}

// GetAverageRating returns the mean of the user's ratings, 0 with none.
func (r *ActionRepository) GetAverageRating(userID int) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT AVG(rating) FROM user_game_actions
		WHERE user_id = $1 AND action_type = $2
	`, userID, models.ActionRate).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("query average rating: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAction(row rowScanner) (*models.UserGameAction, error) {
	var a models.UserGameAction
	var rating sql.NullInt64
	var completion, purchase sql.NullString

	err := row.Scan(
		&a.ID, &a.UserID, &a.GameID, &a.GameName, &a.ActionType,
		&rating, &completion, &purchase,
		(*[]byte)(&a.Genres), (*[]byte)(&a.Tags),
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if rating.Valid {
		v := int(rating.Int64)
		a.Rating = &v
	}
	if completion.Valid {
		a.CompletionStatus = &completion.String
	}
	if purchase.Valid {
		a.PurchaseStatus = &purchase.String
	}
	return &a, nil
}

func collectActions(rows *sql.Rows) ([]models.UserGameAction, error) {
	actions := make([]models.UserGameAction, 0)
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		actions = append(actions, *a)
	}
	return actions, rows.Err()
}
