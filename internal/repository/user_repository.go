package repository

import (
	"database/sql"
	"fmt"

	"github.com/mkh1n/play-pulse/internal/models"
)

// UserRepository handles database operations for users and profiles.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, login, username, password_hash, created_at, updated_at`

// FindByID returns a user by id.
func (r *UserRepository) FindByID(id int) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByLogin returns a user by login, or nil when no such login exists.
func (r *UserRepository) FindByLogin(login string) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE login = $1`, login)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// Create inserts a new user.
func (r *UserRepository) Create(login, username, passwordHash string) (*models.User, error) {
	row := r.db.QueryRow(`
		INSERT INTO users (login, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		login, username, passwordHash)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UpdateUsername changes the display name on the account row.
func (r *UserRepository) UpdateUsername(userID int, username string) error {
	_, err := r.db.Exec(`
		UPDATE users SET username = $1, updated_at = NOW() WHERE id = $2
	`, username, userID)
	if err != nil {
		return fmt.Errorf("update username: %w", err)
	}
	return nil
}

const profileColumns = `id, user_id, avatar_url, bio, preferred_language,
	total_likes, total_dislikes, total_games_added, created_at, updated_at`

// GetProfile returns the profile for a user, or nil when none exists.
func (r *UserRepository) GetProfile(userID int) (*models.UserProfile, error) {
	row := r.db.QueryRow(`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`, userID)
	profile, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return profile, err
}

// UpsertProfile creates or updates a user's profile row.
func (r *UserRepository) UpsertProfile(p *models.UserProfile) (*models.UserProfile, error) {
	row := r.db.QueryRow(`
		INSERT INTO user_profiles
			(user_id, avatar_url, bio, preferred_language,
			 total_likes, total_dislikes, total_games_added)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			avatar_url = EXCLUDED.avatar_url,
			bio = EXCLUDED.bio,
			preferred_language = EXCLUDED.preferred_language,
			updated_at = NOW()
		RETURNING `+profileColumns,
		p.UserID, p.AvatarURL, p.Bio, p.PreferredLanguage,
		p.TotalLikes, p.TotalDislikes, p.TotalGamesAdded)

	saved, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return saved, nil
}

// CountUsers returns the total number of registered users.
func (r *UserRepository) CountUsers() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Login, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanProfile(row rowScanner) (*models.UserProfile, error) {
	var p models.UserProfile
	err := row.Scan(
		&p.ID, &p.UserID, &p.AvatarURL, &p.Bio, &p.PreferredLanguage,
		&p.TotalLikes, &p.TotalDislikes, &p.TotalGamesAdded,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
