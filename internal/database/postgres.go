package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/mkh1n/play-pulse/internal/config"
)

// NewPostgres creates a new PostgreSQL connection and runs migrations.
func NewPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	slog.Info("connected to PostgreSQL", "db", cfg.DBName)

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			login VARCHAR(100) UNIQUE NOT NULL,
			username VARCHAR(100) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS user_profiles (
			id SERIAL PRIMARY KEY,
			user_id INTEGER UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			avatar_url VARCHAR(500) DEFAULT '',
			bio TEXT DEFAULT '',
			preferred_language VARCHAR(10) DEFAULT 'ru',
			total_likes INTEGER DEFAULT 0,
			total_dislikes INTEGER DEFAULT 0,
			total_games_added INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,
		// Shadow copies of RAWG catalog items. Advisory, never authoritative.
		`CREATE TABLE IF NOT EXISTS games (
			id SERIAL PRIMARY KEY,
			rawg_id INTEGER UNIQUE NOT NULL,
			name VARCHAR(500) NOT NULL,
			slug VARCHAR(500) DEFAULT '',
			released VARCHAR(20) DEFAULT '',
			background_image VARCHAR(1000) DEFAULT '',
			rating DOUBLE PRECISION DEFAULT 0,
			rating_top INTEGER DEFAULT 0,
			metacritic INTEGER DEFAULT 0,
			playtime INTEGER DEFAULT 0,
			genres JSONB DEFAULT '[]',
			tags JSONB DEFAULT '[]',
			platforms JSONB DEFAULT '[]',
			is_cached BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,
		// One live row per (user, game, action type); genre/tag snapshots are
		// denormalized so aggregation never re-fetches the catalog.
		`CREATE TABLE IF NOT EXISTS user_game_actions (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			game_id INTEGER NOT NULL,
			game_name VARCHAR(500) NOT NULL,
			action_type VARCHAR(20) NOT NULL,
			rating INTEGER,
			completion_status VARCHAR(20),
			purchase_status VARCHAR(20),
			genres JSONB DEFAULT '[]',
			tags JSONB DEFAULT '[]',
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW(),
			UNIQUE (user_id, game_id, action_type)
		)`,
		`CREATE TABLE IF NOT EXISTS user_genre_preferences (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			genre_id INTEGER NOT NULL,
			genre_name VARCHAR(100) NOT NULL,
			weight DOUBLE PRECISION DEFAULT 1.0,
			interaction_count INTEGER DEFAULT 0,
			like_count INTEGER DEFAULT 0,
			dislike_count INTEGER DEFAULT 0,
			last_interaction TIMESTAMP DEFAULT NOW(),
			UNIQUE (user_id, genre_id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_tag_preferences (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			tag_id INTEGER NOT NULL,
			tag_name VARCHAR(100) NOT NULL,
			weight DOUBLE PRECISION DEFAULT 1.0,
			interaction_count INTEGER DEFAULT 0,
			like_count INTEGER DEFAULT 0,
			dislike_count INTEGER DEFAULT 0,
			last_interaction TIMESTAMP DEFAULT NOW(),
			UNIQUE (user_id, tag_id)
		)`,
		// Indexes for common query patterns
		`CREATE INDEX IF NOT EXISTS idx_actions_user ON user_game_actions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_user_game ON user_game_actions(user_id, game_id)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_user_type ON user_game_actions(user_id, action_type)`,
		`CREATE INDEX IF NOT EXISTS idx_games_rawg_id ON games(rawg_id)`,
		`CREATE INDEX IF NOT EXISTS idx_genre_prefs_user ON user_genre_preferences(user_id, weight)`,
		`CREATE INDEX IF NOT EXISTS idx_tag_prefs_user ON user_tag_preferences(user_id, weight)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Info("database migrations completed")
	return nil
}
