package models

import "time"

// GenrePreference is a per-user genre affinity. Weight 1.0 is neutral,
// above 1.0 is affinity, below is aversion.
type GenrePreference struct {
	ID               int       `json:"id"`
	UserID           int       `json:"user_id"`
	GenreID          int       `json:"genre_id"`
	GenreName        string    `json:"genre_name"`
	Weight           float64   `json:"weight"`
	InteractionCount int       `json:"interaction_count"`
	LikeCount        int       `json:"like_count"`
	DislikeCount     int       `json:"dislike_count"`
	LastInteraction  time.Time `json:"last_interaction"`
}

// TagPreference is a per-user tag affinity, same shape as GenrePreference.
type TagPreference struct {
	ID               int       `json:"id"`
	UserID           int       `json:"user_id"`
	TagID            int       `json:"tag_id"`
	TagName          string    `json:"tag_name"`
	Weight           float64   `json:"weight"`
	InteractionCount int       `json:"interaction_count"`
	LikeCount        int       `json:"like_count"`
	DislikeCount     int       `json:"dislike_count"`
	LastInteraction  time.Time `json:"last_interaction"`
}

// UserPreferences is the aggregate returned by the preferences endpoint.
type UserPreferences struct {
	UserID      int            `json:"userId"`
	Preferences map[string]any `json:"preferences"`
}
