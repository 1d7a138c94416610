package models

import "time"

// User is an account row. The password hash never leaves the server.
type User struct {
	ID           int       `json:"id"`
	Login        string    `json:"login"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserProfile holds the mutable profile attached to a user.
type UserProfile struct {
	ID                int       `json:"id"`
	UserID            int       `json:"user_id"`
	AvatarURL         string    `json:"avatar_url"`
	Bio               string    `json:"bio"`
	PreferredLanguage string    `json:"preferred_language"`
	TotalLikes        int       `json:"total_likes"`
	TotalDislikes     int       `json:"total_dislikes"`
	TotalGamesAdded   int       `json:"total_games_added"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// UpdateProfileRequest is the body for PUT /users/me.
type UpdateProfileRequest struct {
	Username          *string `json:"username,omitempty"`
	AvatarURL         *string `json:"avatar_url,omitempty"`
	Bio               *string `json:"bio,omitempty"`
	PreferredLanguage *string `json:"preferred_language,omitempty"`
}

// PublicProfile is the unauthenticated view of another user.
type PublicProfile struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}
