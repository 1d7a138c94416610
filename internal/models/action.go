package models

import (
	"encoding/json"
	"time"
)

// Action types recorded per (user, game). At most one live row per
// (user, game, action type) tuple.
const (
	ActionLike     = "like"
	ActionDislike  = "dislike"
	ActionWishlist = "wishlist"
	ActionRate     = "rate"
	ActionStatus   = "status_change"
	ActionPurchase = "purchase_change"
)

// Completion statuses.
const (
	StatusNotPlayed = "not_played"
	StatusPlaying   = "playing"
	StatusCompleted = "completed"
	StatusDropped   = "dropped"
)

// Purchase statuses.
const (
	PurchaseOwned     = "owned"
	PurchaseNotOwned  = "not_owned"
	PurchaseWantToBuy = "want_to_buy"
)

// ValidCompletionStatuses enumerates accepted completion_status values.
var ValidCompletionStatuses = map[string]bool{
	StatusNotPlayed: true,
	StatusPlaying:   true,
	StatusCompleted: true,
	StatusDropped:   true,
}

// ValidPurchaseStatuses enumerates accepted purchase_status values.
var ValidPurchaseStatuses = map[string]bool{
	PurchaseOwned:     true,
	PurchaseNotOwned:  true,
	PurchaseWantToBuy: true,
}

// UserGameAction is one recorded interaction with a catalog item.
// game_id is the RAWG identifier, not the internal shadow-table id.
type UserGameAction struct {
	ID               int             `json:"id"`
	UserID           int             `json:"user_id"`
	GameID           int             `json:"game_id"`
	GameName         string          `json:"game_name"`
	ActionType       string          `json:"action_type"`
	Rating           *int            `json:"rating,omitempty"`
	CompletionStatus *string         `json:"completion_status,omitempty"`
	PurchaseStatus   *string         `json:"purchase_status,omitempty"`
	Genres           json.RawMessage `json:"genres"`
	Tags             json.RawMessage `json:"tags"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// GameSnapshot is the catalog data a client sends along with an action.
// Genres and tags are denormalized into the action row at write time.
type GameSnapshot struct {
	ID     int        `json:"id"`
	RawgID int        `json:"rawg_id"`
	Name   string     `json:"name"`
	Genres []NamedRef `json:"genres"`
	Tags   []NamedRef `json:"tags"`
}

// CatalogID resolves the RAWG id, preferring the explicit rawg_id field.
func (g GameSnapshot) CatalogID() int {
	if g.RawgID != 0 {
		return g.RawgID
	}
	return g.ID
}

// RateGameRequest is the body for POST /games/:id/rate.
type RateGameRequest struct {
	Rating int          `json:"rating"`
	Game   GameSnapshot `json:"game"`
}

// UpdateStatusRequest is the body for POST /games/:id/status.
type UpdateStatusRequest struct {
	Status string       `json:"status"`
	Game   GameSnapshot `json:"game"`
}

// UpdatePurchaseRequest is the body for POST /games/:id/purchase.
type UpdatePurchaseRequest struct {
	Purchase string       `json:"purchase"`
	Game     GameSnapshot `json:"game"`
}

// GameActionRequest is the body for like/dislike/wishlist posts.
type GameActionRequest struct {
	Game GameSnapshot `json:"game"`
}

// UserGameActionsSnapshot is the flattened per-game view of everything the
// caller has done with one game.
type UserGameActionsSnapshot struct {
	Liked            bool   `json:"liked"`
	Disliked         bool   `json:"disliked"`
	InWishlist       bool   `json:"in_wishlist"`
	Rating           *int   `json:"rating"`
	CompletionStatus string `json:"completion_status"`
	PurchaseStatus   string `json:"purchase_status"`
}

// NewUserGameActionsSnapshot returns the neutral snapshot for a game the
// user has never touched.
func NewUserGameActionsSnapshot() UserGameActionsSnapshot {
	return UserGameActionsSnapshot{
		CompletionStatus: StatusNotPlayed,
		PurchaseStatus:   PurchaseNotOwned,
	}
}

// UserGame groups a user's actions per game for the library view.
type UserGame struct {
	ID              int              `json:"id"`
	Name            string           `json:"name"`
	BackgroundImage string           `json:"background_image,omitempty"`
	Rating          float64          `json:"rating,omitempty"`
	Metacritic      int              `json:"metacritic,omitempty"`
	Genres          json.RawMessage  `json:"genres,omitempty"`
	Tags            json.RawMessage  `json:"tags,omitempty"`
	Actions         []UserGameBadge  `json:"actions"`
}

// UserGameBadge is one action entry inside a UserGame.
type UserGameBadge struct {
	Type             string    `json:"type"`
	Rating           *int      `json:"rating,omitempty"`
	CompletionStatus *string   `json:"completion_status,omitempty"`
	PurchaseStatus   *string   `json:"purchase_status,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
