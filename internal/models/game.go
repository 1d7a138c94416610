package models

import (
	"encoding/json"
	"strings"
	"time"
)

// NamedRef is a catalog reference with an id and a display name.
// RAWG uses this shape for genres and tags.
type NamedRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PlatformRef wraps a platform reference the way RAWG nests it.
type PlatformRef struct {
	Platform NamedRef `json:"platform"`
}

// Game is a catalog item as returned by the RAWG list endpoint,
// annotated with the local cache flag.
type Game struct {
	ID              int           `json:"id"`
	Slug            string        `json:"slug"`
	Name            string        `json:"name"`
	Released        string        `json:"released"`
	BackgroundImage string        `json:"background_image"`
	Rating          float64       `json:"rating"`
	RatingTop       int           `json:"rating_top"`
	Metacritic      int           `json:"metacritic"`
	Playtime        int           `json:"playtime"`
	Genres          []NamedRef    `json:"genres"`
	Tags            []NamedRef    `json:"tags"`
	Platforms       []PlatformRef `json:"platforms"`
	IsCached        bool          `json:"is_cached"`
}

// GameDetails is a catalog item as returned by the RAWG detail endpoint.
type GameDetails struct {
	Game
	Description    string     `json:"description"`
	DescriptionRaw string     `json:"description_raw"`
	Website        string     `json:"website"`
	MetacriticURL  string     `json:"metacritic_url"`
	Developers     []NamedRef `json:"developers"`
	Publishers     []NamedRef `json:"publishers"`
}

// GamesResponse is the paginated RAWG-style list envelope.
type GamesResponse struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Game  `json:"results"`
}

// CachedGame is the local shadow copy of a catalog item. The catalog owns
// the data; this row is refreshed opportunistically and never invalidated
// on a schedule.
type CachedGame struct {
	ID              int             `json:"id"`
	RawgID          int             `json:"rawg_id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Released        string          `json:"released"`
	BackgroundImage string          `json:"background_image"`
	Rating          float64         `json:"rating"`
	RatingTop       int             `json:"rating_top"`
	Metacritic      int             `json:"metacritic"`
	Playtime        int             `json:"playtime"`
	Genres          json.RawMessage `json:"genres"`
	Tags            json.RawMessage `json:"tags"`
	Platforms       json.RawMessage `json:"platforms"`
	IsCached        bool            `json:"is_cached"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// GameListParams holds query parameters for the catalog listing.
type GameListParams struct {
	Page       int    `query:"page"`
	PageSize   int    `query:"pageSize"`
	Search     string `query:"search"`
	Ordering   string `query:"ordering"`
	Genres     string `query:"genres"`
	Platforms  string `query:"platforms"`
	Tags       string `query:"tags"`
	Dates      string `query:"dates"`
	Developers string `query:"developers"`
	Publishers string `query:"publishers"`
}

var validOrderings = map[string]bool{
	"name": true, "released": true, "added": true, "created": true,
	"updated": true, "rating": true, "metacritic": true,
}

// Validate sets defaults and discards unknown orderings.
func (p *GameListParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 40 {
		p.PageSize = 20
	}
	if p.Ordering == "" {
		p.Ordering = "-rating"
	}
	if !validOrderings[strings.TrimPrefix(p.Ordering, "-")] {
		p.Ordering = "-rating"
	}
}
