package models

// ScoredGame is a catalog item annotated with a personalized score and a
// human-readable reason.
type ScoredGame struct {
	Game
	PersonalizedScore    float64 `json:"personalized_score"`
	RecommendationReason string  `json:"recommendation_reason"`
}

// RecommendationsResponse wraps a personalized recommendation list.
type RecommendationsResponse struct {
	Success         bool         `json:"success"`
	Count           int          `json:"count"`
	Recommendations []ScoredGame `json:"recommendations"`
	GeneratedAt     string       `json:"generatedAt"`
}

// PopularGamesResponse wraps the popularity fallback list.
type PopularGamesResponse struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Games   []ScoredGame `json:"games"`
}
