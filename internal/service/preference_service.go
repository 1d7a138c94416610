package service

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mkh1n/play-pulse/internal/models"
	"github.com/mkh1n/play-pulse/internal/repository"
)

// PreferenceService records user game actions and answers questions about
// them. Genre/tag snapshots are denormalized into every row so later
// aggregation never re-fetches the catalog.
type PreferenceService struct {
	actions *repository.ActionRepository
	games   *repository.GameRepository
}

// NewPreferenceService creates a new PreferenceService.
func NewPreferenceService(actions *repository.ActionRepository, games *repository.GameRepository) *PreferenceService {
	return &PreferenceService{actions: actions, games: games}
}

// ProcessGameAction upserts a like, dislike or wishlist row. Likes and
// dislikes are mutually exclusive: recording one deletes the other first.
func (s *PreferenceService) ProcessGameAction(userID int, game models.GameSnapshot, actionType string) (*models.UserGameAction, error) {
	switch actionType {
	case models.ActionLike, models.ActionDislike, models.ActionWishlist:
	default:
		return nil, fmt.Errorf("%w: unknown action type %q", ErrInvalidInput, actionType)
	}

	gameID := game.CatalogID()
	if gameID <= 0 {
		return nil, fmt.Errorf("%w: invalid game id", ErrInvalidInput)
	}

	slog.Info("processing game action", "user_id", userID, "game_id", gameID, "action", actionType)

	if actionType == models.ActionLike {
		if err := s.actions.Delete(userID, gameID, models.ActionDislike); err != nil {
			return nil, err
		}
	} else if actionType == models.ActionDislike {
		if err := s.actions.Delete(userID, gameID, models.ActionLike); err != nil {
			return nil, err
		}
	}

	return s.actions.Upsert(s.buildAction(userID, gameID, game, actionType))
}

// RemoveGameAction deletes the (user, game, action type) row if present.
func (s *PreferenceService) RemoveGameAction(userID, gameID int, actionType string) error {
	slog.Info("removing game action", "user_id", userID, "game_id", gameID, "action", actionType)
	return s.actions.Delete(userID, gameID, actionType)
}

// ProcessGameRating upserts the user's 1-10 rating for a game.
func (s *PreferenceService) ProcessGameRating(userID int, game models.GameSnapshot, rating int) (*models.UserGameAction, error) {
	if rating < 1 || rating > 10 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 10", ErrInvalidInput)
	}
	gameID := game.CatalogID()
	if gameID <= 0 {
		return nil, fmt.Errorf("%w: invalid game id", ErrInvalidInput)
	}

	action := s.buildAction(userID, gameID, game, models.ActionRate)
	action.Rating = &rating
	return s.actions.Upsert(action)
}

// UpdateCompletionStatus upserts the user's completion status for a game.
func (s *PreferenceService) UpdateCompletionStatus(userID int, game models.GameSnapshot, status string) (*models.UserGameAction, error) {
	if !models.ValidCompletionStatuses[status] {
		return nil, fmt.Errorf("%w: unknown completion status %q", ErrInvalidInput, status)
	}
	gameID := game.CatalogID()
	if gameID <= 0 {
		return nil, fmt.Errorf("%w: invalid game id", ErrInvalidInput)
	}

	action := s.buildAction(userID, gameID, game, models.ActionStatus)
	action.CompletionStatus = &status
	return s.actions.Upsert(action)
}

// UpdatePurchaseStatus upserts the user's purchase status for a game.
func (s *PreferenceService) UpdatePurchaseStatus(userID int, game models.GameSnapshot, purchase string) (*models.UserGameAction, error) {
	if !models.ValidPurchaseStatuses[purchase] {
		return nil, fmt.Errorf("%w: unknown purchase status %q", ErrInvalidInput, purchase)
	}
	gameID := game.CatalogID()
	if gameID <= 0 {
		return nil, fmt.Errorf("%w: invalid game id", ErrInvalidInput)
	}

	action := s.buildAction(userID, gameID, game, models.ActionPurchase)
	action.PurchaseStatus = &purchase
	return s.actions.Upsert(action)
}

// GetUserGameActions flattens everything the user did with one game into a
// single snapshot.
func (s *PreferenceService) GetUserGameActions(userID, gameID int) (models.UserGameActionsSnapshot, error) {
	result := models.NewUserGameActionsSnapshot()

	actions, err := s.actions.GetByUserAndGame(userID, gameID)
	if err != nil {
		return result, err
	}

	for _, action := range actions {
		switch action.ActionType {
		case models.ActionLike:
			result.Liked = true
		case models.ActionDislike:
			result.Disliked = true
		case models.ActionWishlist:
			result.InWishlist = true
		case models.ActionRate:
			result.Rating = action.Rating
		case models.ActionStatus:
			if action.CompletionStatus != nil {
				result.CompletionStatus = *action.CompletionStatus
			}
		case models.ActionPurchase:
			if action.PurchaseStatus != nil {
				result.PurchaseStatus = *action.PurchaseStatus
			}
		}
	}
	return result, nil
}

// GetUserGames groups the user's actions per game, enriched with whatever
// shadow-cache data happens to exist.
func (s *PreferenceService) GetUserGames(userID int) ([]models.UserGame, error) {
	actions, err := s.actions.GetByUser(userID)
	if err != nil {
		return nil, err
	}

	order := make([]int, 0)
	byGame := make(map[int]*models.UserGame)
	for _, action := range actions {
		g, ok := byGame[action.GameID]
		if !ok {
			g = &models.UserGame{ID: action.GameID, Name: action.GameName}
			byGame[action.GameID] = g
			order = append(order, action.GameID)
		}
		g.Actions = append(g.Actions, models.UserGameBadge{
			Type:             action.ActionType,
			Rating:           action.Rating,
			CompletionStatus: action.CompletionStatus,
			PurchaseStatus:   action.PurchaseStatus,
			CreatedAt:        action.CreatedAt,
		})
	}

	cached, err := s.games.GetCachedByIDs(order)
	if err != nil {
		// The cache is advisory; the library view works without it.
		slog.Warn("failed to enrich user games from cache", "error", err)
		cached = map[int]models.CachedGame{}
	}

	games := make([]models.UserGame, 0, len(order))
	for _, id := range order {
		g := byGame[id]
		if detail, ok := cached[id]; ok {
			g.BackgroundImage = detail.BackgroundImage
			g.Rating = detail.Rating
			g.Metacritic = detail.Metacritic
			g.Genres = detail.Genres
			g.Tags = detail.Tags
		}
		games = append(games, *g)
	}
	return games, nil
}

// GetUserGameRating returns the user's rating for one game, nil if none.
func (s *PreferenceService) GetUserGameRating(userID, gameID int) (*int, error) {
	return s.actions.GetRating(userID, gameID)
}

// GetUserAverageRating returns the mean of all the user's ratings.
func (s *PreferenceService) GetUserAverageRating(userID int) (float64, error) {
	return s.actions.GetAverageRating(userID)
}

// GetUserPreferences returns the aggregated preference vectors for a user.
//
// Aggregation from raw actions is not implemented; this returns an empty
// preferences object and recommendations fall back to popularity until the
// preference tables are populated.
func (s *PreferenceService) GetUserPreferences(userID int) models.UserPreferences {
	return models.UserPreferences{
		UserID:      userID,
		Preferences: map[string]any{},
	}
}

func (s *PreferenceService) buildAction(userID, gameID int, game models.GameSnapshot, actionType string) *models.UserGameAction {
	return &models.UserGameAction{
		UserID:     userID,
		GameID:     gameID,
		GameName:   game.Name,
		ActionType: actionType,
		Genres:     marshalRefs(game.Genres),
		Tags:       marshalRefs(game.Tags),
	}
}

func marshalRefs(refs []models.NamedRef) json.RawMessage {
	if refs == nil {
		refs = []models.NamedRef{}
	}
	data, err := json.Marshal(refs)
	if err != nil {
		return json.RawMessage("[]")
	}
	return data
}
