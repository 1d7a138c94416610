package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkh1n/play-pulse/internal/models"
	"github.com/mkh1n/play-pulse/internal/repository"
)

// UserService handles profile reads and updates.
type UserService struct {
	users   *repository.UserRepository
	actions *repository.ActionRepository
}

// NewUserService creates a new UserService.
func NewUserService(users *repository.UserRepository, actions *repository.ActionRepository) *UserService {
	return &UserService{users: users, actions: actions}
}

// Me is the authenticated user's own view.
type Me struct {
	User    models.User         `json:"user"`
	Profile *models.UserProfile `json:"profile"`
}

// UserStats is the public statistics view of a user.
type UserStats struct {
	UserID        int                 `json:"userId"`
	Username      string              `json:"username"`
	JoinedAt      string              `json:"joinedAt"`
	Profile       *models.UserProfile `json:"profile"`
	TotalActions  int                 `json:"totalActions"`
	AverageRating float64             `json:"averageRating"`
}

// GetMe returns the caller's account plus profile.
func (s *UserService) GetMe(userID int) (*Me, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.users.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	return &Me{User: *user, Profile: profile}, nil
}

// UpdateProfile applies the provided fields to the caller's profile,
// creating it when absent.
func (s *UserService) UpdateProfile(userID int, req models.UpdateProfileRequest) (*models.UserProfile, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != "" && *req.Username != user.Username {
		if err := s.users.UpdateUsername(userID, *req.Username); err != nil {
			return nil, err
		}
	}

	profile, err := s.users.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &models.UserProfile{UserID: userID, PreferredLanguage: "ru"}
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.PreferredLanguage != nil && *req.PreferredLanguage != "" {
		profile.PreferredLanguage = *req.PreferredLanguage
	}

	return s.users.UpsertProfile(profile)
}

// GetPublicProfile returns the unauthenticated view of a user.
func (s *UserService) GetPublicProfile(userID int) (*models.PublicProfile, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}
	public := &models.PublicProfile{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
	profile, err := s.users.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		public.AvatarURL = profile.AvatarURL
		public.Bio = profile.Bio
	}
	return public, nil
}

// GetUserStats returns aggregate statistics for a user.
func (s *UserService) GetUserStats(userID int) (*UserStats, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.users.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	actions, err := s.actions.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	avg, err := s.actions.GetAverageRating(userID)
	if err != nil {
		return nil, err
	}

	return &UserStats{
		UserID:        user.ID,
		Username:      user.Username,
		JoinedAt:      user.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Profile:       profile,
		TotalActions:  len(actions),
		AverageRating: avg,
	}, nil
}

func (s *UserService) findUser(userID int) (*models.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}
	return user, nil
}
