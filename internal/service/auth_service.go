package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkh1n/play-pulse/internal/config"
	"github.com/mkh1n/play-pulse/internal/models"
	"github.com/mkh1n/play-pulse/internal/repository"
)

const bcryptCost = 10

// AuthService handles registration, login and token validation.
type AuthService struct {
	users *repository.UserRepository
	cfg   config.JWTConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *repository.UserRepository, cfg config.JWTConfig) *AuthService {
	return &AuthService{users: users, cfg: cfg}
}

// TokenClaims is the identity carried inside an access token.
type TokenClaims struct {
	UserID   int
	Login    string
	Username string
}

// Register creates an account plus its default profile and issues a token.
func (s *AuthService) Register(req models.RegisterRequest) (*models.AuthResponse, error) {
	if req.Login == "" || len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: login is required and password must be at least 6 characters", ErrInvalidInput)
	}

	existing, err := s.users.FindByLogin(req.Login)
	if err != nil {
		return nil, fmt.Errorf("lookup login: %w", err)
	}
	if existing != nil {
		return nil, ErrLoginTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(req.Login, req.Login, string(hash))
	if err != nil {
		return nil, err
	}

	if _, err := s.users.UpsertProfile(&models.UserProfile{
		UserID:            user.ID,
		PreferredLanguage: "ru",
	}); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: *user, Token: token}, nil
}

// Login verifies credentials and issues a token. Wrong login and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.FindByLogin(req.Login)
	if err != nil {
		return nil, fmt.Errorf("lookup login: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: *user, Token: token}, nil
}

// ParseToken validates a bearer token and returns the embedded identity.
func (s *AuthService) ParseToken(tokenStr string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid token subject")
	}
	login, _ := claims["login"].(string)
	username, _ := claims["username"].(string)

	return &TokenClaims{UserID: int(sub), Login: login, Username: username}, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      float64(user.ID),
		"login":    user.Login,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(time.Duration(s.cfg.TTLMinutes) * time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
