package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkh1n/play-pulse/internal/config"
	"github.com/mkh1n/play-pulse/internal/models"
	"github.com/mkh1n/play-pulse/internal/repository"
)

var testJWT = config.JWTConfig{Secret: "test-secret", TTLMinutes: 60}

var userRowColumns = []string{"id", "login", "username", "password_hash", "created_at", "updated_at"}

var profileRowColumns = []string{
	"id", "user_id", "avatar_url", "bio", "preferred_language",
	"total_likes", "total_dislikes", "total_games_added", "created_at", "updated_at",
}

func newAuthService(t *testing.T) (*AuthService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewAuthService(repository.NewUserRepository(db), testJWT), mock
}

func userRow(id int, login, hash string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userRowColumns).AddRow(id, login, login, hash, now, now)
}

func profileRow(userID int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(profileRowColumns).AddRow(
		1, userID, "", "", "ru", 0, 0, 0, now, now,
	)
}

func TestRegisterIssuesValidToken(t *testing.T) {
	svc, mock := newAuthService(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE login`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userRowColumns))
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(userRow(7, "alice", "hash"))
	mock.ExpectQuery(`INSERT INTO user_profiles`).
		WillReturnRows(profileRow(7))

	resp, err := svc.Register(models.RegisterRequest{Login: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.User.Login)
	assert.NotEmpty(t, resp.Token)

	claims, err := svc.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "alice", claims.Login)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(models.RegisterRequest{Login: "alice", Password: "12345"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterLoginTaken(t *testing.T) {
	svc, mock := newAuthService(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE login`).
		WithArgs("alice").
		WillReturnRows(userRow(7, "alice", "hash"))

	_, err := svc.Register(models.RegisterRequest{Login: "alice", Password: "secret123"})
	assert.ErrorIs(t, err, ErrLoginTaken)
	assert.Equal(t, "Пользователь с таким логином уже существует", ErrLoginTaken.Error())
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mock := newAuthService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE login`).
		WithArgs("alice").
		WillReturnRows(userRow(7, "alice", string(hash)))

	_, err = svc.Login(models.LoginRequest{Login: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUserSameError(t *testing.T) {
	svc, mock := newAuthService(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE login`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := svc.Login(models.LoginRequest{Login: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Неверный логин или пароль", ErrInvalidCredentials.Error())
}

func TestLoginSuccess(t *testing.T) {
	svc, mock := newAuthService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE login`).
		WithArgs("alice").
		WillReturnRows(userRow(7, "alice", string(hash)))

	resp, err := svc.Login(models.LoginRequest{Login: "alice", Password: "correct-password"})
	require.NoError(t, err)

	claims, err := svc.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	svc, _ := newAuthService(t)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": float64(7),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = svc.ParseToken(signed)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	svc, _ := newAuthService(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": float64(7),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte(testJWT.Secret))
	require.NoError(t, err)

	_, err = svc.ParseToken(signed)
	assert.Error(t, err)
}

func TestParseTokenRejectsNoneAlgorithm(t *testing.T) {
	svc, _ := newAuthService(t)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": float64(7),
	})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ParseToken(signed)
	assert.Error(t, err)
}
