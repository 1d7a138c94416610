package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkh1n/play-pulse/internal/models"
	"github.com/mkh1n/play-pulse/internal/repository"
)

func newUserService(t *testing.T) (*UserService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewUserService(
		repository.NewUserRepository(db),
		repository.NewActionRepository(db),
	)
	return svc, mock
}

func TestGetMeUnknownUser(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := svc.GetMe(404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfileChangesUsername(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(7).
		WillReturnRows(userRow(7, "alice", "hash"))
	mock.ExpectExec(`UPDATE users SET username`).
		WithArgs("wanderer", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .+ FROM user_profiles`).
		WithArgs(7).
		WillReturnRows(profileRow(7))
	mock.ExpectQuery(`INSERT INTO user_profiles`).
		WillReturnRows(profileRow(7))

	username := "wanderer"
	bio := "collector of roguelikes"
	_, err := svc.UpdateProfile(7, models.UpdateProfileRequest{
		Username: &username,
		Bio:      &bio,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileSameUsernameSkipsUpdate(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(7).
		WillReturnRows(userRow(7, "alice", "hash"))
	mock.ExpectQuery(`SELECT .+ FROM user_profiles`).
		WithArgs(7).
		WillReturnRows(profileRow(7))
	mock.ExpectQuery(`INSERT INTO user_profiles`).
		WillReturnRows(profileRow(7))

	same := "alice"
	_, err := svc.UpdateProfile(7, models.UpdateProfileRequest{Username: &same})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserStats(t *testing.T) {
	svc, mock := newUserService(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(7).
		WillReturnRows(userRow(7, "alice", "hash"))
	mock.ExpectQuery(`SELECT .+ FROM user_profiles`).
		WithArgs(7).
		WillReturnRows(profileRow(7))
	mock.ExpectQuery(`SELECT .+ FROM user_game_actions`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(actionRowColumns).
			AddRow(1, 7, 3498, "GTA V", models.ActionLike,
				nil, nil, nil, []byte("[]"), []byte("[]"), now, now).
			AddRow(2, 7, 3328, "The Witcher 3", models.ActionRate,
				9, nil, nil, []byte("[]"), []byte("[]"), now, now))
	mock.ExpectQuery(`SELECT AVG\(rating\) FROM user_game_actions`).
		WithArgs(7, models.ActionRate).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(9.0))

	stats, err := svc.GetUserStats(7)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.UserID)
	assert.Equal(t, "alice", stats.Username)
	assert.Equal(t, 2, stats.TotalActions)
	assert.InDelta(t, 9.0, stats.AverageRating, 1e-9)
	require.NotNil(t, stats.Profile)
}

func TestGetPublicProfileWithoutProfileRow(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(7).
		WillReturnRows(userRow(7, "alice", "hash"))
	mock.ExpectQuery(`SELECT .+ FROM user_profiles`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(profileRowColumns))

	public, err := svc.GetPublicProfile(7)
	require.NoError(t, err)
	assert.Equal(t, "alice", public.Username)
	assert.Empty(t, public.AvatarURL)
}
