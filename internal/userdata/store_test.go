package userdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "userdata.json"))
	require.NoError(t, err)
	return s
}

func TestMediaKeyRoundTrip(t *testing.T) {
	key := MediaKey("game", 3498)
	assert.Equal(t, "game_3498", key)

	mediaType, id, err := ParseMediaKey(key)
	require.NoError(t, err)
	assert.Equal(t, "game", mediaType)
	assert.Equal(t, 3498, id)

	// Types containing underscores still parse on the last separator.
	mediaType, id, err = ParseMediaKey("tv_show_42")
	require.NoError(t, err)
	assert.Equal(t, "tv_show", mediaType)
	assert.Equal(t, 42, id)

	_, _, err = ParseMediaKey("garbage")
	assert.Error(t, err)
	_, _, err = ParseMediaKey("game_abc")
	assert.Error(t, err)
}

func TestToggleFlipsMembership(t *testing.T) {
	s := newStore(t)
	key := MediaKey("game", 1)

	on, err := s.ToggleFavorite(key)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, s.IsFavorite(key))

	off, err := s.ToggleFavorite(key)
	require.NoError(t, err)
	assert.False(t, off)
	assert.False(t, s.IsFavorite(key))
}

func TestRatingClamped(t *testing.T) {
	s := newStore(t)
	key := MediaKey("game", 1)

	require.NoError(t, s.SetRating(key, 15))
	r, ok := s.Rating(key)
	require.True(t, ok)
	assert.Equal(t, 10, r)

	require.NoError(t, s.SetRating(key, -3))
	r, _ = s.Rating(key)
	assert.Equal(t, 1, r)

	require.NoError(t, s.RemoveRating(key))
	_, ok = s.Rating(key)
	assert.False(t, ok)
}

func TestEmptyNoteDeletes(t *testing.T) {
	s := newStore(t)
	key := MediaKey("game", 1)

	require.NoError(t, s.SetNote(key, "replay on hard mode"))
	note, ok := s.Note(key)
	require.True(t, ok)
	assert.Equal(t, "replay on hard mode", note)

	require.NoError(t, s.SetNote(key, "   "))
	_, ok = s.Note(key)
	assert.False(t, ok)
}

func TestStatsRecomputed(t *testing.T) {
	s := newStore(t)

	_, _ = s.ToggleFavorite(MediaKey("game", 1))
	_, _ = s.ToggleFavorite(MediaKey("game", 2))
	_, _ = s.ToggleWatchlist(MediaKey("game", 3))
	require.NoError(t, s.SetRating(MediaKey("game", 1), 8))
	require.NoError(t, s.SetRating(MediaKey("game", 2), 6))

	st := s.Stats()
	assert.Equal(t, 2, st.FavoriteCount)
	assert.Equal(t, 1, st.WatchlistCount)
	assert.Equal(t, 2, st.RatingCount)
	assert.InDelta(t, 7.0, st.AverageRating, 1e-9)

	require.NoError(t, s.RemoveRating(MediaKey("game", 2)))
	st = s.Stats()
	assert.Equal(t, 1, st.RatingCount)
	assert.InDelta(t, 8.0, st.AverageRating, 1e-9)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "userdata.json")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.ToggleWatched(MediaKey("game", 5))
	require.NoError(t, err)
	require.NoError(t, s.SetRating(MediaKey("game", 5), 9))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.True(t, reopened.IsWatched(MediaKey("game", 5)))
	r, ok := reopened.Rating(MediaKey("game", 5))
	require.True(t, ok)
	assert.Equal(t, 9, r)
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "userdata.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newStore(t)
	_, _ = s.ToggleFavorite(MediaKey("game", 1))
	require.NoError(t, s.SetRating(MediaKey("game", 1), 7))
	require.NoError(t, s.SetNote(MediaKey("game", 1), "great soundtrack"))
	require.NoError(t, s.CacheMedia(MediaEntry{MediaType: "game", ID: 1, Title: "Hades"}))

	backup := s.Export()
	assert.Equal(t, dataVersion, backup.Version)
	assert.False(t, backup.ExportedAt.IsZero())

	// Import into a fresh store replaces everything.
	fresh := newStore(t)
	_, _ = fresh.ToggleWatchlist(MediaKey("game", 99))
	require.NoError(t, fresh.Import(backup))

	assert.True(t, fresh.IsFavorite(MediaKey("game", 1)))
	assert.False(t, fresh.InWatchlist(MediaKey("game", 99)))
	r, ok := fresh.Rating(MediaKey("game", 1))
	require.True(t, ok)
	assert.Equal(t, 7, r)
	entry, ok := fresh.Media(MediaKey("game", 1))
	require.True(t, ok)
	assert.Equal(t, "Hades", entry.Title)
	assert.False(t, entry.AddedAt.IsZero())
}

func TestImportClampsRatings(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Import(BackupData{
		Version: dataVersion,
		Ratings: map[string]int{"game_1": 99, "game_2": 0},
	}))

	r, _ := s.Rating("game_1")
	assert.Equal(t, 10, r)
	r, _ = s.Rating("game_2")
	assert.Equal(t, 1, r)
}

func TestKeysSorted(t *testing.T) {
	s := newStore(t)
	for _, id := range []int{30, 4, 17} {
		_, err := s.ToggleFavorite(MediaKey("game", id))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"game_17", "game_30", "game_4"}, s.FavoriteKeys())
}
