// Package userdata holds browser-style local user state as an explicit
// store around a JSON document: favorites, watched, watchlist, ratings
// and notes keyed by media entry, with derived statistics.
package userdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	dataVersion = 1

	minRating = 1
	maxRating = 10
)

// MediaKey identifies one catalog entry, e.g. "game_3498".
func MediaKey(mediaType string, id int) string {
	return fmt.Sprintf("%s_%d", mediaType, id)
}

// ParseMediaKey splits a media key back into its type and id.
func ParseMediaKey(key string) (mediaType string, id int, err error) {
	idx := strings.LastIndex(key, "_")
	if idx <= 0 {
		return "", 0, fmt.Errorf("invalid media key %q", key)
	}
	id, err = strconv.Atoi(key[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid media key %q: %w", key, err)
	}
	return key[:idx], id, nil
}

// MediaEntry is a cached snapshot of a catalog item the user touched.
type MediaEntry struct {
	Key       string    `json:"key"`
	MediaType string    `json:"mediaType"`
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	PosterURL string    `json:"posterUrl,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
}

// Stats is the derived aggregate view over the whole store.
type Stats struct {
	FavoriteCount  int     `json:"favoriteCount"`
	WatchedCount   int     `json:"watchedCount"`
	WatchlistCount int     `json:"watchlistCount"`
	RatingCount    int     `json:"ratingCount"`
	NoteCount      int     `json:"noteCount"`
	AverageRating  float64 `json:"averageRating"`
}

// BackupData is the single-document export/import format.
type BackupData struct {
	Version    int                   `json:"version"`
	ExportedAt time.Time             `json:"exportedAt"`
	Favorites  map[string]bool       `json:"favorites"`
	Watched    map[string]bool       `json:"watched"`
	Watchlist  map[string]bool       `json:"watchlist"`
	Ratings    map[string]int        `json:"ratings"`
	Notes      map[string]string     `json:"notes"`
	Media      map[string]MediaEntry `json:"media"`
}

type document struct {
	Version   int                   `json:"version"`
	Favorites map[string]bool       `json:"favorites"`
	Watched   map[string]bool       `json:"watched"`
	Watchlist map[string]bool       `json:"watchlist"`
	Ratings   map[string]int        `json:"ratings"`
	Notes     map[string]string     `json:"notes"`
	Media     map[string]MediaEntry `json:"media"`
}

func emptyDocument() document {
	return document{
		Version:   dataVersion,
		Favorites: map[string]bool{},
		Watched:   map[string]bool{},
		Watchlist: map[string]bool{},
		Ratings:   map[string]int{},
		Notes:     map[string]string{},
		Media:     map[string]MediaEntry{},
	}
}

// Store is the explicit replacement for a hidden persisted singleton.
// Callers construct it, pass it around, and every mutation saves.
type Store struct {
	mu   sync.RWMutex
	path string
	doc  document
}

// Open loads the store from path, starting empty when the file does not
// exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: emptyDocument()}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user data: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse user data: %w", err)
	}
	normalizeDocument(&doc)
	s.doc = doc
	return s, nil
}

func normalizeDocument(doc *document) {
	if doc.Version == 0 {
		doc.Version = dataVersion
	}
	if doc.Favorites == nil {
		doc.Favorites = map[string]bool{}
	}
	if doc.Watched == nil {
		doc.Watched = map[string]bool{}
	}
	if doc.Watchlist == nil {
		doc.Watchlist = map[string]bool{}
	}
	if doc.Ratings == nil {
		doc.Ratings = map[string]int{}
	}
	if doc.Notes == nil {
		doc.Notes = map[string]string{}
	}
	if doc.Media == nil {
		doc.Media = map[string]MediaEntry{}
	}
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user data: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write user data: %w", err)
	}
	return nil
}

// ToggleFavorite flips favorite membership and returns the new state.
func (s *Store) ToggleFavorite(key string) (bool, error) {
	return s.toggle(favorites, key)
}

// ToggleWatched flips watched membership and returns the new state.
func (s *Store) ToggleWatched(key string) (bool, error) {
	return s.toggle(watched, key)
}

// ToggleWatchlist flips watchlist membership and returns the new state.
func (s *Store) ToggleWatchlist(key string) (bool, error) {
	return s.toggle(watchlist, key)
}

type collection func(*document) map[string]bool

func favorites(d *document) map[string]bool { return d.Favorites }
func watched(d *document) map[string]bool   { return d.Watched }
func watchlist(d *document) map[string]bool { return d.Watchlist }

func (s *Store) toggle(col collection, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := col(&s.doc)
	if m[key] {
		delete(m, key)
	} else {
		m[key] = true
	}
	if err := s.save(); err != nil {
		return false, err
	}
	return m[key], nil
}

// IsFavorite reports favorite membership.
func (s *Store) IsFavorite(key string) bool { return s.contains(favorites, key) }

// IsWatched reports watched membership.
func (s *Store) IsWatched(key string) bool { return s.contains(watched, key) }

// InWatchlist reports watchlist membership.
func (s *Store) InWatchlist(key string) bool { return s.contains(watchlist, key) }

func (s *Store) contains(col collection, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return col(&s.doc)[key]
}

// SetRating stores a rating for the entry, clamped to [1, 10].
func (s *Store) SetRating(key string, rating int) error {
	if rating < minRating {
		rating = minRating
	}
	if rating > maxRating {
		rating = maxRating
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Ratings[key] = rating
	return s.save()
}

// RemoveRating deletes the entry's rating. Missing ratings are fine.
func (s *Store) RemoveRating(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.doc.Ratings, key)
	return s.save()
}

// Rating returns the stored rating, or ok=false when absent.
func (s *Store) Rating(key string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.doc.Ratings[key]
	return r, ok
}

// SetNote stores a free-text note. An empty note deletes the entry.
func (s *Store) SetNote(key, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(note) == "" {
		delete(s.doc.Notes, key)
	} else {
		s.doc.Notes[key] = note
	}
	return s.save()
}

// Note returns the stored note, or ok=false when absent.
func (s *Store) Note(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.doc.Notes[key]
	return n, ok
}

// CacheMedia remembers a catalog snapshot for an entry the user touched.
func (s *Store) CacheMedia(entry MediaEntry) error {
	if entry.Key == "" {
		entry.Key = MediaKey(entry.MediaType, entry.ID)
	}
	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Media[entry.Key] = entry
	return s.save()
}

// Media returns the cached snapshot for a key, or ok=false when absent.
func (s *Store) Media(key string) (MediaEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.doc.Media[key]
	return m, ok
}

// FavoriteKeys returns the favorite keys in sorted order.
func (s *Store) FavoriteKeys() []string { return s.keys(favorites) }

// WatchedKeys returns the watched keys in sorted order.
func (s *Store) WatchedKeys() []string { return s.keys(watched) }

// WatchlistKeys returns the watchlist keys in sorted order.
func (s *Store) WatchlistKeys() []string { return s.keys(watchlist) }

func (s *Store) keys(col collection) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := col(&s.doc)
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Stats recomputes the aggregate view from current contents.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		FavoriteCount:  len(s.doc.Favorites),
		WatchedCount:   len(s.doc.Watched),
		WatchlistCount: len(s.doc.Watchlist),
		RatingCount:    len(s.doc.Ratings),
		NoteCount:      len(s.doc.Notes),
	}
	if len(s.doc.Ratings) > 0 {
		sum := 0
		for _, r := range s.doc.Ratings {
			sum += r
		}
		st.AverageRating = float64(sum) / float64(len(s.doc.Ratings))
	}
	return st
}

// Export snapshots the whole store into a portable document.
func (s *Store) Export() BackupData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return BackupData{
		Version:    s.doc.Version,
		ExportedAt: time.Now().UTC(),
		Favorites:  copyBoolMap(s.doc.Favorites),
		Watched:    copyBoolMap(s.doc.Watched),
		Watchlist:  copyBoolMap(s.doc.Watchlist),
		Ratings:    copyIntMap(s.doc.Ratings),
		Notes:      copyStringMap(s.doc.Notes),
		Media:      copyMediaMap(s.doc.Media),
	}
}

// Import replaces the store contents with the backup document.
func (s *Store) Import(backup BackupData) error {
	doc := document{
		Version:   backup.Version,
		Favorites: copyBoolMap(backup.Favorites),
		Watched:   copyBoolMap(backup.Watched),
		Watchlist: copyBoolMap(backup.Watchlist),
		Ratings:   copyIntMap(backup.Ratings),
		Notes:     copyStringMap(backup.Notes),
		Media:     copyMediaMap(backup.Media),
	}
	normalizeDocument(&doc)
	for k, r := range doc.Ratings {
		if r < minRating {
			doc.Ratings[k] = minRating
		} else if r > maxRating {
			doc.Ratings[k] = maxRating
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	return s.save()
}

func copyBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		if v {
			out[k] = true
		}
	}
	return out
}

func copyIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyMediaMap(m map[string]MediaEntry) map[string]MediaEntry {
	out := make(map[string]MediaEntry, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
