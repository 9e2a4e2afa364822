// Package preferences keeps the user's per-movie overlays (favorite flag and
// personal note) in memory. Nothing is persisted across process restarts.
package preferences

import (
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/cinetrack/movie"
)

// Store maps movie IDs to overlays. Entries are created on first mutation only.
type Store struct {
	mu       sync.RWMutex
	overlays map[int]movie.Overlay
	logger   zerolog.Logger
}

// NewStore creates an empty store
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		overlays: make(map[int]movie.Overlay),
		logger:   logger,
	}
}

// Get returns the overlay for id, or the default overlay when none exists.
// It never inserts an entry.
func (s *Store) Get(id int) movie.Overlay {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.overlays[id]
}

// ToggleFavorite flips the favorite flag for id and returns the resulting overlay.
// An absent overlay is created as a favorite.
func (s *Store) ToggleFavorite(id int) movie.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()

	overlay, exists := s.overlays[id]
	if !exists {
		overlay = movie.Overlay{Favorite: true}
	} else {
		overlay.Favorite = !overlay.Favorite
	}
	s.overlays[id] = overlay

	s.logger.Debug().
		Int("movie_id", id).
		Bool("favorite", overlay.Favorite).
		Msg("Toggled favorite")

	return overlay
}

// SetNote stores a personal note for id, creating the overlay if needed
func (s *Store) SetNote(id int, note string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	overlay := s.overlays[id]
	overlay.Note = note
	s.overlays[id] = overlay

	s.logger.Debug().Int("movie_id", id).Int("note_length", len(note)).Msg("Updated note")
}

// Overlays returns a copy of every stored overlay
func (s *Store) Overlays() map[int]movie.Overlay {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.overlays)
}

// FavoriteIDs returns the IDs currently marked favorite, in ascending order
func (s *Store) FavoriteIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, len(s.overlays))
	for id, overlay := range s.overlays {
		if overlay.Favorite {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of stored overlays
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.overlays)
}
