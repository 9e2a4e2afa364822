package preferences

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/s0up4200/cinetrack/movie"
)

func TestGetDoesNotCreateEntry(t *testing.T) {
	store := NewStore(zerolog.Nop())

	overlay := store.Get(42)

	assert.Equal(t, movie.Overlay{Favorite: false, Note: ""}, overlay)
	assert.Equal(t, 0, store.Len())
	_, exists := store.Overlays()[42]
	assert.False(t, exists)
}

func TestToggleFavorite(t *testing.T) {
	t.Run("absent id becomes favorite", func(t *testing.T) {
		store := NewStore(zerolog.Nop())

		overlay := store.ToggleFavorite(7)
		assert.True(t, overlay.Favorite)
		assert.True(t, store.Get(7).Favorite)
	})

	t.Run("double toggle restores original value", func(t *testing.T) {
		store := NewStore(zerolog.Nop())

		original := store.Get(7).Favorite
		store.ToggleFavorite(7)
		overlay := store.ToggleFavorite(7)
		assert.Equal(t, original, overlay.Favorite)
		assert.Equal(t, original, store.Get(7).Favorite)
	})

	t.Run("toggle keeps note", func(t *testing.T) {
		store := NewStore(zerolog.Nop())

		store.SetNote(3, "watch with subtitles")
		overlay := store.ToggleFavorite(3)
		assert.True(t, overlay.Favorite)
		assert.Equal(t, "watch with subtitles", overlay.Note)
	})
}

func TestSetNote(t *testing.T) {
	store := NewStore(zerolog.Nop())

	store.SetNote(5, "great score")
	assert.Equal(t, movie.Overlay{Note: "great score"}, store.Get(5))
	assert.Equal(t, 1, store.Len())

	store.SetNote(5, "")
	assert.Equal(t, movie.Overlay{}, store.Get(5))
	assert.Equal(t, 1, store.Len(), "cleared overlays stay enumerated")
}

func TestFavoriteIDs(t *testing.T) {
	store := NewStore(zerolog.Nop())

	store.ToggleFavorite(9)
	store.ToggleFavorite(2)
	store.ToggleFavorite(5)
	store.ToggleFavorite(5)
	store.SetNote(1, "note only")

	assert.Equal(t, []int{2, 9}, store.FavoriteIDs())
}

func TestOverlaysReturnsCopy(t *testing.T) {
	store := NewStore(zerolog.Nop())
	store.ToggleFavorite(1)

	snapshot := store.Overlays()
	snapshot[1] = movie.Overlay{}
	snapshot[2] = movie.Overlay{Favorite: true}

	assert.True(t, store.Get(1).Favorite)
	assert.Equal(t, 1, store.Len())
}

func TestConcurrentToggles(t *testing.T) {
	store := NewStore(zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.ToggleFavorite(1)
		}()
	}
	wg.Wait()

	// an even number of toggles leaves the flag unset
	assert.False(t, store.Get(1).Favorite)
}
