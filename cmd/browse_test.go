package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/cinetrack/config"
	"github.com/s0up4200/cinetrack/filter"
	"github.com/s0up4200/cinetrack/movie"
	"github.com/s0up4200/cinetrack/preferences"
	"github.com/s0up4200/cinetrack/session"
	"github.com/s0up4200/cinetrack/tmdb"
)

// stubCatalog answers synchronously from fixed data
type stubCatalog struct {
	popular []movie.Movie
	search  map[string][]movie.Movie
	details map[int]movie.Detail
	err     error
}

func (c *stubCatalog) FetchPopular(ctx context.Context) ([]movie.Movie, error) {
	return c.popular, c.err
}

func (c *stubCatalog) Search(ctx context.Context, query string) ([]movie.Movie, error) {
	return c.search[query], c.err
}

func (c *stubCatalog) FetchDetail(ctx context.Context, id int) (movie.Detail, error) {
	d, ok := c.details[id]
	if !ok {
		return movie.Detail{}, &tmdb.Error{Kind: tmdb.KindNetwork, Op: "detail", Err: &tmdb.APIError{StatusCode: 404, Message: "The resource you requested could not be found."}}
	}
	return d, nil
}

func newStubCatalog() *stubCatalog {
	heat := movie.Movie{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15", VoteAverage: 7.9}
	ronin := movie.Movie{ID: 8195, Title: "Ronin", ReleaseDate: "1998-09-25", VoteAverage: 6.9}

	return &stubCatalog{
		popular: []movie.Movie{heat, ronin},
		search:  map[string][]movie.Movie{"heat": {heat}},
		details: map[int]movie.Detail{
			949:  {Movie: heat, Genres: []movie.Genre{{ID: 80, Name: "Crime"}, {ID: 18, Name: "Drama"}}},
			8195: {Movie: ronin, Genres: []movie.Genre{{ID: 28, Name: "Action"}}},
		},
	}
}

func runBrowser(t *testing.T, catalog session.Catalog, script string) string {
	t.Helper()

	prefs := preferences.NewStore(zerolog.Nop())
	s := session.New(catalog, prefs, zerolog.Nop())
	t.Cleanup(s.Close)

	manager := filter.NewManager()
	require.NoError(t, manager.RegisterFilters(map[string]string{"top": "Rating >= 7.5"}))

	var out bytes.Buffer
	b := &browser{
		sess:      s,
		favorites: prefs.FavoriteIDs,
		filters:   manager,
		formatter: movie.NewConsoleFormatter(),
		options:   movie.FormatOptions{ShowNotes: true},
		out:       &out,
		logger:    zerolog.Nop(),
	}

	require.NoError(t, b.run(context.Background(), strings.NewReader(script)))
	return out.String()
}

func TestBrowsePopularAndFavorites(t *testing.T) {
	out := runBrowser(t, newStubCatalog(), strings.Join([]string{
		"list",
		"popular",
		"fav 8195",
		"list",
		"favorites",
		"fav 8195",
		"favorites",
		"quit",
	}, "\n"))

	assert.Contains(t, out, "Nothing loaded yet")
	assert.Contains(t, out, "Popular movies (2):")
	assert.Contains(t, out, "★ Added 8195 to favorites")
	assert.Contains(t, out, "Ronin (1998) ★")
	assert.Contains(t, out, "Favorites (1):")
	assert.Contains(t, out, "Removed 8195 from favorites")
	assert.Contains(t, out, "No favorites yet")
}

func TestBrowseSearchNoteAndDetail(t *testing.T) {
	out := runBrowser(t, newStubCatalog(), strings.Join([]string{
		"search heat",
		"note 949 best heist movie",
		"list",
		"detail 949",
		"detail 42",
		"note 949",
		"search   ",
	}, "\n"))

	assert.Contains(t, out, `Results for "heat" (1):`)
	assert.Contains(t, out, "Note saved for 949")
	assert.Contains(t, out, "Note: best heist movie")
	assert.Contains(t, out, "Genres:    Crime, Drama")
	assert.Contains(t, out, "Note:      best heist movie")
	assert.Contains(t, out, "Error: tmdb detail: network")
	assert.Contains(t, out, "Note cleared for 949")
	assert.Contains(t, out, "Popular movies (2):")
}

func TestBrowseFilter(t *testing.T) {
	out := runBrowser(t, newStubCatalog(), strings.Join([]string{
		"filter top",
		"popular",
		"filter Rating >",
		"filter",
		"list",
	}, "\n"))

	assert.Contains(t, out, "Filter set: Rating >= 7.5")
	assert.Contains(t, out, "Popular movies (1):")
	assert.Contains(t, out, "compilation error")
	assert.Contains(t, out, "Filter cleared")
	assert.Contains(t, out, "Popular movies (2):")
}

func TestBrowseFailureKeepsPreviousResults(t *testing.T) {
	catalog := newStubCatalog()
	prefs := preferences.NewStore(zerolog.Nop())
	s := session.New(catalog, prefs, zerolog.Nop())
	defer s.Close()

	var out bytes.Buffer
	b := &browser{
		sess:      s,
		favorites: prefs.FavoriteIDs,
		filters:   filter.NewManager(),
		formatter: movie.NewConsoleFormatter(),
		out:       &out,
		logger:    zerolog.Nop(),
	}

	require.NoError(t, b.run(context.Background(), strings.NewReader("popular\n")))

	catalog.err = &tmdb.Error{Kind: tmdb.KindNetwork, Op: "search", Err: errors.New("connection refused")}
	out.Reset()
	require.NoError(t, b.run(context.Background(), strings.NewReader("search ronin\n")))

	assert.Contains(t, out.String(), `Error: search for "ronin" failed`)
	assert.Contains(t, out.String(), "Previous results (2):")
}

func TestBrowseInvalidInput(t *testing.T) {
	out := runBrowser(t, newStubCatalog(), strings.Join([]string{
		"fav abc",
		"fav -3",
		"note",
		"dance",
		"help",
	}, "\n"))

	assert.Contains(t, out, `Invalid movie id "abc"`)
	assert.Contains(t, out, `Invalid movie id "-3"`)
	assert.Contains(t, out, "Usage: note <id> <text>")
	assert.Contains(t, out, `Unknown command "dance"`)
	assert.Contains(t, out, "favorites          show all favorites")
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	previous := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(previous)

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			setupLogger(config.LoggingConfig{Level: tt.level, Format: "json"})
			assert.Equal(t, tt.expected, zerolog.GlobalLevel())
		})
	}
}
