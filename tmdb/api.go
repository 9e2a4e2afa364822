package tmdb

import (
	"context"

	"github.com/s0up4200/cinetrack/movie"
)

// API defines the catalog operations backed by TMDB
type API interface {
	// FetchPopular retrieves the current popular movies list
	FetchPopular(ctx context.Context) ([]movie.Movie, error)

	// Search retrieves movies matching a free-text query
	Search(ctx context.Context, query string) ([]movie.Movie, error)

	// FetchDetail retrieves the full record for a single movie
	FetchDetail(ctx context.Context, id int) (movie.Detail, error)
}

var _ API = (*Client)(nil)
