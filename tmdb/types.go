package tmdb

import (
	"errors"
	"fmt"

	"github.com/s0up4200/cinetrack/movie"
)

var (
	errMissingResults = errors.New("response has no results field")
	errMissingID      = errors.New("movie has no id")
	errMissingTitle   = errors.New("movie has no title")
)

// listResponse models the paginated list payload of /movie/popular and /search/movie
type listResponse struct {
	Page         int          `json:"page"`
	Results      *[]wireMovie `json:"results"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
}

// wireMovie mirrors movie.Movie with pointers on the fields that must be present
type wireMovie struct {
	ID          *int    `json:"id"`
	Title       *string `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  *string `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
}

// wireDetail mirrors movie.Detail
type wireDetail struct {
	wireMovie
	Genres []movie.Genre `json:"genres"`
}

func (w wireMovie) toMovie() (movie.Movie, error) {
	if w.ID == nil {
		return movie.Movie{}, errMissingID
	}
	if w.Title == nil {
		return movie.Movie{}, fmt.Errorf("id %d: %w", *w.ID, errMissingTitle)
	}

	return movie.Movie{
		ID:          *w.ID,
		Title:       *w.Title,
		Overview:    w.Overview,
		PosterPath:  w.PosterPath,
		VoteAverage: w.VoteAverage,
		ReleaseDate: w.ReleaseDate,
	}, nil
}

func (r listResponse) movies() ([]movie.Movie, error) {
	if r.Results == nil {
		return nil, errMissingResults
	}

	movies := make([]movie.Movie, 0, len(*r.Results))
	for i, w := range *r.Results {
		m, err := w.toMovie()
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		movies = append(movies, m)
	}
	return movies, nil
}

func (w wireDetail) detail() (movie.Detail, error) {
	m, err := w.wireMovie.toMovie()
	if err != nil {
		return movie.Detail{}, err
	}
	return movie.Detail{Movie: m, Genres: w.Genres}, nil
}
