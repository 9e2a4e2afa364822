package movie

import "strings"

// ImageBaseURL is the TMDB image host prefix used to build poster URLs
const ImageBaseURL = "https://image.tmdb.org/t/p/w500"

// Movie represents a catalog entry as returned by TMDB list endpoints
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  *string `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
}

// PosterURL returns the absolute poster URL, or false when the movie has no poster
func (m Movie) PosterURL() (string, bool) {
	if m.PosterPath == nil {
		return "", false
	}
	return ImageBaseURL + *m.PosterPath, true
}

// ReleaseYear returns the leading token of the release date before the first '-'.
// Malformed dates are returned as-is.
func (m Movie) ReleaseYear() string {
	year, _, _ := strings.Cut(m.ReleaseDate, "-")
	return year
}

// Genre is a TMDB genre reference
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Detail is the full movie payload from the detail endpoint.
// Genres is nil when the server omitted the field.
type Detail struct {
	Movie
	Genres []Genre `json:"genres"`
}

// PrimaryGenre returns the first genre name, or an empty string
func (d Detail) PrimaryGenre() string {
	if len(d.Genres) == 0 {
		return ""
	}
	return d.Genres[0].Name
}

// GenreNames returns the genre names in server order
func (d Detail) GenreNames() []string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return names
}

// Overlay holds the user's local annotations for a movie
type Overlay struct {
	Favorite bool
	Note     string
}

// IsZero reports whether the overlay carries only default values
func (o Overlay) IsZero() bool {
	return !o.Favorite && o.Note == ""
}

// Row is a movie paired with its current overlay, ready for display
type Row struct {
	Movie
	Overlay Overlay
}

// Decorate pairs each movie with the overlay returned by lookup.
// The result preserves input order.
func Decorate(movies []Movie, lookup func(id int) Overlay) []Row {
	rows := make([]Row, len(movies))
	for i, m := range movies {
		rows[i] = Row{Movie: m, Overlay: lookup(m.ID)}
	}
	return rows
}
