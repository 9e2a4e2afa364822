package session

import (
	"slices"

	"github.com/s0up4200/cinetrack/movie"
	"github.com/s0up4200/cinetrack/tmdb"
)

// Status represents the phase of the session state machine
type Status int

const (
	// StatusIdle is the initial status before any request is issued
	StatusIdle Status = iota
	// StatusLoading indicates the newest request is in flight
	StatusLoading
	// StatusLoaded indicates the newest request succeeded
	StatusLoaded
	// StatusFailed indicates the newest request failed
	StatusFailed
)

// String returns the string representation of a Status
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session.
//
// Results holds the loaded movies when Loaded, and the results of the last
// successful load when Failed. Query is empty for the popular list.
type State struct {
	Status  Status
	Token   uint64
	Query   string
	Results []movie.Movie
	Err     error
	Kind    tmdb.ErrorKind
	Message string
}

// IsSearch reports whether the state belongs to a search rather than the popular list
func (s State) IsSearch() bool {
	return s.Query != ""
}

func (s State) clone() State {
	s.Results = slices.Clone(s.Results)
	return s
}
