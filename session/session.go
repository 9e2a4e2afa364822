package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/cinetrack/movie"
	"github.com/s0up4200/cinetrack/tmdb"
)

// ErrClosed is returned by operations attempted after Close
var ErrClosed = errors.New("session closed")

// DefaultDetailConcurrency limits concurrent detail fetches in FetchDetails
const DefaultDetailConcurrency = 4

// Catalog is the subset of the catalog client the session needs
type Catalog interface {
	FetchPopular(ctx context.Context) ([]movie.Movie, error)
	Search(ctx context.Context, query string) ([]movie.Movie, error)
	FetchDetail(ctx context.Context, id int) (movie.Detail, error)
}

// Preferences is the overlay store the session reads and forwards writes to
type Preferences interface {
	Get(id int) movie.Overlay
	ToggleFavorite(id int) movie.Overlay
	SetNote(id int, note string)
}

// Option configures a Session
type Option func(*Session)

// WithDetailConcurrency sets how many detail requests FetchDetails runs at once
func WithDetailConcurrency(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.detailConcurrency = n
		}
	}
}

// Session is the single writer of the browse/search State
type Session struct {
	catalog           Catalog
	prefs             Preferences
	logger            zerolog.Logger
	detailConcurrency int

	mu          sync.Mutex
	idle        *sync.Cond
	state       State
	latest      uint64
	lastLoaded  []movie.Movie
	cancel      context.CancelFunc
	inflight    int
	closed      bool
	subscribers map[int]chan State
	nextSubID   int
}

// New creates a Session in the Idle state
func New(catalog Catalog, prefs Preferences, logger zerolog.Logger, opts ...Option) *Session {
	s := &Session{
		catalog:           catalog,
		prefs:             prefs,
		logger:            logger,
		detailConcurrency: DefaultDetailConcurrency,
		state:             State{Status: StatusIdle},
		subscribers:       make(map[int]chan State),
	}
	s.idle = sync.NewCond(&s.mu)

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// LoadPopular requests the popular list and returns the request token.
// It returns 0 when the session is closed.
func (s *Session) LoadPopular(ctx context.Context) uint64 {
	return s.issue(ctx, "")
}

// Search requests movies matching query and returns the request token.
// A blank query is the same as LoadPopular.
func (s *Session) Search(ctx context.Context, query string) uint64 {
	return s.issue(ctx, strings.TrimSpace(query))
}

// issue tags a new request with the next token, supersedes the previous one
// and starts the fetch
func (s *Session) issue(ctx context.Context, query string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Debug().Str("query", query).Msg("Ignoring request on closed session")
		return 0
	}

	// best effort; the token check below is what discards stale results
	if s.cancel != nil {
		s.cancel()
	}

	s.latest++
	token := s.latest
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.inflight++

	s.setStateLocked(State{Status: StatusLoading, Token: token, Query: query})

	s.logger.Debug().Uint64("token", token).Str("query", query).Msg("Issued catalog request")

	go s.run(reqCtx, cancel, token, query)

	return token
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, token uint64, query string) {
	defer cancel()

	var (
		movies []movie.Movie
		err    error
	)
	if query == "" {
		movies, err = s.catalog.FetchPopular(ctx)
	} else {
		movies, err = s.catalog.Search(ctx, query)
	}

	s.commit(token, query, movies, err)
}

// commit applies a completion if its token is still the newest
func (s *Session) commit(token uint64, query string, movies []movie.Movie, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inflight--
	if s.inflight == 0 {
		s.idle.Broadcast()
	}

	if s.closed {
		s.logger.Debug().Uint64("token", token).Msg("Discarding result delivered after close")
		return
	}
	if token != s.latest {
		s.logger.Debug().
			Uint64("token", token).
			Uint64("latest", s.latest).
			Bool("failed", err != nil).
			Msg("Discarding superseded result")
		return
	}
	s.cancel = nil

	if err != nil {
		kind := tmdb.KindOf(err)
		if kind == tmdb.KindUnknown {
			kind = tmdb.KindNetwork
		}
		results := s.lastLoaded
		if results == nil {
			results = []movie.Movie{}
		}

		s.setStateLocked(State{
			Status:  StatusFailed,
			Token:   token,
			Query:   query,
			Results: results,
			Err:     err,
			Kind:    kind,
			Message: failureMessage(query, err),
		})

		s.logger.Warn().Err(err).Str("kind", kind.String()).Str("query", query).Msg("Catalog request failed")
		return
	}

	if movies == nil {
		movies = []movie.Movie{}
	}
	s.lastLoaded = movies
	s.setStateLocked(State{Status: StatusLoaded, Token: token, Query: query, Results: movies})

	s.logger.Debug().Uint64("token", token).Int("count", len(movies)).Msg("Catalog request loaded")
}

func failureMessage(query string, err error) string {
	if query == "" {
		return fmt.Sprintf("failed to load popular movies: %v", err)
	}
	return fmt.Sprintf("search for %q failed: %v", query, err)
}

// setStateLocked stores st and hands a snapshot to every subscriber.
// Each subscriber channel holds at most one pending snapshot; a newer one
// replaces it.
func (s *Session) setStateLocked(st State) {
	s.state = st

	for _, ch := range s.subscribers {
		snapshot := st.clone()
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

// State returns the current snapshot
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.clone()
}

// Subscribe returns a channel receiving the current State and every later
// change. Slow readers only see the newest pending snapshot. The returned
// func unsubscribes and closes the channel; Close also closes it.
func (s *Session) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	ch <- s.state.clone()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if c, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(c)
		}
	}
}

// Rows returns the current results decorated with their overlays.
// Overlays are read at call time.
func (s *Session) Rows() []movie.Row {
	st := s.State()
	return movie.Decorate(st.Results, s.prefs.Get)
}

// FavoriteRows returns the decorated current results marked favorite
func (s *Session) FavoriteRows() []movie.Row {
	rows := s.Rows()
	favorites := make([]movie.Row, 0, len(rows))
	for _, row := range rows {
		if row.Overlay.Favorite {
			favorites = append(favorites, row)
		}
	}
	return favorites
}

// Overlay returns the overlay for a movie
func (s *Session) Overlay(id int) movie.Overlay {
	return s.prefs.Get(id)
}

// ToggleFavorite flips the favorite flag for a movie. State is not changed.
func (s *Session) ToggleFavorite(id int) movie.Overlay {
	return s.prefs.ToggleFavorite(id)
}

// SetNote stores a personal note for a movie. State is not changed.
func (s *Session) SetNote(id int, note string) {
	s.prefs.SetNote(id, note)
}

// FetchDetail retrieves a movie's details. The result is not merged into State.
func (s *Session) FetchDetail(ctx context.Context, id int) (movie.Detail, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return movie.Detail{}, ErrClosed
	}

	detail, err := s.catalog.FetchDetail(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Int("movie_id", id).Msg("Failed to fetch movie details")
		return movie.Detail{}, err
	}
	return detail, nil
}

// Wait blocks until every issued request has completed
func (s *Session) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.inflight > 0 {
		s.idle.Wait()
	}
}

// Close tears the session down. The in-flight request is cancelled, later
// completions are discarded and subscriber channels are closed. Close does not
// wait for outstanding requests; use Wait for that.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}

	s.logger.Debug().Uint64("latest", s.latest).Msg("Session closed")
}
