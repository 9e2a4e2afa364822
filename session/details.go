package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/cinetrack/movie"
)

// FetchDetails retrieves details for several movies concurrently.
// Failed lookups are skipped and reported together in the returned error;
// the map holds every detail that was fetched.
func (s *Session) FetchDetails(ctx context.Context, ids []int) (map[int]movie.Detail, error) {
	details := make(map[int]movie.Detail, len(ids))
	if len(ids) == 0 {
		return details, nil
	}

	var g errgroup.Group
	g.SetLimit(s.detailConcurrency)

	var (
		mu   sync.Mutex
		errs []error
	)

	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		g.Go(func() error {
			detail, err := s.FetchDetail(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("movie %d: %w", id, err))
				return nil
			}
			details[id] = detail
			return nil
		})
	}

	_ = g.Wait()

	s.logger.Debug().
		Int("requested", len(seen)).
		Int("fetched", len(details)).
		Int("failed", len(errs)).
		Msg("Fetched movie details")

	return details, errors.Join(errs...)
}
