// Package session owns the browse/search result set shown to the user.
//
// A Session issues catalog requests on behalf of the presentation layer and
// tags each one with a monotonically increasing token. Only the completion of
// the request holding the newest token may change the published State; older
// completions, successful or not, are dropped. This keeps search-as-you-type
// correct no matter in which order responses arrive.
//
// Results are decorated with the user's overlays (favorite flag, note) when
// they are read, so toggling a favorite is visible immediately without a new
// fetch.
//
//	s := session.New(client, prefs, logger)
//	defer s.Close()
//
//	states, cancel := s.Subscribe()
//	defer cancel()
//
//	s.Search(ctx, "heat")
//	for st := range states {
//		if st.Status == session.StatusLoaded {
//			render(s.Rows())
//		}
//	}
package session
