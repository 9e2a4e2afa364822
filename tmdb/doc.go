// Package tmdb provides a client for The Movie Database (TMDB) v3 API.
//
// The client covers the three catalog calls the application needs: the popular
// movies list, free-text movie search and movie details. Every call performs a
// single GET request and never retries.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := tmdb.NewClient(
//		"your-api-key",
//		tmdb.DefaultBaseURL,
//		"es-ES",
//		logger,
//		tmdb.WithTimeout(10*time.Second),
//		tmdb.WithRateLimit(4, 1),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	movies, err := client.Search(ctx, "blade runner")
//
// # Error Handling
//
// Failures are reported as *Error values carrying one of four kinds:
//
//   - ErrInvalidRequest: the request could not be built; no network call was made
//   - ErrNoData: the response body was empty or unreadable
//   - ErrDecoding: the body did not match the expected schema
//   - ErrNetwork: transport failure, cancellation or a non-2xx status
//
// Use errors.Is with the sentinels, or KindOf to classify:
//
//	if errors.Is(err, tmdb.ErrNetwork) {
//		var apiErr *tmdb.APIError
//		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
//			// bad API key
//		}
//	}
package tmdb
