package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/s0up4200/cinetrack/movie"
)

const (
	// DefaultBaseURL is the TMDB v3 API root
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultTimeout bounds a single HTTP round trip
	DefaultTimeout = 10 * time.Second
)

var errEmptyBody = errors.New("empty response body")

// Client represents a TMDB API client
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client
func NewClient(apiKey, baseURL, language string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: tmdb API key is required", ErrInvalidConfig)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: tmdb URL is required", ErrInvalidConfig)
	}
	if u, err := url.Parse(baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid tmdb URL %q", ErrInvalidConfig, baseURL)
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.timeout}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		language:   strings.TrimSpace(language),
		userAgent:  options.userAgent,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(options.rateLimit, options.rateBurst),
		logger:     logger,
	}, nil
}

// FetchPopular retrieves the popular movies list
func (c *Client) FetchPopular(ctx context.Context) ([]movie.Movie, error) {
	const op = "popular"

	body, err := c.doGet(ctx, op, "/movie/popular", nil)
	if err != nil {
		return nil, err
	}
	return decodeList(op, body)
}

// Search retrieves movies matching the free-text query
func (c *Client) Search(ctx context.Context, query string) ([]movie.Movie, error) {
	const op = "search"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newError(KindInvalidRequest, op, errors.New("query must not be empty"))
	}
	if !utf8.ValidString(query) {
		return nil, newError(KindInvalidRequest, op, errors.New("query is not valid UTF-8"))
	}

	params := url.Values{}
	params.Set("query", query)

	body, err := c.doGet(ctx, op, "/search/movie", params)
	if err != nil {
		return nil, err
	}
	return decodeList(op, body)
}

// FetchDetail retrieves the full record for a movie
func (c *Client) FetchDetail(ctx context.Context, id int) (movie.Detail, error) {
	const op = "detail"

	if id <= 0 {
		return movie.Detail{}, newError(KindInvalidRequest, op, fmt.Errorf("movie id must be positive, got %d", id))
	}

	body, err := c.doGet(ctx, op, "/movie/"+strconv.Itoa(id), nil)
	if err != nil {
		return movie.Detail{}, err
	}

	var payload wireDetail
	if err := json.Unmarshal(body, &payload); err != nil {
		return movie.Detail{}, newError(KindDecoding, op, err)
	}
	detail, err := payload.detail()
	if err != nil {
		return movie.Detail{}, newError(KindDecoding, op, err)
	}
	return detail, nil
}

// doGet performs a single authenticated GET request and returns the body
func (c *Client) doGet(ctx context.Context, op, path string, params url.Values) ([]byte, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, newError(KindInvalidRequest, op, fmt.Errorf("parse tmdb url: %w", err))
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, newError(KindInvalidRequest, op, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, newError(KindNetwork, op, fmt.Errorf("rate limiter: %w", err))
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, newError(KindNetwork, op, fmt.Errorf("execute request (latency=%v): %w", latency, err))
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)

	c.logger.Debug().
		Str("op", op).
		Str("endpoint", path).
		Int("status", resp.StatusCode).
		Dur("latency", latency).
		Int("bytes", len(body)).
		Msg("TMDB request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(KindNetwork, op, newAPIError(resp.StatusCode, body))
	}
	if readErr != nil {
		return nil, newError(KindNoData, op, fmt.Errorf("read response body: %w", readErr))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, newError(KindNoData, op, errEmptyBody)
	}

	return body, nil
}

func decodeList(op string, body []byte) ([]movie.Movie, error) {
	var payload listResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, newError(KindDecoding, op, err)
	}
	movies, err := payload.movies()
	if err != nil {
		return nil, newError(KindDecoding, op, err)
	}
	return movies, nil
}
