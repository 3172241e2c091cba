package data_access

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Matheus-Salgado02/cinelist/config"
	"github.com/Matheus-Salgado02/cinelist/logging"
	"github.com/Matheus-Salgado02/cinelist/metrics"
	"github.com/Matheus-Salgado02/cinelist/models"
)

// ErrCatalogUnavailable is returned while the TMDB circuit is open.
var ErrCatalogUnavailable = errors.New("catalog temporarily unavailable")

// maxCatalogBody caps how much of an upstream response is buffered.
const maxCatalogBody = 4 << 20

// UpstreamError reports a non-2xx TMDB response.
type UpstreamError struct {
	Status int
	Path   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("tmdb %s: status %d", e.Path, e.Status)
}

// TMDBClient proxies read-only catalog calls. Bodies come back verbatim.
type TMDBClient struct {
	baseURL    string
	apiKey     string
	bearer     string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[json.RawMessage]
	name       string
}

func NewTMDBClient(cfg config.TMDBConfig) *TMDBClient {
	name := "tmdb-api"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= 0.6
		},
		// A 404 for an unknown movie id is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			var up *UpstreamError
			if errors.As(err, &up) {
				return up.Status < 500
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &TMDBClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		bearer:     cfg.Bearer,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cb:         cb,
		name:       name,
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Get issues GET <base><path>?<params> through the circuit breaker.
func (c *TMDBClient) Get(ctx context.Context, endpoint, path string, params url.Values) (json.RawMessage, error) {
	body, err := c.cb.Execute(func() (json.RawMessage, error) {
		return c.fetch(ctx, path, params)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CatalogRequests.WithLabelValues(endpoint, "rejected").Inc()
		return nil, ErrCatalogUnavailable
	case err != nil:
		metrics.CatalogRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, err
	}
	metrics.CatalogRequests.WithLabelValues(endpoint, "ok").Inc()
	return body, nil
}

func (c *TMDBClient) fetch(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}
	if c.bearer == "" && c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request to TMDB: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBody))
	if err != nil {
		return nil, fmt.Errorf("error reading TMDB response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Path: path}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("tmdb %s: response is not valid JSON", path)
	}
	return body, nil
}

func pageParams(page int) url.Values {
	v := url.Values{}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	return v
}

func (c *TMDBClient) Search(ctx context.Context, query string, page int) (json.RawMessage, error) {
	v := pageParams(page)
	v.Set("query", query)
	return c.Get(ctx, "search", "/search/movie", v)
}

func (c *TMDBClient) Movie(ctx context.Context, id models.MovieID) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("append_to_response", "credits")
	return c.Get(ctx, "movie", "/movie/"+id.String(), v)
}

func (c *TMDBClient) Trending(ctx context.Context, window string, page int) (json.RawMessage, error) {
	return c.Get(ctx, "trending", "/trending/movie/"+window, pageParams(page))
}

func (c *TMDBClient) Popular(ctx context.Context, page int) (json.RawMessage, error) {
	return c.Get(ctx, "popular", "/movie/popular", pageParams(page))
}

func (c *TMDBClient) NowPlaying(ctx context.Context, page int) (json.RawMessage, error) {
	return c.Get(ctx, "now_playing", "/movie/now_playing", pageParams(page))
}

func (c *TMDBClient) TopRated(ctx context.Context, page int) (json.RawMessage, error) {
	return c.Get(ctx, "top_rated", "/movie/top_rated", pageParams(page))
}

func (c *TMDBClient) Discover(ctx context.Context, genre string, page int) (json.RawMessage, error) {
	v := pageParams(page)
	v.Set("sort_by", "popularity.desc")
	if genre != "" {
		v.Set("with_genres", genre)
	}
	return c.Get(ctx, "discover", "/discover/movie", v)
}

func (c *TMDBClient) Genres(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, "genres", "/genre/movie/list", nil)
}

func (c *TMDBClient) Configuration(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, "configuration", "/configuration", nil)
}
