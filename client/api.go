// Package client is the Go data layer for cinelist front ends: a typed HTTP
// client, a persisted session with optimistic watchlist updates, and helpers
// for debounced search, paging and watchlist hydration.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Matheus-Salgado02/cinelist/models"
)

// APIError is a non-2xx response. Message carries the server's message or
// error field when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusUnauthorized
}

type API struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &API{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (a *API) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func decodeAPIError(status int, data []byte) *APIError {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &body) == nil {
		switch {
		case body.Message != "":
			msg = body.Message
		case body.Error != "":
			msg = body.Error
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("Request failed %d", status)
	}
	return &APIError{Status: status, Message: msg}
}

func (a *API) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := a.do(ctx, http.MethodPost, "/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := a.do(ctx, http.MethodPost, "/auth/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Me(ctx context.Context, token string) (*models.User, error) {
	return a.userCall(ctx, http.MethodGet, "/auth/me", token, nil)
}

func (a *API) UpdateProfile(ctx context.Context, token string, update *models.ProfileUpdate) (*models.User, error) {
	return a.userCall(ctx, http.MethodPut, "/auth/me", token, update)
}

func (a *API) AddToWatchlist(ctx context.Context, token string, id models.MovieID) (*models.User, error) {
	return a.userCall(ctx, http.MethodPost, "/watchlist", token, map[string]models.MovieID{"movieId": id})
}

func (a *API) RemoveFromWatchlist(ctx context.Context, token string, id models.MovieID) (*models.User, error) {
	return a.userCall(ctx, http.MethodDelete, "/watchlist/"+id.String(), token, nil)
}

func (a *API) DeleteReview(ctx context.Context, token, reviewID string) (*models.User, error) {
	return a.userCall(ctx, http.MethodDelete, "/reviews/"+url.PathEscape(reviewID), token, nil)
}

func (a *API) userCall(ctx context.Context, method, path, token string, body any) (*models.User, error) {
	var out models.UserResponse
	if err := a.do(ctx, method, path, token, body, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, fmt.Errorf("%s %s: response has no user", method, path)
	}
	out.User.Normalize()
	return out.User, nil
}

func (a *API) UpsertReview(ctx context.Context, token string, movieID models.MovieID, rating int, text string) (*models.User, *models.ReviewSummary, error) {
	body := struct {
		MovieID models.MovieID `json:"movieId"`
		Rating  int            `json:"rating"`
		Text    string         `json:"text,omitempty"`
	}{movieID, rating, text}

	var out struct {
		User   *models.User          `json:"user"`
		Review *models.ReviewSummary `json:"review"`
	}
	if err := a.do(ctx, http.MethodPost, "/reviews", token, body, &out); err != nil {
		return nil, nil, err
	}
	if out.User != nil {
		out.User.Normalize()
	}
	return out.User, out.Review, nil
}

func (a *API) MovieReviews(ctx context.Context, id models.MovieID) ([]models.ReviewListing, error) {
	var out models.ReviewListResponse
	if err := a.do(ctx, http.MethodGet, "/reviews/movie/"+id.String(), "", nil, &out); err != nil {
		return nil, err
	}
	return out.Reviews, nil
}

// Health returns the server's view of its storage connection.
func (a *API) Health(ctx context.Context) (dbConnected bool, err error) {
	var out struct {
		OK          bool `json:"ok"`
		DBConnected bool `json:"dbConnected"`
	}
	if err := a.do(ctx, http.MethodGet, "/health", "", nil, &out); err != nil {
		return false, err
	}
	return out.DBConnected, nil
}

func (a *API) moviePage(ctx context.Context, path string, params url.Values) (*models.MoviePage, error) {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var out models.MoviePage
	if err := a.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func pageValues(page int) url.Values {
	v := url.Values{}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	return v
}

func (a *API) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	v := pageValues(page)
	v.Set("q", query)
	return a.moviePage(ctx, "/tmdb/search", v)
}

func (a *API) Trending(ctx context.Context, window string, page int) (*models.MoviePage, error) {
	return a.moviePage(ctx, "/tmdb/trending/"+url.PathEscape(window), pageValues(page))
}

func (a *API) Popular(ctx context.Context, page int) (*models.MoviePage, error) {
	return a.moviePage(ctx, "/tmdb/popular", pageValues(page))
}

func (a *API) NowPlaying(ctx context.Context, page int) (*models.MoviePage, error) {
	return a.moviePage(ctx, "/tmdb/now-playing", pageValues(page))
}

func (a *API) TopRated(ctx context.Context, page int) (*models.MoviePage, error) {
	return a.moviePage(ctx, "/tmdb/top-rated", pageValues(page))
}

func (a *API) Discover(ctx context.Context, genre string, page int) (*models.MoviePage, error) {
	v := pageValues(page)
	if genre != "" {
		v.Set("genre", genre)
	}
	return a.moviePage(ctx, "/tmdb/discover", v)
}

func (a *API) Movie(ctx context.Context, id models.MovieID) (*models.MovieDetails, error) {
	var out models.MovieDetails
	if err := a.do(ctx, http.MethodGet, "/tmdb/movie/"+id.String(), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Genres(ctx context.Context) ([]models.Genre, error) {
	var out struct {
		Genres []models.Genre `json:"genres"`
	}
	if err := a.do(ctx, http.MethodGet, "/tmdb/genres", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}
