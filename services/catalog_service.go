package services

import (
	"context"
	"errors"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Matheus-Salgado02/cinelist/data_access"
	"github.com/Matheus-Salgado02/cinelist/logging"
	"github.com/Matheus-Salgado02/cinelist/models"
)

// Catalog is the upstream movie metadata provider.
type Catalog interface {
	Search(ctx context.Context, query string, page int) (json.RawMessage, error)
	Movie(ctx context.Context, id models.MovieID) (json.RawMessage, error)
	Trending(ctx context.Context, window string, page int) (json.RawMessage, error)
	Popular(ctx context.Context, page int) (json.RawMessage, error)
	NowPlaying(ctx context.Context, page int) (json.RawMessage, error)
	TopRated(ctx context.Context, page int) (json.RawMessage, error)
	Discover(ctx context.Context, genre string, page int) (json.RawMessage, error)
	Genres(ctx context.Context) (json.RawMessage, error)
	Configuration(ctx context.Context) (json.RawMessage, error)
}

// CatalogService is the stateless gateway in front of Catalog. Responses are
// passed through untouched.
type CatalogService struct {
	catalog Catalog
}

func NewCatalogService(catalog Catalog) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) Search(ctx context.Context, query string, page int) (json.RawMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, BadRequest("q query required")
	}
	body, err := s.catalog.Search(ctx, query, page)
	return body, catalogError(ctx, "search", err)
}

func (s *CatalogService) Movie(ctx context.Context, id models.MovieID) (json.RawMessage, error) {
	body, err := s.catalog.Movie(ctx, id)
	return body, catalogError(ctx, "movie", err)
}

func (s *CatalogService) Trending(ctx context.Context, window string, page int) (json.RawMessage, error) {
	if window != "day" && window != "week" {
		return nil, BadRequest("window must be day or week")
	}
	body, err := s.catalog.Trending(ctx, window, page)
	return body, catalogError(ctx, "trending", err)
}

func (s *CatalogService) Popular(ctx context.Context, page int) (json.RawMessage, error) {
	body, err := s.catalog.Popular(ctx, page)
	return body, catalogError(ctx, "popular", err)
}

func (s *CatalogService) NowPlaying(ctx context.Context, page int) (json.RawMessage, error) {
	body, err := s.catalog.NowPlaying(ctx, page)
	return body, catalogError(ctx, "now playing", err)
}

func (s *CatalogService) TopRated(ctx context.Context, page int) (json.RawMessage, error) {
	body, err := s.catalog.TopRated(ctx, page)
	return body, catalogError(ctx, "top rated", err)
}

func (s *CatalogService) Discover(ctx context.Context, genre string, page int) (json.RawMessage, error) {
	body, err := s.catalog.Discover(ctx, strings.TrimSpace(genre), page)
	return body, catalogError(ctx, "discover", err)
}

func (s *CatalogService) Genres(ctx context.Context) (json.RawMessage, error) {
	body, err := s.catalog.Genres(ctx)
	return body, catalogError(ctx, "genres", err)
}

func (s *CatalogService) Configuration(ctx context.Context) (json.RawMessage, error) {
	body, err := s.catalog.Configuration(ctx)
	return body, catalogError(ctx, "configuration", err)
}

func catalogError(ctx context.Context, endpoint string, err error) error {
	if err == nil {
		return nil
	}
	logging.Ctx(ctx).Error().Err(err).Str("endpoint", endpoint).Msg("catalog request failed")
	if errors.Is(err, data_access.ErrCatalogUnavailable) {
		return Unavailable("TMDB temporarily unavailable", err)
	}
	return Internal("TMDB "+endpoint+" error", err)
}
