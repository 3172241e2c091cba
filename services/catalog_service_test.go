package services

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"

	"github.com/Matheus-Salgado02/cinelist/data_access"
	"github.com/Matheus-Salgado02/cinelist/models"
)

type stubCatalog struct {
	body json.RawMessage
	err  error
	last string
}

func (s *stubCatalog) reply(call string) (json.RawMessage, error) {
	s.last = call
	return s.body, s.err
}

func (s *stubCatalog) Search(_ context.Context, q string, _ int) (json.RawMessage, error) {
	return s.reply("search:" + q)
}
func (s *stubCatalog) Movie(_ context.Context, id models.MovieID) (json.RawMessage, error) {
	return s.reply("movie:" + id.String())
}
func (s *stubCatalog) Trending(_ context.Context, w string, _ int) (json.RawMessage, error) {
	return s.reply("trending:" + w)
}
func (s *stubCatalog) Popular(context.Context, int) (json.RawMessage, error) { return s.reply("popular") }
func (s *stubCatalog) NowPlaying(context.Context, int) (json.RawMessage, error) {
	return s.reply("now_playing")
}
func (s *stubCatalog) TopRated(context.Context, int) (json.RawMessage, error) {
	return s.reply("top_rated")
}
func (s *stubCatalog) Discover(_ context.Context, g string, _ int) (json.RawMessage, error) {
	return s.reply("discover:" + g)
}
func (s *stubCatalog) Genres(context.Context) (json.RawMessage, error) { return s.reply("genres") }
func (s *stubCatalog) Configuration(context.Context) (json.RawMessage, error) {
	return s.reply("configuration")
}

func TestCatalogService_SearchRequiresQuery(t *testing.T) {
	stub := &stubCatalog{body: json.RawMessage(`{}`)}
	s := NewCatalogService(stub)

	_, err := s.Search(context.Background(), "  ", 1)
	wantKind(t, err, KindBadRequest)
	if stub.last != "" {
		t.Error("upstream should not be called without a query")
	}

	body, err := s.Search(context.Background(), " alien ", 1)
	if err != nil || string(body) != `{}` || stub.last != "search:alien" {
		t.Errorf("Search = %s, %v, last=%q", body, err, stub.last)
	}
}

func TestCatalogService_TrendingWindow(t *testing.T) {
	s := NewCatalogService(&stubCatalog{body: json.RawMessage(`{}`)})
	if _, err := s.Trending(context.Background(), "week", 1); err != nil {
		t.Fatal(err)
	}
	_, err := s.Trending(context.Background(), "month", 1)
	wantKind(t, err, KindBadRequest)
}

func TestCatalogService_ErrorMapping(t *testing.T) {
	s := NewCatalogService(&stubCatalog{err: data_access.ErrCatalogUnavailable})
	_, err := s.Popular(context.Background(), 1)
	wantKind(t, err, KindServiceUnavailable)

	s = NewCatalogService(&stubCatalog{err: errors.New("boom")})
	_, err = s.Movie(context.Background(), 550)
	wantKind(t, err, KindInternal)
	if MessageOf(err, "") != "TMDB movie error" {
		t.Errorf("message = %q", MessageOf(err, ""))
	}
}
