package data_access

import (
	"context"
	"errors"
	"testing"

	"github.com/Matheus-Salgado02/cinelist/models"
)

func strPtr(s string) *string { return &s }

func TestMemoryStore_SparseUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// Two users without a username must coexist.
	if err := s.Create(ctx, &models.User{Email: "a@x.com"}); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if err := s.Create(ctx, &models.User{Email: "b@x.com"}); err != nil {
		t.Fatalf("Create b: %v", err)
	}

	err := s.Create(ctx, &models.User{Email: "a@x.com"})
	var dup *DuplicateKeyError
	if !errors.As(err, &dup) || dup.Field != "email" {
		t.Fatalf("duplicate email err = %v", err)
	}
	if !errors.Is(err, ErrDuplicateKey) {
		t.Error("DuplicateKeyError should unwrap to ErrDuplicateKey")
	}
}

func TestMemoryStore_FindByIdentity(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := &models.User{Username: "ana", Email: "ana@x.com"}
	if err := s.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	if u.ID.IsZero() {
		t.Fatal("Create should assign an id")
	}

	got, err := s.FindByUsername(ctx, "ana")
	if err != nil || got.ID != u.ID {
		t.Fatalf("FindByUsername = %v, %v", got, err)
	}
	if _, err := s.FindByEmail(ctx, "nobody@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByEmail(missing) err = %v, want ErrNotFound", err)
	}
	if _, err := s.FindByUsername(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty username should never match, err = %v", err)
	}
}

func TestMemoryStore_ReturnsSnapshots(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := &models.User{Username: "ana"}
	_ = s.Create(ctx, u)

	got, _ := s.FindByID(ctx, u.ID)
	got.Watchlist = append(got.Watchlist, 1)

	again, _ := s.FindByID(ctx, u.ID)
	if len(again.Watchlist) != 0 {
		t.Error("mutating a returned user leaked into the store")
	}
	if again.Watchlist == nil || again.Reviews == nil {
		t.Error("returned users should be normalized")
	}
}

func TestMemoryStore_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	a := &models.User{Username: "ana"}
	b := &models.User{Username: "bob"}
	_ = s.Create(ctx, a)
	_ = s.Create(ctx, b)

	_, err := s.UpdateProfile(ctx, b.ID, &models.ProfileUpdate{Username: strPtr("ana")})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("renaming onto a taken username err = %v", err)
	}

	got, err := s.UpdateProfile(ctx, b.ID, &models.ProfileUpdate{Bio: strPtr("hi"), FavoriteGenres: []string{"drama"}})
	if err != nil {
		t.Fatal(err)
	}
	if got.Bio != "hi" || got.Username != "bob" || len(got.FavoriteGenres) != 1 {
		t.Errorf("updated = %+v", got)
	}
}

func TestMemoryStore_FindByReviewedMovie(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	a := &models.User{Username: "ana"}
	b := &models.User{Username: "bob"}
	_ = s.Create(ctx, a)
	_ = s.Create(ctx, b)

	r := models.Review{MovieID: 42, Rating: 3}
	if _, err := s.SetReviews(ctx, a.ID, []models.Review{r}); err != nil {
		t.Fatal(err)
	}
	users, err := s.FindByReviewedMovie(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].ID != a.ID {
		t.Errorf("FindByReviewedMovie = %v", users)
	}
}

func TestMemoryStore_SetWatchlistMissingUser(t *testing.T) {
	s := NewMemoryStore()
	u := &models.User{}
	u.ID = [12]byte{1}
	if _, err := s.SetWatchlist(context.Background(), u.ID, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Connected(t *testing.T) {
	s := NewMemoryStore()
	if !s.Connected() {
		t.Fatal("new store should report connected")
	}
	s.SetConnected(false)
	if s.Connected() {
		t.Error("SetConnected(false) should flip health")
	}
}
