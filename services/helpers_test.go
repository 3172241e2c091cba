package services

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Matheus-Salgado02/cinelist/data_access"
	"github.com/Matheus-Salgado02/cinelist/models"
)

type fixture struct {
	store     *data_access.MemoryStore
	tokens    *TokenService
	hasher    *PasswordHasher
	auth      *AuthService
	watchlist *WatchlistService
	reviews   *ReviewService
	directory *UserDirectory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := data_access.NewMemoryStore()
	tokens := NewTokenService("test-secret", DefaultTokenTTL)
	hasher := NewPasswordHasher(bcrypt.MinCost)
	return &fixture{
		store:     store,
		tokens:    tokens,
		hasher:    hasher,
		auth:      NewAuthService(store, store, tokens, hasher),
		watchlist: NewWatchlistService(store, store),
		reviews:   NewReviewService(store, store),
		directory: NewUserDirectory(store, store, hasher),
	}
}

// register creates a user through the service and returns its id.
func (f *fixture) register(t *testing.T, email string) string {
	t.Helper()
	resp, err := f.auth.Register(context.Background(), &models.RegisterRequest{Email: email, Password: "pw"})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return resp.User.ID.Hex()
}

func wantKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("KindOf(%v) = %s, want %s", err, got, want)
	}
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }
