package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Matheus-Salgado02/cinelist/data_access"
	"github.com/Matheus-Salgado02/cinelist/models"
)

// UserStore is the credential store: one document per user with the
// watchlist and reviews embedded. data_access.UserRepository and
// data_access.MemoryStore implement it.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, p *models.ProfileUpdate) (*models.User, error)
	SetWatchlist(ctx context.Context, id primitive.ObjectID, watchlist []models.MovieID) (*models.User, error)
	SetReviews(ctx context.Context, id primitive.ObjectID, reviews []models.Review) (*models.User, error)
	FindByReviewedMovie(ctx context.Context, movieID models.MovieID) ([]*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

// Health reports whether the store currently has a live connection.
type Health interface {
	Connected() bool
}

// HealthFunc adapts a plain function to Health.
type HealthFunc func() bool

func (f HealthFunc) Connected() bool { return f() }

// AlwaysConnected is used when the store lives in process.
var AlwaysConnected Health = HealthFunc(func() bool { return true })

var errDBUnavailable = errors.New("database not connected")

// guard fails fast with ServiceUnavailable while the store is down.
func guard(h Health) error {
	if h != nil && !h.Connected() {
		return Unavailable("Database not connected", errDBUnavailable)
	}
	return nil
}

// storeError classifies errors coming back from a UserStore call.
func storeError(err error, notFound string) error {
	var dup *data_access.DuplicateKeyError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &dup):
		return Conflict("Duplicate " + dup.Field)
	case errors.Is(err, data_access.ErrDuplicateKey):
		return Conflict("Duplicate key")
	case errors.Is(err, data_access.ErrNotFound):
		return NotFound(notFound)
	case errors.Is(err, data_access.ErrDisconnected):
		return Unavailable("Database not connected", err)
	default:
		return Internal("Server error", err)
	}
}

// loadUser resolves the authenticated user id and fetches the document.
func loadUser(ctx context.Context, store UserStore, userID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, Unauthorized("Invalid user ID")
	}
	user, err := store.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return user, nil
}
