package services

import (
	"context"

	"github.com/Matheus-Salgado02/cinelist/logging"
	"github.com/Matheus-Salgado02/cinelist/metrics"
	"github.com/Matheus-Salgado02/cinelist/models"
)

type WatchlistService struct {
	userRepo UserStore
	health   Health
}

func NewWatchlistService(userRepo UserStore, health Health) *WatchlistService {
	if health == nil {
		health = AlwaysConnected
	}
	return &WatchlistService{userRepo: userRepo, health: health}
}

// Add appends movieID unless it is already present.
func (s *WatchlistService) Add(ctx context.Context, userID string, movieID models.MovieID) (*models.User, error) {
	return s.apply(ctx, "watchlist_add", userID, movieID, (*models.User).AddToWatchlist)
}

// Remove filters movieID out of the watchlist whether or not it is present.
func (s *WatchlistService) Remove(ctx context.Context, userID string, movieID models.MovieID) (*models.User, error) {
	return s.apply(ctx, "watchlist_remove", userID, movieID, (*models.User).RemoveFromWatchlist)
}

func (s *WatchlistService) apply(ctx context.Context, op, userID string, movieID models.MovieID, change func(*models.User, models.MovieID) bool) (*models.User, error) {
	if err := guard(s.health); err != nil {
		return nil, err
	}
	user, err := loadUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}

	if !change(user, movieID) {
		metrics.UserMutations.WithLabelValues(op, "noop").Inc()
		return user.Sanitized(), nil
	}

	updated, err := s.userRepo.SetWatchlist(ctx, user.ID, user.Watchlist)
	metrics.UserMutations.WithLabelValues(op, metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	logging.Ctx(ctx).Debug().Str("op", op).Int64("movie_id", int64(movieID)).Int("size", len(updated.Watchlist)).Msg("watchlist updated")
	return updated.Sanitized(), nil
}
