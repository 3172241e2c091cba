package client

import (
	"context"

	"github.com/Matheus-Salgado02/cinelist/models"
)

// AddToWatchlist shows id in the watchlist immediately, then confirms with the
// server. If the call fails, id is taken out again only when it was not there
// before the add.
func (s *Session) AddToWatchlist(ctx context.Context, id models.MovieID) (*models.User, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	var wasPresent bool
	u, err := RunOptimistic[*models.User](ctx, tokenStore{s, token}, Mutation[*models.User]{
		Apply: func(u *models.User) (*models.User, bool) {
			if u == nil {
				return u, false
			}
			wasPresent = models.ContainsMovie(u.Watchlist, id)
			return u, u.AddToWatchlist(id)
		},
		Commit: func(ctx context.Context) (*models.User, error) {
			return s.api.AddToWatchlist(ctx, token, id)
		},
		Revert: func(u *models.User) *models.User {
			if u != nil && !wasPresent {
				u.RemoveFromWatchlist(id)
			}
			return u
		},
	})
	return s.settled(token, u, err)
}

// RemoveFromWatchlist hides id immediately. If the call fails, id comes back
// only when it was present before the remove and is not already back.
func (s *Session) RemoveFromWatchlist(ctx context.Context, id models.MovieID) (*models.User, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	var wasPresent bool
	u, err := RunOptimistic[*models.User](ctx, tokenStore{s, token}, Mutation[*models.User]{
		Apply: func(u *models.User) (*models.User, bool) {
			if u == nil {
				return u, false
			}
			wasPresent = models.ContainsMovie(u.Watchlist, id)
			return u, u.RemoveFromWatchlist(id)
		},
		Commit: func(ctx context.Context) (*models.User, error) {
			return s.api.RemoveFromWatchlist(ctx, token, id)
		},
		Revert: func(u *models.User) *models.User {
			if u != nil && wasPresent {
				u.AddToWatchlist(id)
			}
			return u
		},
	})
	return s.settled(token, u, err)
}

// settled reports ErrSessionChanged when the session moved on while the
// request was in flight; the result was not applied to the snapshot.
func (s *Session) settled(token string, u *models.User, err error) (*models.User, error) {
	if err != nil {
		return u, err
	}
	if s.Token() != token {
		return nil, ErrSessionChanged
	}
	return u, nil
}
