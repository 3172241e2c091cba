package client

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Matheus-Salgado02/cinelist/logging"
	"github.com/Matheus-Salgado02/cinelist/models"
)

const DefaultHydrateConcurrency = 4

// MovieFetcher loads the details for one catalog id.
type MovieFetcher func(ctx context.Context, id models.MovieID) (*models.MovieDetails, error)

// HydrateWatchlist resolves watchlist ids into catalog details, keeping
// watchlist order. Ids that fail to load are logged and left out.
func HydrateWatchlist(ctx context.Context, fetch MovieFetcher, ids []models.MovieID, concurrency int) []models.MovieDetails {
	if concurrency <= 0 {
		concurrency = DefaultHydrateConcurrency
	}
	results := make([]*models.MovieDetails, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			details, err := fetch(gctx, id)
			if err != nil {
				logging.Warn().Err(err).Stringer("movie_id", id).Msg("Skipping watchlist entry")
				return nil
			}
			results[i] = details
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.MovieDetails, 0, len(ids))
	for _, d := range results {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out
}
