package services

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/Matheus-Salgado02/cinelist/logging"
	"github.com/Matheus-Salgado02/cinelist/metrics"
	"github.com/Matheus-Salgado02/cinelist/models"
)

type ReviewService struct {
	userRepo UserStore
	health   Health
	now      func() time.Time
}

func NewReviewService(userRepo UserStore, health Health) *ReviewService {
	if health == nil {
		health = AlwaysConnected
	}
	return &ReviewService{userRepo: userRepo, health: health, now: time.Now}
}

// ParseRating accepts integral ratings in [MinRating, MaxRating]. "4" and 4
// both arrive here as json.Number.
func ParseRating(raw json.Number) (int, error) {
	if raw == "" {
		return 0, BadRequest("movieId and rating required")
	}
	f, err := strconv.ParseFloat(raw.String(), 64)
	if err != nil || f != float64(int(f)) || f < models.MinRating || f > models.MaxRating {
		return 0, BadRequest("Rating must be between 1 and 5")
	}
	return int(f), nil
}

// Upsert creates or replaces the caller's single review for movieID.
func (s *ReviewService) Upsert(ctx context.Context, userID string, movieID models.MovieID, rawRating json.Number, text string) (*models.User, *models.Review, error) {
	rating, err := ParseRating(rawRating)
	if err != nil {
		return nil, nil, err
	}
	if err := guard(s.health); err != nil {
		return nil, nil, err
	}
	user, err := loadUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, nil, err
	}

	review, created := user.UpsertReview(movieID, rating, text, s.now().UTC())
	updated, err := s.userRepo.SetReviews(ctx, user.ID, user.Reviews)
	metrics.UserMutations.WithLabelValues("review_upsert", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, nil, storeError(err, "User not found")
	}

	logging.Ctx(ctx).Debug().
		Int64("movie_id", int64(movieID)).
		Int("rating", rating).
		Bool("created", created).
		Msg("review saved")
	return updated.Sanitized(), &review, nil
}

// Delete removes the caller's review with reviewID; unknown ids are a no-op.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID string) (*models.User, error) {
	if err := guard(s.health); err != nil {
		return nil, err
	}
	user, err := loadUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if !user.DeleteReview(reviewID) {
		metrics.UserMutations.WithLabelValues("review_delete", "noop").Inc()
		return user.Sanitized(), nil
	}

	updated, err := s.userRepo.SetReviews(ctx, user.ID, user.Reviews)
	metrics.UserMutations.WithLabelValues("review_delete", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return updated.Sanitized(), nil
}

// ListForMovie collects every user's review of movieID, newest first. Equal
// timestamps keep storage order.
func (s *ReviewService) ListForMovie(ctx context.Context, movieID models.MovieID) ([]models.ReviewListing, error) {
	if err := guard(s.health); err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByReviewedMovie(ctx, movieID)
	if err != nil {
		return nil, storeError(err, "")
	}

	listings := make([]models.ReviewListing, 0, len(users))
	for _, u := range users {
		for _, r := range u.Reviews {
			if r.MovieID != movieID {
				continue
			}
			listings = append(listings, models.ReviewListing{
				ID:        r.ID,
				MovieID:   r.MovieID,
				Rating:    r.Rating,
				Text:      r.Text,
				CreatedAt: r.CreatedAt,
				UserID:    u.ID,
				UserName:  u.DisplayName(),
			})
		}
	}
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
	return listings, nil
}
