package models

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	// Identity. Username and email are omitted when empty so the sparse
	// unique indexes never see them.
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Username string             `bson:"username,omitempty" json:"username,omitempty"`
	Email    string             `bson:"email,omitempty" json:"email,omitempty"`
	Password string             `bson:"password" json:"-"`

	// Profile
	Name           string         `bson:"name,omitempty" json:"name,omitempty"`
	Bio            string         `bson:"bio" json:"bio"`
	FavoriteGenres []string       `bson:"favoriteGenres" json:"favoriteGenres"`
	Stats          map[string]any `bson:"stats" json:"stats"`

	Watchlist []MovieID `bson:"watchlist" json:"watchlist"`
	Reviews   []Review  `bson:"reviews" json:"reviews"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Review is embedded in exactly one User; at most one per movie.
type Review struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	MovieID   MovieID            `bson:"movieId" json:"movieId"`
	Rating    int                `bson:"rating" json:"rating"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// ReviewSummary is the review echoed back by POST /reviews.
type ReviewSummary struct {
	ID        primitive.ObjectID `json:"id"`
	MovieID   MovieID            `json:"movieId"`
	Rating    int                `json:"rating"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"createdAt"`
}

func (r Review) Summary() *ReviewSummary {
	return &ReviewSummary{ID: r.ID, MovieID: r.MovieID, Rating: r.Rating, Text: r.Text, CreatedAt: r.CreatedAt}
}

// ReviewListing is the public projection returned by the per-movie listing.
type ReviewListing struct {
	ID        primitive.ObjectID `json:"id"`
	MovieID   MovieID            `json:"movieId"`
	Rating    int                `json:"rating"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"createdAt"`
	UserID    primitive.ObjectID `json:"userId"`
	UserName  string             `json:"userName"`
}

const (
	MinRating = 1
	MaxRating = 5
)

// DisplayName falls back from the profile name to the username to "User".
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Username != "" {
		return u.Username
	}
	return "User"
}

// Clone returns a deep copy; snapshots handed to callers never share slices.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.FavoriteGenres = slices.Clone(u.FavoriteGenres)
	c.Watchlist = slices.Clone(u.Watchlist)
	c.Reviews = slices.Clone(u.Reviews)
	if u.Stats != nil {
		c.Stats = make(map[string]any, len(u.Stats))
		for k, v := range u.Stats {
			c.Stats[k] = v
		}
	}
	return &c
}

// Sanitized drops the password hash before a user crosses the API boundary.
// Collections are always non-nil so they encode as arrays, never null.
func (u *User) Sanitized() *User {
	c := u.Clone()
	if c != nil {
		c.Password = ""
		c.Normalize()
	}
	return c
}

// Normalize fills nil collections so JSON egress always carries arrays/objects.
func (u *User) Normalize() {
	if u.FavoriteGenres == nil {
		u.FavoriteGenres = []string{}
	}
	if u.Stats == nil {
		u.Stats = map[string]any{}
	}
	if u.Watchlist == nil {
		u.Watchlist = []MovieID{}
	}
	if u.Reviews == nil {
		u.Reviews = []Review{}
	}
}

// AddToWatchlist appends id unless already present. It reports whether the
// watchlist changed.
func (u *User) AddToWatchlist(id MovieID) bool {
	if ContainsMovie(u.Watchlist, id) {
		return false
	}
	u.Watchlist = append(u.Watchlist, id)
	return true
}

// RemoveFromWatchlist filters every occurrence of id out of the watchlist.
func (u *User) RemoveFromWatchlist(id MovieID) bool {
	kept := make([]MovieID, 0, len(u.Watchlist))
	for _, existing := range u.Watchlist {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	changed := len(kept) != len(u.Watchlist)
	u.Watchlist = kept
	return changed
}

// ReviewFor returns the index of the review for movieID, or -1.
func (u *User) ReviewFor(movieID MovieID) int {
	for i := range u.Reviews {
		if u.Reviews[i].MovieID == movieID {
			return i
		}
	}
	return -1
}

// UpsertReview updates the existing review for movieID or appends a new one.
// Empty text keeps the previous text on update. The timestamp is reset either way.
func (u *User) UpsertReview(movieID MovieID, rating int, text string, now time.Time) (Review, bool) {
	if i := u.ReviewFor(movieID); i >= 0 {
		r := &u.Reviews[i]
		r.Rating = rating
		if text != "" {
			r.Text = text
		}
		r.CreatedAt = now
		return *r, false
	}
	r := Review{
		ID:        primitive.NewObjectID(),
		MovieID:   movieID,
		Rating:    rating,
		Text:      text,
		CreatedAt: now,
	}
	u.Reviews = append(u.Reviews, r)
	return r, true
}

// DeleteReview removes the review with the given id if present.
func (u *User) DeleteReview(reviewID string) bool {
	kept := make([]Review, 0, len(u.Reviews))
	for _, r := range u.Reviews {
		if r.ID.Hex() != reviewID {
			kept = append(kept, r)
		}
	}
	changed := len(kept) != len(u.Reviews)
	u.Reviews = kept
	return changed
}
