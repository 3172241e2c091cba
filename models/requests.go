package models

import "encoding/json"

type RegisterRequest struct {
	Email    string `json:"email" binding:"omitempty,trimmed_email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

// ProfileUpdate carries the fields PUT /auth/me may change. Anything else in
// the body, password included, is dropped during decoding.
type ProfileUpdate struct {
	Name           *string        `json:"name"`
	Username       *string        `json:"username"`
	Email          *string        `json:"email" binding:"omitempty,trimmed_email"`
	Bio            *string        `json:"bio"`
	FavoriteGenres []string       `json:"favoriteGenres"`
	Stats          map[string]any `json:"stats"`
}

// Empty reports whether the update would change nothing.
func (p *ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Username == nil && p.Email == nil && p.Bio == nil &&
		p.FavoriteGenres == nil && p.Stats == nil
}

type WatchlistRequest struct {
	MovieID *MovieID `json:"movieId" binding:"required"`
}

// ReviewRequest keeps the rating as a json.Number so "4" and 4 both bind;
// range checks happen in the review service.
type ReviewRequest struct {
	MovieID *MovieID    `json:"movieId" binding:"required"`
	Rating  json.Number `json:"rating"`
	Text    string      `json:"text"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token,omitempty"`
}

type UserResponse struct {
	User *User `json:"user"`
}

type ReviewResponse struct {
	User   *User          `json:"user"`
	Review *ReviewSummary `json:"review"`
}

type ReviewListResponse struct {
	Reviews []ReviewListing `json:"reviews"`
}
