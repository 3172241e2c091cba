package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Matheus-Salgado02/cinelist/helper"
	"github.com/Matheus-Salgado02/cinelist/models"
)

// DirectoryEntry is the public projection served by GET /users.
type DirectoryEntry struct {
	ID        primitive.ObjectID `json:"_id"`
	Username  string             `json:"username,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// CreatedUser is the body returned by POST /users.
type CreatedUser struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
}

// UserDirectory serves the legacy username-only user endpoints.
type UserDirectory struct {
	userRepo UserStore
	health   Health
	hasher   *PasswordHasher
	now      func() time.Time
}

func NewUserDirectory(userRepo UserStore, health Health, hasher *PasswordHasher) *UserDirectory {
	if health == nil {
		health = AlwaysConnected
	}
	return &UserDirectory{userRepo: userRepo, health: health, hasher: hasher, now: time.Now}
}

func (d *UserDirectory) List(ctx context.Context) ([]DirectoryEntry, error) {
	if err := guard(d.health); err != nil {
		return nil, err
	}
	users, err := d.userRepo.List(ctx)
	if err != nil {
		return nil, storeError(err, "")
	}
	out := make([]DirectoryEntry, 0, len(users))
	for _, u := range users {
		out = append(out, DirectoryEntry{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt})
	}
	return out, nil
}

func (d *UserDirectory) Create(ctx context.Context, req *models.CreateUserRequest) (*CreatedUser, error) {
	if err := guard(d.health); err != nil {
		return nil, err
	}
	username := helper.CleanString(req.Username)
	if username == "" || req.Password == "" {
		return nil, BadRequest("username and password required")
	}

	hashed, err := d.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: username, Password: hashed, CreatedAt: d.now().UTC()}
	user.Normalize()
	if err := d.userRepo.Create(ctx, user); err != nil {
		if KindOf(storeError(err, "")) == KindConflict {
			return nil, Conflict("username already exists")
		}
		return nil, storeError(err, "")
	}
	return &CreatedUser{ID: user.ID, Username: user.Username}, nil
}
