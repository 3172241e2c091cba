package data_access

import (
	"context"
	"sync"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Matheus-Salgado02/cinelist/models"
)

// MemoryStore is a process-local user store with the same sparse-unique
// semantics as the Mongo repository. It backs STORE_DRIVER=memory and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
	order []primitive.ObjectID

	disconnected atomic.Bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[primitive.ObjectID]*models.User)}
}

// Connected implements the health capability. It is true unless a test
// flipped it with SetConnected.
func (s *MemoryStore) Connected() bool {
	return !s.disconnected.Load()
}

func (s *MemoryStore) SetConnected(ok bool) {
	s.disconnected.Store(!ok)
}

func (s *MemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if err := s.checkUnique(user.ID, user.Username, user.Email); err != nil {
		return err
	}
	stored := user.Clone()
	s.users[user.ID] = stored
	s.order = append(s.order, user.ID)
	return nil
}

// checkUnique must be called with mu held.
func (s *MemoryStore) checkUnique(self primitive.ObjectID, username, email string) error {
	for id, u := range s.users {
		if id == self {
			continue
		}
		if username != "" && u.Username == username {
			return &DuplicateKeyError{Field: "username"}
		}
		if email != "" && u.Email == email {
			return &DuplicateKeyError{Field: "email"}
		}
	}
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(u), nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findFirst(func(u *models.User) bool { return email != "" && u.Email == email })
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return s.findFirst(func(u *models.User) bool { return username != "" && u.Username == username })
}

func (s *MemoryStore) findFirst(match func(*models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if u := s.users[id]; match(u) {
			return snapshot(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateProfile(_ context.Context, id primitive.ObjectID, p *models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := u.Clone()
	if p.Username != nil {
		next.Username = *p.Username
	}
	if p.Email != nil {
		next.Email = *p.Email
	}
	if err := s.checkUnique(id, next.Username, next.Email); err != nil {
		return nil, err
	}
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Bio != nil {
		next.Bio = *p.Bio
	}
	if p.FavoriteGenres != nil {
		next.FavoriteGenres = append([]string(nil), p.FavoriteGenres...)
	}
	if p.Stats != nil {
		next.Stats = p.Stats
	}
	s.users[id] = next
	return snapshot(next), nil
}

func (s *MemoryStore) SetWatchlist(_ context.Context, id primitive.ObjectID, watchlist []models.MovieID) (*models.User, error) {
	return s.mutate(id, func(u *models.User) {
		u.Watchlist = append([]models.MovieID{}, watchlist...)
	})
}

func (s *MemoryStore) SetReviews(_ context.Context, id primitive.ObjectID, reviews []models.Review) (*models.User, error) {
	return s.mutate(id, func(u *models.User) {
		u.Reviews = append([]models.Review{}, reviews...)
	})
}

func (s *MemoryStore) mutate(id primitive.ObjectID, fn func(*models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	fn(u)
	return snapshot(u), nil
}

func (s *MemoryStore) FindByReviewedMovie(_ context.Context, movieID models.MovieID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.User
	for _, id := range s.order {
		u := s.users[id]
		if u.ReviewFor(movieID) >= 0 {
			out = append(out, snapshot(u))
		}
	}
	return out, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, snapshot(s.users[id]))
	}
	return out, nil
}

func snapshot(u *models.User) *models.User {
	c := u.Clone()
	c.Normalize()
	return c
}
