package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"github.com/Matheus-Salgado02/cinelist/logging"
	"github.com/Matheus-Salgado02/cinelist/models"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionChanged means the user logged out or switched accounts while a
	// request was in flight; its result was not applied.
	ErrSessionChanged = errors.New("session changed during request")
)

// Session is the client's view of the signed-in user: a bearer token and the
// last known user snapshot. Snapshots handed out are clones.
type Session struct {
	api  *API
	path string

	mu     sync.Mutex
	token  string
	user   *models.User
	nextID int
	subs   map[int]func(*models.User)
}

type persistedSession struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// NewSession restores a persisted session from path when one exists. An empty
// path keeps the session in memory only.
func NewSession(api *API, path string) *Session {
	s := &Session{api: api, path: path, subs: map[int]func(*models.User){}}
	s.restore()
	return s
}

func (s *Session) restore() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Warn().Err(err).Str("path", s.path).Msg("Could not read session file")
		}
		return
	}
	var p persistedSession
	if err := json.Unmarshal(data, &p); err != nil || p.Token == "" {
		logging.Warn().Str("path", s.path).Msg("Discarding unreadable session file")
		return
	}
	if p.User != nil {
		p.User.Normalize()
	}
	s.token, s.user = p.Token, p.User
}

// persist must be called with mu held.
func (s *Session) persist() {
	if s.path == "" {
		return
	}
	if s.token == "" {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.Warn().Err(err).Msg("Could not remove session file")
		}
		return
	}
	data, err := json.Marshal(persistedSession{Token: s.token, User: s.user})
	if err == nil {
		if dir := filepath.Dir(s.path); dir != "." {
			err = os.MkdirAll(dir, 0o700)
		}
	}
	if err == nil {
		err = os.WriteFile(s.path, data, 0o600)
	}
	if err != nil {
		logging.Warn().Err(err).Str("path", s.path).Msg("Could not persist session")
	}
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Subscribe registers fn to receive every published snapshot (nil after
// logout). The returned func unsubscribes.
func (s *Session) Subscribe(fn func(*models.User)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Update implements Store over the user snapshot.
func (s *Session) Update(fn func(*models.User) (*models.User, bool)) *models.User {
	s.mu.Lock()
	return s.updateLocked(fn)
}

// updateFor applies fn only while the session still holds token, so a
// response that lands after logout or a re-login is dropped.
func (s *Session) updateFor(token string, fn func(*models.User) (*models.User, bool)) (*models.User, bool) {
	s.mu.Lock()
	if s.token != token {
		current := s.user.Clone()
		s.mu.Unlock()
		return current, false
	}
	return s.updateLocked(fn), true
}

// updateLocked is entered with mu held and releases it before notifying.
func (s *Session) updateLocked(fn func(*models.User) (*models.User, bool)) *models.User {
	next, changed := fn(s.user.Clone())
	if !changed {
		s.mu.Unlock()
		return next
	}
	s.user = next
	s.persist()
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, next)
	return next.Clone()
}

// tokenStore is the session seen through the token a mutation started with.
type tokenStore struct {
	s     *Session
	token string
}

func (t tokenStore) Update(fn func(*models.User) (*models.User, bool)) *models.User {
	u, _ := t.s.updateFor(t.token, fn)
	return u
}

func (s *Session) subscribers() []func(*models.User) {
	out := make([]func(*models.User), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(*models.User), u *models.User) {
	for _, fn := range subs {
		fn(u.Clone())
	}
}

func (s *Session) set(token string, u *models.User) {
	if u != nil {
		u.Normalize()
	}
	s.mu.Lock()
	s.token, s.user = token, u
	s.persist()
	subs := s.subscribers()
	s.mu.Unlock()
	notify(subs, u)
}

// replaceUser installs the server's copy if the session still holds token.
func (s *Session) replaceUser(token string, u *models.User) error {
	if _, ok := s.updateFor(token, func(*models.User) (*models.User, bool) { return u, true }); !ok {
		return ErrSessionChanged
	}
	return nil
}

func (s *Session) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	res, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.set(res.Token, res.User)
	return res.User.Clone(), nil
}

// Login accepts either an email or a username as the identifier.
func (s *Session) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	req := models.LoginRequest{Password: password}
	if strings.Contains(identifier, "@") {
		req.Email = identifier
	} else {
		req.Username = identifier
	}
	res, err := s.api.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	s.set(res.Token, res.User)
	return res.User.Clone(), nil
}

// Logout forgets the token locally; the server holds no session state.
func (s *Session) Logout() {
	s.set("", nil)
}

// logoutIf ends the session only if it still holds token.
func (s *Session) logoutIf(token string) {
	s.mu.Lock()
	if s.token != token {
		s.mu.Unlock()
		return
	}
	s.token, s.user = "", nil
	s.persist()
	subs := s.subscribers()
	s.mu.Unlock()
	notify(subs, nil)
}

// Validate refreshes the snapshot from the server. A 401 destroys the session.
func (s *Session) Validate(ctx context.Context) (*models.User, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	u, err := s.api.Me(ctx, token)
	if err != nil {
		if IsUnauthorized(err) {
			s.logoutIf(token)
		}
		return nil, err
	}
	if err := s.replaceUser(token, u); err != nil {
		return nil, err
	}
	return u.Clone(), nil
}

func (s *Session) UpdateProfile(ctx context.Context, update *models.ProfileUpdate) (*models.User, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	u, err := s.api.UpdateProfile(ctx, token, update)
	if err != nil {
		return nil, err
	}
	if err := s.replaceUser(token, u); err != nil {
		return nil, err
	}
	return u.Clone(), nil
}

// UpsertReview is not optimistic: the snapshot changes only once the server
// answers.
func (s *Session) UpsertReview(ctx context.Context, movieID models.MovieID, rating int, text string) (*models.ReviewSummary, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	u, review, err := s.api.UpsertReview(ctx, token, movieID, rating, text)
	if err != nil {
		return nil, err
	}
	if u != nil {
		if err := s.replaceUser(token, u); err != nil {
			return nil, err
		}
	}
	return review, nil
}

func (s *Session) DeleteReview(ctx context.Context, reviewID string) error {
	token := s.Token()
	if token == "" {
		return ErrNotAuthenticated
	}
	u, err := s.api.DeleteReview(ctx, token, reviewID)
	if err != nil {
		return err
	}
	return s.replaceUser(token, u)
}
