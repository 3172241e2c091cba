package services

import (
	"context"
	"errors"
	"time"

	"github.com/Matheus-Salgado02/cinelist/data_access"
	"github.com/Matheus-Salgado02/cinelist/helper"
	"github.com/Matheus-Salgado02/cinelist/logging"
	"github.com/Matheus-Salgado02/cinelist/metrics"
	"github.com/Matheus-Salgado02/cinelist/models"
)

// AuthService implements registration, login and profile access.
type AuthService struct {
	userRepo UserStore
	health   Health
	tokens   *TokenService
	hasher   *PasswordHasher
	now      func() time.Time
}

func NewAuthService(userRepo UserStore, health Health, tokens *TokenService, hasher *PasswordHasher) *AuthService {
	if health == nil {
		health = AlwaysConnected
	}
	return &AuthService{
		userRepo: userRepo,
		health:   health,
		tokens:   tokens,
		hasher:   hasher,
		now:      time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	resp, err := s.register(ctx, req)
	metrics.AuthAttempts.WithLabelValues("register", KindOf(err).String()).Inc()
	return resp, err
}

func (s *AuthService) register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if err := guard(s.health); err != nil {
		return nil, err
	}
	email := helper.CleanString(req.Email)
	username := helper.CleanString(req.Username)
	if (email == "" && username == "") || req.Password == "" {
		return nil, BadRequest("email/username and password required")
	}

	if err := s.ensureAvailable(ctx, email, username); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     email,
		Username:  username,
		Name:      helper.CleanString(req.Name),
		Password:  hashedPassword,
		CreatedAt: s.now().UTC(),
	}
	user.Normalize()

	// A concurrent registration can still lose the race at the unique index.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storeError(err, "User not found")
	}

	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("user_id", user.ID.Hex()).
		Str("email", helper.MaskEmail(email)).
		Msg("user registered")

	return &models.AuthResponse{User: user.Sanitized(), Token: token}, nil
}

// ensureAvailable checks every supplied identifier before insert.
func (s *AuthService) ensureAvailable(ctx context.Context, email, username string) error {
	lookups := []struct {
		value string
		find  func(context.Context, string) (*models.User, error)
	}{
		{email, s.userRepo.FindByEmail},
		{username, s.userRepo.FindByUsername},
	}
	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		_, err := l.find(ctx, l.value)
		if err == nil {
			return Conflict("User already in use")
		}
		if !errors.Is(err, data_access.ErrNotFound) {
			return storeError(err, "")
		}
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	resp, err := s.login(ctx, req)
	metrics.AuthAttempts.WithLabelValues("login", KindOf(err).String()).Inc()
	return resp, err
}

func (s *AuthService) login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := guard(s.health); err != nil {
		return nil, err
	}
	email := helper.CleanString(req.Email)
	username := helper.CleanString(req.Username)
	if (email == "" && username == "") || req.Password == "" {
		return nil, BadRequest("email/username and password required")
	}

	user, err := s.findByIdentifier(ctx, email, username)
	if errors.Is(err, data_access.ErrNotFound) {
		return nil, Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, storeError(err, "")
	}
	if !s.hasher.Compare(user.Password, req.Password) {
		logging.Ctx(ctx).Warn().Str("user_id", user.ID.Hex()).Msg("login rejected: password mismatch")
		return nil, Unauthorized("Invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: user.Sanitized(), Token: token}, nil
}

// findByIdentifier prefers email when both are supplied.
func (s *AuthService) findByIdentifier(ctx context.Context, email, username string) (*models.User, error) {
	if email != "" {
		return s.userRepo.FindByEmail(ctx, email)
	}
	return s.userRepo.FindByUsername(ctx, username)
}

// Authenticate verifies a bearer token and returns the user id it carries.
func (s *AuthService) Authenticate(token string) (string, error) {
	return s.tokens.Verify(token)
}

// WhoAmI resolves the caller from a bearer token, falling back to body
// credentials when the token is absent or does not verify.
func (s *AuthService) WhoAmI(ctx context.Context, token string, creds *models.LoginRequest) (*models.User, error) {
	if err := guard(s.health); err != nil {
		return nil, err
	}
	if token != "" {
		if userID, err := s.tokens.Verify(token); err == nil {
			user, err := loadUser(ctx, s.userRepo, userID)
			if err != nil {
				return nil, err
			}
			return user.Sanitized(), nil
		}
	}

	if creds == nil {
		return nil, Unauthorized("No token and no credentials provided")
	}
	email := helper.CleanString(creds.Email)
	username := helper.CleanString(creds.Username)
	if (email == "" && username == "") || creds.Password == "" {
		return nil, Unauthorized("No token and no credentials provided")
	}

	user, err := s.findByIdentifier(ctx, email, username)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	if !s.hasher.Compare(user.Password, creds.Password) {
		return nil, Unauthorized("Invalid credentials")
	}
	return user.Sanitized(), nil
}

// UpdateProfile merges the whitelisted profile fields. The request type has
// no password field, so a password in the body never reaches the store.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update *models.ProfileUpdate) (*models.User, error) {
	if err := guard(s.health); err != nil {
		return nil, err
	}
	user, err := loadUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if update == nil || update.Empty() {
		return user.Sanitized(), nil
	}

	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := helper.CleanString(*p)
		return &v
	}
	update.Username = trim(update.Username)
	update.Email = trim(update.Email)

	updated, err := s.userRepo.UpdateProfile(ctx, user.ID, update)
	metrics.UserMutations.WithLabelValues("profile", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return updated.Sanitized(), nil
}
