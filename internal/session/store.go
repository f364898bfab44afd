// Package session is the single source of truth for who is logged in.
package session

import (
	"context"

	"go.uber.org/zap"

	"clinicdesk/internal/model"
	"clinicdesk/pkg/authapi"
	"clinicdesk/prometheus"
)

// AuthAPI is the slice of the auth backend the store depends on.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*authapi.LoginResponse, error)
	LoginWithGoogle(ctx context.Context, credential string) (*authapi.LoginResponse, error)
	Register(ctx context.Context, data model.RegisterData) (*authapi.LoginResponse, error)
	Me(ctx context.Context) (*model.User, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.User, error)
}

// TokenStore persists the bearer token across runs.
type TokenStore interface {
	Token() string
	SetToken(token string) error
	ClearToken() error
}

// Store holds the authenticated user and bearer token. The user is present
// exactly when the last "who am I" lookup succeeded; a stored token alone
// does not make a session.
type Store struct {
	auth  AuthAPI
	state TokenStore
	log   *zap.Logger

	user     *model.User
	resolved bool
}

// NewStore wires a session store to its auth client and token storage.
func NewStore(auth AuthAPI, state TokenStore, log *zap.Logger) *Store {
	return &Store{auth: auth, state: state, log: log}
}

// Resume reconstructs the session from the stored token. Lookup failures
// are swallowed: an expired or rejected token leaves the store
// unauthenticated, it never blocks startup.
func (s *Store) Resume(ctx context.Context) {
	defer func() { s.resolved = true }()

	if s.state.Token() == "" {
		s.user = nil
		return
	}

	user, err := s.auth.Me(ctx)
	if err != nil {
		s.log.Warn("stored token did not resolve to a user", zap.Error(err))
		s.user = nil
		return
	}
	s.user = user
}

// Login exchanges credentials for a session. On success the token is
// persisted and the user record stored; on failure the token is left unset.
func (s *Store) Login(ctx context.Context, email, password string) (*model.User, error) {
	prometheus.RecordSessionOperation("login")

	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

// LoginWithGoogle exchanges a Google identity credential for a session.
// Same contract as Login.
func (s *Store) LoginWithGoogle(ctx context.Context, credential string) (*model.User, error) {
	prometheus.RecordSessionOperation("login_google")

	resp, err := s.auth.LoginWithGoogle(ctx, credential)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

func (s *Store) establish(ctx context.Context, resp *authapi.LoginResponse) (*model.User, error) {
	if err := s.state.SetToken(resp.Token); err != nil {
		return nil, err
	}

	user, err := s.auth.Me(ctx)
	if err != nil {
		// The grant itself succeeded; fall back to the user record the
		// login response carried.
		s.log.Warn("who-am-I lookup failed after login, using login response", zap.Error(err))
		user = &resp.User
	}
	s.user = user
	s.resolved = true

	s.log.Info("session established",
		zap.String("email", user.Email),
		zap.Strings("roles", user.Roles))
	return user, nil
}

// Register submits new-account data and returns the backend's confirmation
// message. No session is established; the user must log in afterwards.
func (s *Store) Register(ctx context.Context, data model.RegisterData) (string, error) {
	prometheus.RecordSessionOperation("register")

	resp, err := s.auth.Register(ctx, data)
	if err != nil {
		return "", err
	}

	message := resp.Message
	if message == "" {
		message = "Registration successful! Please check your email to activate your account."
	}
	s.log.Info("account registered", zap.String("email", data.Email))
	return message, nil
}

// UpdateProfile merges fields into the stored user record. On failure the
// previously resolved user is left intact.
func (s *Store) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.User, error) {
	prometheus.RecordSessionOperation("update_profile")

	user, err := s.auth.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	s.user = user
	return user, nil
}

// Logout invalidates the server-side session best-effort and clears the
// local token and user unconditionally.
func (s *Store) Logout(ctx context.Context) {
	prometheus.RecordSessionOperation("logout")

	if s.state.Token() != "" {
		if err := s.auth.Logout(ctx); err != nil {
			s.log.Warn("server-side logout failed", zap.Error(err))
		}
	}
	if err := s.state.ClearToken(); err != nil {
		s.log.Warn("failed to clear stored token", zap.Error(err))
	}
	s.user = nil
	s.log.Info("logged out")
}

// DropToken discards the stored token without a server round trip, used
// when the backend has already rejected it.
func (s *Store) DropToken() {
	if err := s.state.ClearToken(); err != nil {
		s.log.Warn("failed to clear stored token", zap.Error(err))
	}
	s.user = nil
}

// User returns the resolved user, or nil when unauthenticated.
func (s *Store) User() *model.User {
	return s.user
}

// Authenticated reports whether a user record has been resolved.
func (s *Store) Authenticated() bool {
	return s.user != nil
}

// Resolved reports whether the store has attempted to resolve the session
// at least once since startup.
func (s *Store) Resolved() bool {
	return s.resolved
}
