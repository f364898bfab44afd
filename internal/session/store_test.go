package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clinicdesk/internal/model"
	"clinicdesk/pkg/apierror"
	"clinicdesk/pkg/authapi"
)

type fakeAuth struct {
	loginResp  *authapi.LoginResponse
	loginErr   error
	meUser     *model.User
	meErr      error
	updated    *model.User
	updateErr  error
	logoutErr  error
	logoutHits int
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*authapi.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuth) LoginWithGoogle(ctx context.Context, credential string) (*authapi.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuth) Register(ctx context.Context, data model.RegisterData) (*authapi.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuth) Me(ctx context.Context) (*model.User, error) {
	return f.meUser, f.meErr
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.logoutHits++
	return f.logoutErr
}

func (f *fakeAuth) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.User, error) {
	return f.updated, f.updateErr
}

type fakeTokens struct {
	token  string
	setErr error
}

func (f *fakeTokens) Token() string { return f.token }

func (f *fakeTokens) SetToken(token string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.token = token
	return nil
}

func (f *fakeTokens) ClearToken() error {
	f.token = ""
	return nil
}

func owner() *model.User {
	return &model.User{ID: "u1", Email: "owner@example.com", Roles: []string{model.RoleOwner}}
}

func TestResumeWithoutToken(t *testing.T) {
	s := NewStore(&fakeAuth{meUser: owner()}, &fakeTokens{}, zap.NewNop())

	s.Resume(context.Background())

	assert.False(t, s.Authenticated())
	assert.True(t, s.Resolved())
	assert.Nil(t, s.User())
}

func TestResumeWithValidToken(t *testing.T) {
	s := NewStore(&fakeAuth{meUser: owner()}, &fakeTokens{token: "tok"}, zap.NewNop())

	s.Resume(context.Background())

	require.True(t, s.Authenticated())
	assert.Equal(t, "owner@example.com", s.User().Email)
}

func TestResumeSwallowsLookupFailure(t *testing.T) {
	auth := &fakeAuth{meErr: apierror.FromStatus(401, "expired")}
	s := NewStore(auth, &fakeTokens{token: "stale"}, zap.NewNop())

	s.Resume(context.Background())

	assert.False(t, s.Authenticated())
	assert.True(t, s.Resolved())
}

func TestLoginStoresTokenAndUser(t *testing.T) {
	tokens := &fakeTokens{}
	auth := &fakeAuth{
		loginResp: &authapi.LoginResponse{Token: "fresh", User: *owner()},
		meUser:    owner(),
	}
	s := NewStore(auth, tokens, zap.NewNop())

	user, err := s.Login(context.Background(), "owner@example.com", "pw")

	require.NoError(t, err)
	assert.Equal(t, "fresh", tokens.token)
	assert.Equal(t, "owner@example.com", user.Email)
	assert.True(t, s.Authenticated())
}

func TestLoginFailureLeavesTokenUnset(t *testing.T) {
	tokens := &fakeTokens{}
	auth := &fakeAuth{loginErr: apierror.FromStatus(401, "invalid credentials")}
	s := NewStore(auth, tokens, zap.NewNop())

	_, err := s.Login(context.Background(), "owner@example.com", "wrong")

	require.Error(t, err)
	assert.Empty(t, tokens.token)
	assert.False(t, s.Authenticated())
}

func TestLoginFallsBackToResponseUserWhenLookupFails(t *testing.T) {
	auth := &fakeAuth{
		loginResp: &authapi.LoginResponse{Token: "fresh", User: *owner()},
		meErr:     errors.New("me is down"),
	}
	s := NewStore(auth, &fakeTokens{}, zap.NewNop())

	user, err := s.Login(context.Background(), "owner@example.com", "pw")

	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", user.Email)
	assert.True(t, s.Authenticated())
}

func TestLoginPersistFailureSurfaces(t *testing.T) {
	tokens := &fakeTokens{setErr: errors.New("disk full")}
	auth := &fakeAuth{loginResp: &authapi.LoginResponse{Token: "fresh", User: *owner()}}
	s := NewStore(auth, tokens, zap.NewNop())

	_, err := s.Login(context.Background(), "owner@example.com", "pw")
	assert.Error(t, err)
}

func TestRegisterNeverStoresToken(t *testing.T) {
	tokens := &fakeTokens{}
	auth := &fakeAuth{loginResp: &authapi.LoginResponse{
		Token:   "should-be-ignored",
		Message: "check your inbox",
	}}
	s := NewStore(auth, tokens, zap.NewNop())

	message, err := s.Register(context.Background(), model.RegisterData{Email: "new@example.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "check your inbox", message)
	assert.Empty(t, tokens.token)
	assert.False(t, s.Authenticated())
}

func TestRegisterDefaultsMessage(t *testing.T) {
	auth := &fakeAuth{loginResp: &authapi.LoginResponse{}}
	s := NewStore(auth, &fakeTokens{}, zap.NewNop())

	message, err := s.Register(context.Background(), model.RegisterData{Email: "new@example.com", Password: "pw"})

	require.NoError(t, err)
	assert.NotEmpty(t, message)
}

func TestUpdateProfileFailureLeavesUser(t *testing.T) {
	auth := &fakeAuth{meUser: owner(), updateErr: apierror.FromStatus(500, "boom")}
	s := NewStore(auth, &fakeTokens{token: "tok"}, zap.NewNop())
	s.Resume(context.Background())

	_, err := s.UpdateProfile(context.Background(), model.ProfileUpdate{FirstName: "New"})

	require.Error(t, err)
	require.True(t, s.Authenticated())
	assert.Equal(t, "owner@example.com", s.User().Email)
}

func TestUpdateProfileReplacesUser(t *testing.T) {
	updated := owner()
	updated.FirstName = "New"
	auth := &fakeAuth{meUser: owner(), updated: updated}
	s := NewStore(auth, &fakeTokens{token: "tok"}, zap.NewNop())
	s.Resume(context.Background())

	user, err := s.UpdateProfile(context.Background(), model.ProfileUpdate{FirstName: "New"})

	require.NoError(t, err)
	assert.Equal(t, "New", user.FirstName)
	assert.Equal(t, "New", s.User().FirstName)
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	tokens := &fakeTokens{token: "tok"}
	auth := &fakeAuth{meUser: owner(), logoutErr: errors.New("server down")}
	s := NewStore(auth, tokens, zap.NewNop())
	s.Resume(context.Background())

	s.Logout(context.Background())

	assert.Equal(t, 1, auth.logoutHits)
	assert.Empty(t, tokens.token)
	assert.False(t, s.Authenticated())
}

func TestLogoutSkipsServerCallWithoutToken(t *testing.T) {
	auth := &fakeAuth{}
	s := NewStore(auth, &fakeTokens{}, zap.NewNop())

	s.Logout(context.Background())

	assert.Zero(t, auth.logoutHits)
}

func TestDropToken(t *testing.T) {
	tokens := &fakeTokens{token: "rejected"}
	s := NewStore(&fakeAuth{meUser: owner()}, tokens, zap.NewNop())
	s.Resume(context.Background())
	require.True(t, s.Authenticated())

	s.DropToken()

	assert.Empty(t, tokens.token)
	assert.False(t, s.Authenticated())
}
