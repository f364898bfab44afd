package stub

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"clinicdesk/internal/model"
)

func (s *Server) handleLogin(c echo.Context) error {
	log := fromEcho(c)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	user, ok := s.store.userByEmail(req.Email)
	if !ok {
		log.Warn("login for unknown user", zap.String("email", req.Email))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		log.Warn("invalid password", zap.String("email", req.Email))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		log.Error("failed to issue token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("user logged in", zap.String("email", user.Email))
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": user.User})
}

// handleGoogleLogin exchanges a Google identity credential for a token.
// Any non-empty credential is accepted; a first-time subject is
// provisioned with the placeholder role, pending profile completion.
func (s *Server) handleGoogleLogin(c echo.Context) error {
	log := fromEcho(c)

	var req struct {
		Credential string `json:"credential"`
	}
	if err := c.Bind(&req); err != nil || req.Credential == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "credential is required"})
	}

	email := req.Credential + "@google-oauth.local"
	user, ok := s.store.userByEmail(email)
	if !ok {
		user, _ = s.store.addUser(email, nil, "", "", []string{model.RoleUser})
		log.Info("provisioned OAuth account", zap.String("email", email))
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		log.Error("failed to issue token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": user.User})
}

func (s *Server) handleRegister(c echo.Context) error {
	log := fromEcho(c)

	var req model.RegisterData
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user, created := s.store.addUser(req.Email, hash, req.FirstName, req.LastName, []string{role})
	if !created {
		log.Warn("duplicate registration", zap.String("email", req.Email))
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	log.Info("user registered", zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message":                   "Registration successful! Please check your email to activate your account.",
		"requiresEmailVerification": true,
		"user":                      user.User,
	})
}

func (s *Server) handleMe(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c).User)
}

func (s *Server) handleLogout(c echo.Context) error {
	// Tokens are stateless; logout is acknowledged so clients can clear
	// their side.
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (s *Server) handleUpdateProfile(c echo.Context) error {
	log := fromEcho(c)

	var req model.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	user, ok := s.store.updateUser(currentUser(c).ID, req)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	log.Info("profile updated", zap.String("email", user.Email))
	return c.JSON(http.StatusOK, user.User)
}
