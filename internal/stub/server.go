// Package stub is an in-memory rendition of both backends the client
// talks to. It exists so the CLI can be exercised offline and so the
// integration tests have a real HTTP surface to run against.
package stub

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"clinicdesk/prometheus"
)

// Server serves the auth and clinic APIs from a single in-memory store.
type Server struct {
	e      *echo.Echo
	store  *memStore
	log    *zap.Logger
	tokens *tokenIssuer
}

func New(log *zap.Logger) *Server {
	s := &Server{
		e:      echo.New(),
		store:  newMemStore(),
		log:    log,
		tokens: newTokenIssuer("dev-only-secret"),
	}
	s.e.HideBanner = true
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.e

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(requestIDMiddleware)
	e.Use(loggerMiddleware(s.log))
	e.Use(prometheus.MetricsMiddleware())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	auth := e.Group("/api/auth")
	auth.POST("/login", s.handleLogin)
	auth.POST("/oauth/google", s.handleGoogleLogin)
	auth.POST("/register", s.handleRegister)
	auth.GET("/me", s.handleMe, s.authMiddleware)
	auth.POST("/logout", s.handleLogout, s.authMiddleware)
	auth.PUT("/profile", s.handleUpdateProfile, s.authMiddleware)

	// Token verification and acceptance happen before the invitee has an
	// account, so they sit outside the auth group.
	e.GET("/api/invitations/verify", s.handleVerifyInvitation)
	e.POST("/api/invitations/accept", s.handleAcceptInvitation)

	api := e.Group("/api", s.authMiddleware)
	api.GET("/cabinets", s.handleListClinics)
	api.POST("/cabinets", s.handleCreateClinic)
	api.POST("/clinics/join", s.handleJoinClinic)
	api.POST("/clinics/:id/invite", s.handleGenerateInviteCode)

	api.GET("/patients", s.handleListPatients)
	api.POST("/patients", s.handleCreatePatient)
	api.PUT("/patients/:id", s.handleUpdatePatient)
	api.GET("/patients/stats/new-this-month", s.handlePatientStats)

	api.GET("/appointments", s.handleListAppointments)
	api.POST("/appointments", s.handleCreateAppointment)
	api.PUT("/appointments/:id", s.handleUpdateAppointment)

	api.GET("/dashboard", s.handleDashboard)
	api.GET("/dashboard/recent-appointments", s.handleRecentAppointments)

	api.GET("/medical-records/patient/:id", s.handleListRecords)
	api.POST("/medical-records", s.handleCreateRecord)

	api.POST("/invitations", s.handleSendInvitation)
	api.GET("/invitations/my", s.handleMyInvitations)
	api.DELETE("/invitations/:id", s.handleCancelInvitation)
	api.POST("/invitations/:id/resend", s.handleResendInvitation)

	api.GET("/doctor-assistants/doctor/by-clinic/:id", s.handleDoctorsByClinic)
}

// Handler exposes the stub as an http.Handler for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start blocks serving on the given address.
func (s *Server) Start(addr string) error {
	s.log.Info("stub backend listening", zap.String("addr", addr))
	return s.e.Start(addr)
}
