package stub

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware propagates or assigns a request id
func requestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDHeader, requestID)
		c.Response().Header().Set(requestIDHeader, requestID)
		return next(c)
	}
}

// loggerMiddleware sets a request-scoped logger and logs each request
func loggerMiddleware(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			requestID, _ := c.Get(requestIDHeader).(string)
			ctxLogger := log.With(zap.String("request_id", requestID))
			c.Set("logger", ctxLogger)

			err := next(c)

			ctxLogger.Info("HTTP Request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
			)
			return err
		}
	}
}

// fromEcho retrieves the request-scoped logger
func fromEcho(c echo.Context) *zap.Logger {
	if logger, ok := c.Get("logger").(*zap.Logger); ok {
		return logger
	}
	return zap.L()
}

// authMiddleware resolves the bearer token to a user record
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing or malformed token"})
		}

		claims, err := s.tokens.Validate(parts[1])
		if err != nil {
			fromEcho(c).Warn("token validation failed", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		user, ok := s.store.userByID(claims.UserID)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
		}

		c.Set("user", user)
		c.Set("logger", fromEcho(c).With(zap.String("user_id", user.ID)))
		return next(c)
	}
}

// currentUser returns the user resolved by authMiddleware
func currentUser(c echo.Context) *userRecord {
	u, _ := c.Get("user").(*userRecord)
	return u
}
