// Package http provides HTTP handlers and middleware for the zero-trust
// session layer.
package http

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/trustkit/internal/errors"
	"github.com/allisson/trustkit/internal/httputil"
	zerotrustUseCase "github.com/allisson/trustkit/internal/zerotrust/usecase"
)

type contextKey string

const sessionTokenContextKey contextKey = "session_token"

// SessionToken returns the bearer token extracted by SessionMiddleware.
func SessionToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(sessionTokenContextKey).(string)
	return token, ok
}

// SessionMiddleware extracts the session bearer token from the Authorization
// header and rejects requests without a valid session. The token is stored in
// the request context for downstream authorization checks.
//
// Authorization header format: "Bearer <token>" (case-insensitive "bearer").
func SessionMiddleware(sessionManager zerotrustUseCase.SessionManager, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearerToken(c)
		if !ok {
			logger.Debug("session check failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !sessionManager.ValidateSession(c.Request.Context(), token) {
			logger.Debug("session check failed: invalid or expired session")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		ctx := context.WithValue(c.Request.Context(), sessionTokenContextKey, token)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireOperation guards a route behind an operation authorization: session
// validity, cooldown and rate limit are all checked before the handler runs.
// MUST be used after SessionMiddleware.
func RequireOperation(sessionManager zerotrustUseCase.SessionManager, operationName string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := SessionToken(c.Request.Context())
		if !ok {
			logger.Error("operation guard: no session token in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if err := authorize(c, sessionManager, token, operationName); err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	const bearerPrefix = "bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := authHeader[len(bearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}
