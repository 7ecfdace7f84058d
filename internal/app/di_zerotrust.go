package app

import (
	"fmt"

	"github.com/allisson/trustkit/internal/ratelimit"
	zerotrustHTTP "github.com/allisson/trustkit/internal/zerotrust/http"
	zerotrustService "github.com/allisson/trustkit/internal/zerotrust/service"
	zerotrustUseCase "github.com/allisson/trustkit/internal/zerotrust/usecase"
)

// TokenService returns the session token service.
func (c *Container) TokenService() (zerotrustService.TokenService, error) {
	var err error
	c.tokenServiceInit.Do(func() {
		c.tokenService, err = zerotrustService.NewTokenService()
		if err != nil {
			c.initErrors["tokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}

// Attestor returns the environment attestor.
func (c *Container) Attestor() zerotrustService.Attestor {
	c.attestorInit.Do(func() {
		c.attestor = zerotrustService.NewDigestAttestor(c.config.TrustAnchor, c.config.TrustAnchorPin)
	})
	return c.attestor
}

// OperationLimiter returns the sliding-window limiter for sensitive operations.
func (c *Container) OperationLimiter() *ratelimit.Limiter {
	c.opLimiterInit.Do(func() {
		c.opLimiter = ratelimit.NewLimiter(c.config.RateLimitWindow, c.config.RateLimitMaxAttempts)
	})
	return c.opLimiter
}

// SessionManager returns the zero-trust session manager.
func (c *Container) SessionManager() (zerotrustUseCase.SessionManager, error) {
	var err error
	c.sessionManagerInit.Do(func() {
		c.sessionManager, err = c.initSessionManager()
		if err != nil {
			c.initErrors["sessionManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionManager"]; exists {
		return nil, storedErr
	}
	return c.sessionManager, nil
}

// SessionHandler returns the HTTP handler for session and operation authorization.
func (c *Container) SessionHandler() (*zerotrustHTTP.SessionHandler, error) {
	var err error
	c.sessionHandlerInit.Do(func() {
		c.sessionHandler, err = c.initSessionHandler()
		if err != nil {
			c.initErrors["sessionHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionHandler"]; exists {
		return nil, storedErr
	}
	return c.sessionHandler, nil
}

// initSessionManager creates the session manager with all its dependencies.
func (c *Container) initSessionManager() (zerotrustUseCase.SessionManager, error) {
	secureStoreUseCase, err := c.SecureStoreUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get secure store use case for session manager: %w", err)
	}

	tokenService, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for session manager: %w", err)
	}

	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for session manager: %w", err)
	}

	baseManager := zerotrustUseCase.NewSessionManager(
		secureStoreUseCase,
		tokenService,
		c.Attestor(),
		c.OperationLimiter(),
		auditLogUseCase,
		c.config.SessionDuration,
		c.config.OperationCooldown,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for session manager: %w", err)
		}
		return zerotrustUseCase.NewSessionManagerWithMetrics(baseManager, businessMetrics), nil
	}

	return baseManager, nil
}

// initSessionHandler creates the session HTTP handler with all its dependencies.
func (c *Container) initSessionHandler() (*zerotrustHTTP.SessionHandler, error) {
	sessionManager, err := c.SessionManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get session manager for session handler: %w", err)
	}

	logger := c.Logger()

	return zerotrustHTTP.NewSessionHandler(sessionManager, c.config.SessionDuration.Milliseconds(), logger), nil
}
