package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/trustkit/internal/errors"
	"github.com/allisson/trustkit/internal/httputil"
	customValidation "github.com/allisson/trustkit/internal/validation"
	zerotrustDomain "github.com/allisson/trustkit/internal/zerotrust/domain"
	"github.com/allisson/trustkit/internal/zerotrust/http/dto"
	zerotrustUseCase "github.com/allisson/trustkit/internal/zerotrust/usecase"
)

// SessionHandler handles HTTP requests for session and attestation operations.
type SessionHandler struct {
	sessionManager  zerotrustUseCase.SessionManager
	sessionDuration int64
	logger          *slog.Logger
}

// NewSessionHandler creates a new session handler with required dependencies.
// sessionDurationMS is reported to clients when a session is issued.
func NewSessionHandler(
	sessionManager zerotrustUseCase.SessionManager,
	sessionDurationMS int64,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessionManager:  sessionManager,
		sessionDuration: sessionDurationMS,
		logger:          logger,
	}
}

// StartHandler issues a fresh session.
// POST /v1/sessions
// Returns 201 Created with the bearer token, shown exactly once.
func (h *SessionHandler) StartHandler(c *gin.Context) {
	token, err := h.sessionManager.StartSession(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.SessionResponse{
		Token:     token,
		ExpiresIn: h.sessionDuration,
	})
}

// StatusHandler reports the state of the presented session.
// GET /v1/sessions/current
func (h *SessionHandler) StatusHandler(c *gin.Context) {
	token, ok := extractBearerToken(c)
	if !ok {
		c.JSON(http.StatusOK, dto.SessionStatusResponse{})
		return
	}

	status := h.sessionManager.SessionStatus(c.Request.Context(), token)
	c.JSON(http.StatusOK, dto.SessionStatusResponse{
		Active:      status.Active,
		RemainingMS: status.Remaining.Milliseconds(),
	})
}

// EndHandler invalidates the active session.
// DELETE /v1/sessions/current
// Returns 204 No Content.
func (h *SessionHandler) EndHandler(c *gin.Context) {
	if err := h.sessionManager.EndSession(c.Request.Context()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// AuthorizeHandler admits one execution of a sensitive operation.
// POST /v1/operations/:name/authorize
// Returns 200 OK when authorized; cooldown and rate limit violations map to
// 429, invalid sessions to 401.
func (h *SessionHandler) AuthorizeHandler(c *gin.Context) {
	token, ok := extractBearerToken(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	operationName := c.Param("name")
	if err := authorize(c, h.sessionManager, token, operationName); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.AuthorizationResponse{
		Operation:  operationName,
		Authorized: true,
	})
}

// AttestationHandler runs an environment attestation check.
// GET /v1/attestation
func (h *SessionHandler) AttestationHandler(c *gin.Context) {
	trusted := h.sessionManager.CheckEnvironment(c.Request.Context())
	c.JSON(http.StatusOK, dto.AttestationResponse{Trusted: trusted})
}

// SuspiciousHandler reports the persisted suspicious flag.
// GET /v1/environment/suspicious
func (h *SessionHandler) SuspiciousHandler(c *gin.Context) {
	suspicious, err := h.sessionManager.Suspicious(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.SuspiciousResponse{Suspicious: suspicious})
}

// MarkSuspiciousHandler persists the suspicious flag.
// POST /v1/environment/suspicious
// Returns 204 No Content.
func (h *SessionHandler) MarkSuspiciousHandler(c *gin.Context) {
	var req dto.MarkSuspiciousRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.sessionManager.MarkSuspicious(c.Request.Context(), req.Reason); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearSuspiciousHandler removes the persisted suspicious flag.
// DELETE /v1/environment/suspicious
// Returns 204 No Content.
func (h *SessionHandler) ClearSuspiciousHandler(c *gin.Context) {
	if err := h.sessionManager.ClearSuspicious(c.Request.Context()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// authorize parses the operation name and requests admission from the session
// manager.
func authorize(c *gin.Context, sessionManager zerotrustUseCase.SessionManager, token, operationName string) error {
	operation, err := zerotrustDomain.ParseSensitiveOperation(operationName)
	if err != nil {
		return err
	}
	return sessionManager.AuthorizeOperation(c.Request.Context(), token, operation)
}
