// Package http provides HTTP handlers for secure store operations. Values are
// base64-encoded on the wire and stored with authenticated encryption at rest.
package http

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	auditDomain "github.com/allisson/trustkit/internal/audit/domain"
	auditUseCase "github.com/allisson/trustkit/internal/audit/usecase"
	"github.com/allisson/trustkit/internal/httputil"
	"github.com/allisson/trustkit/internal/securestore/http/dto"
	storeUseCase "github.com/allisson/trustkit/internal/securestore/usecase"
	customValidation "github.com/allisson/trustkit/internal/validation"
)

// RecordHandler handles HTTP requests for secure store operations. Every
// mutation is mirrored into the audit log.
type RecordHandler struct {
	storeUseCase    storeUseCase.SecureStoreUseCase
	auditLogUseCase auditUseCase.AuditLogUseCase
	logger          *slog.Logger
}

// NewRecordHandler creates a new record handler with required dependencies.
func NewRecordHandler(
	store storeUseCase.SecureStoreUseCase,
	auditLog auditUseCase.AuditLogUseCase,
	logger *slog.Logger,
) *RecordHandler {
	return &RecordHandler{
		storeUseCase:    store,
		auditLogUseCase: auditLog,
		logger:          logger,
	}
}

// StoreHandler stores a record, optionally with a per-user integrity tag.
// PUT /v1/records/:key
// Returns 204 No Content on success.
func (h *RecordHandler) StoreHandler(c *gin.Context) {
	key := c.Param("key")
	if err := h.validateKey(key); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.StoreRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	value, err := base64.StdEncoding.DecodeString(req.Value)
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid base64 value: %w", err), h.logger)
		return
	}

	if req.UserID != "" {
		err = h.storeUseCase.StoreWithIntegrity(c.Request.Context(), key, value, req.UserID)
	} else {
		err = h.storeUseCase.Store(c.Request.Context(), key, value)
	}
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.auditLogUseCase.Record(c.Request.Context(), auditDomain.EventTypeDataAccess, map[string]string{
		"action": "record_stored",
		"key":    key,
	})
	h.storeUseCase.LogAccess(c.Request.Context(), "data_access", "record stored: "+key)

	c.Status(http.StatusNoContent)
}

// GetHandler returns a stored record value.
// GET /v1/records/:key
// Returns 200 OK with the base64-encoded value.
func (h *RecordHandler) GetHandler(c *gin.Context) {
	key := c.Param("key")
	if err := h.validateKey(key); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	value, err := h.storeUseCase.Get(c.Request.Context(), key)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.auditLogUseCase.Record(c.Request.Context(), auditDomain.EventTypeDataAccess, map[string]string{
		"action": "record_read",
		"key":    key,
	})

	c.JSON(http.StatusOK, dto.RecordResponse{
		Key:   key,
		Value: base64.StdEncoding.EncodeToString(value),
	})
}

// VerifyHandler checks the integrity tag of a stored record.
// GET /v1/records/:key/verify?user_id=<id>
// Returns 200 OK with the verification result. Failures are reported in the
// body, never as an HTTP error.
func (h *RecordHandler) VerifyHandler(c *gin.Context) {
	key := c.Param("key")
	if err := h.validateKey(key); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	userID := c.Query("user_id")
	if userID == "" {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("user_id query parameter is required"), h.logger)
		return
	}

	valid := h.storeUseCase.VerifyIntegrity(c.Request.Context(), key, userID)
	if !valid {
		h.auditLogUseCase.Record(c.Request.Context(), auditDomain.EventTypeSecurityEvent, map[string]string{
			"action": "integrity_check_failed",
			"key":    key,
		})
	}

	c.JSON(http.StatusOK, dto.VerifyResponse{Key: key, Valid: valid})
}

// RotateHandler runs a key rotation check.
// POST /v1/store/rotate
// Returns 200 OK reporting whether rotation occurred.
func (h *RecordHandler) RotateHandler(c *gin.Context) {
	rotated, err := h.storeUseCase.RotateKeyIfDue(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if rotated {
		h.auditLogUseCase.Record(c.Request.Context(), auditDomain.EventTypeKeyRotation, map[string]string{
			"action": "data_key_rotated",
		})
	}

	c.JSON(http.StatusOK, dto.RotationResponse{Rotated: rotated})
}

// InfoHandler returns display facts about the store's protection state.
// GET /v1/store/info
func (h *RecordHandler) InfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.InfoResponse{Info: h.storeUseCase.Info(c.Request.Context())})
}

// ClearHandler irreversibly erases all stored data. The route is guarded by
// the clear_data operation authorization.
// DELETE /v1/store
// Returns 204 No Content on success.
func (h *RecordHandler) ClearHandler(c *gin.Context) {
	if err := h.storeUseCase.ClearAll(c.Request.Context()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.auditLogUseCase.Record(c.Request.Context(), auditDomain.EventTypeSecurityEvent, map[string]string{
		"action": "store_cleared",
	})

	c.Status(http.StatusNoContent)
}

// AccessLogsHandler returns the local access log. The route is guarded by the
// view_logs operation authorization.
// GET /v1/access-logs
func (h *RecordHandler) AccessLogsHandler(c *gin.Context) {
	logs, err := h.storeUseCase.AccessLogs(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.AccessLogsResponse{Logs: logs})
}

func (h *RecordHandler) validateKey(key string) error {
	return validation.Validate(key, validation.Required, customValidation.RecordKey)
}
