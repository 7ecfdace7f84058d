// Package http provides HTTP handlers for the audit log.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/trustkit/internal/audit/http/dto"
	auditUseCase "github.com/allisson/trustkit/internal/audit/usecase"
	"github.com/allisson/trustkit/internal/httputil"
)

// AuditHandler handles HTTP requests for audit log inspection and export.
type AuditHandler struct {
	auditLogUseCase auditUseCase.AuditLogUseCase
	logger          *slog.Logger
}

// NewAuditHandler creates a new audit handler with required dependencies.
func NewAuditHandler(auditLog auditUseCase.AuditLogUseCase, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		auditLogUseCase: auditLog,
		logger:          logger,
	}
}

// ListEventsHandler returns a page of audit events in append order.
// GET /v1/audit/events?offset=0&limit=50
func (h *AuditHandler) ListEventsHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	events := h.auditLogUseCase.Events(c.Request.Context())
	total := len(events)

	if offset >= total {
		events = events[:0]
	} else {
		events = events[offset:]
		if len(events) > limit {
			events = events[:limit]
		}
	}

	c.JSON(http.StatusOK, dto.ListEventsResponse{
		Events: events,
		Offset: offset,
		Limit:  limit,
		Total:  total,
	})
}

// ExportHandler returns a signed snapshot of the audit ledger.
// GET /v1/audit/export
// The response body is the export document itself so it can be saved and
// verified offline.
func (h *AuditHandler) ExportHandler(c *gin.Context) {
	payload, err := h.auditLogUseCase.ExportJSON(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusOK, "application/json", payload)
}

// PublicKeyHandler returns the export verification key.
// GET /v1/audit/public-key
func (h *AuditHandler) PublicKeyHandler(c *gin.Context) {
	publicKey, err := h.auditLogUseCase.PublicKeyPEM()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.PublicKeyResponse{PublicKey: string(publicKey)})
}
