package app

import (
	"fmt"

	auditHTTP "github.com/allisson/trustkit/internal/audit/http"
	auditService "github.com/allisson/trustkit/internal/audit/service"
	auditUseCase "github.com/allisson/trustkit/internal/audit/usecase"
)

// ExportSigner returns the RSA signer for audit log exports.
// The signing key is generated per process; verifiers fetch the public key
// through the API before the process exits.
func (c *Container) ExportSigner() (auditService.ExportSigner, error) {
	var err error
	c.exportSignerInit.Do(func() {
		c.exportSigner, err = auditService.GenerateExportSigner()
		if err != nil {
			c.initErrors["exportSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["exportSigner"]; exists {
		return nil, storedErr
	}
	return c.exportSigner, nil
}

// AuditLogUseCase returns the audit log use case.
func (c *Container) AuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	var err error
	c.auditLogUseCaseInit.Do(func() {
		c.auditLogUseCase, err = c.initAuditLogUseCase()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditLogUseCase, nil
}

// AuditHandler returns the HTTP handler for audit log operations.
func (c *Container) AuditHandler() (*auditHTTP.AuditHandler, error) {
	var err error
	c.auditHandlerInit.Do(func() {
		c.auditHandler, err = c.initAuditHandler()
		if err != nil {
			c.initErrors["auditHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditHandler"]; exists {
		return nil, storedErr
	}
	return c.auditHandler, nil
}

// initAuditLogUseCase creates the audit log use case with all its dependencies.
func (c *Container) initAuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	exportSigner, err := c.ExportSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get export signer for audit log use case: %w", err)
	}

	baseUseCase := auditUseCase.NewAuditLogUseCase(exportSigner, c.config.AuditLogMaxEvents)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for audit log use case: %w", err)
		}
		return auditUseCase.NewAuditLogUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuditHandler creates the audit HTTP handler with all its dependencies.
func (c *Container) initAuditHandler() (*auditHTTP.AuditHandler, error) {
	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for audit handler: %w", err)
	}

	logger := c.Logger()

	return auditHTTP.NewAuditHandler(auditLogUseCase, logger), nil
}
