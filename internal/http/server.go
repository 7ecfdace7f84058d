package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	auditHTTP "github.com/allisson/trustkit/internal/audit/http"
	"github.com/allisson/trustkit/internal/metrics"
	storeHTTP "github.com/allisson/trustkit/internal/securestore/http"
	zerotrustDomain "github.com/allisson/trustkit/internal/zerotrust/domain"
	zerotrustHTTP "github.com/allisson/trustkit/internal/zerotrust/http"
	zerotrustUseCase "github.com/allisson/trustkit/internal/zerotrust/usecase"
)

// Server is the API server. Routes are registered with SetupRouter before
// Start is called.
type Server struct {
	db     *sql.DB
	router *gin.Engine
	server *http.Server
	logger *slog.Logger
}

// RouterConfig carries the handlers and middleware settings for the API
// router.
type RouterConfig struct {
	RecordHandler  *storeHTTP.RecordHandler
	AuditHandler   *auditHTTP.AuditHandler
	SessionHandler *zerotrustHTTP.SessionHandler
	SessionManager zerotrustUseCase.SessionManager

	MeterProvider    metric.MeterProvider
	MetricsNamespace string

	CORSEnabled      bool
	CORSAllowOrigins string

	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
}

// NewServer creates a new API server. db may be nil when the store uses the
// file backend; readiness then skips the database check.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the API router. The audit export verification key is
// public; everything under the session group requires a valid session, and
// destructive or log-reading routes additionally require operation
// authorization.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}
	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if cfg.RateLimitEnabled {
		router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, s.logger))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	{
		v1.PUT("/records/:key", cfg.RecordHandler.StoreHandler)
		v1.GET("/records/:key", cfg.RecordHandler.GetHandler)
		v1.GET("/records/:key/verify", cfg.RecordHandler.VerifyHandler)
		v1.GET("/store/info", cfg.RecordHandler.InfoHandler)
		v1.POST("/store/rotate", cfg.RecordHandler.RotateHandler)

		v1.POST("/sessions", cfg.SessionHandler.StartHandler)
		v1.GET("/sessions/current", cfg.SessionHandler.StatusHandler)
		v1.DELETE("/sessions/current", cfg.SessionHandler.EndHandler)
		v1.POST("/operations/:name/authorize", cfg.SessionHandler.AuthorizeHandler)

		v1.GET("/attestation", cfg.SessionHandler.AttestationHandler)
		v1.GET("/environment/suspicious", cfg.SessionHandler.SuspiciousHandler)
		v1.POST("/environment/suspicious", cfg.SessionHandler.MarkSuspiciousHandler)
		v1.DELETE("/environment/suspicious", cfg.SessionHandler.ClearSuspiciousHandler)

		v1.GET("/audit/public-key", cfg.AuditHandler.PublicKeyHandler)

		protected := v1.Group("")
		protected.Use(zerotrustHTTP.SessionMiddleware(cfg.SessionManager, s.logger))
		{
			protected.GET("/audit/export", cfg.AuditHandler.ExportHandler)

			viewLogs := zerotrustHTTP.RequireOperation(
				cfg.SessionManager, zerotrustDomain.OperationViewLogs.String(), s.logger)
			protected.GET("/access-logs", viewLogs, cfg.RecordHandler.AccessLogsHandler)
			protected.GET("/audit/events", viewLogs, cfg.AuditHandler.ListEventsHandler)

			clearData := zerotrustHTTP.RequireOperation(
				cfg.SessionManager, zerotrustDomain.OperationClearData.String(), s.logger)
			protected.DELETE("/store", clearData, cfg.RecordHandler.ClearHandler)
		}
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the API server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic. The database
// is checked only when a SQL backend is configured.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	} else {
		components["store"] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
