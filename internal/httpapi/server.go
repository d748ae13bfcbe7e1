// Package httpapi exposes the service layer as a REST API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/knwl-ai/knwld/internal/metrics"
	"github.com/knwl-ai/knwld/internal/service"
)

// shutdownTimeout bounds how long graceful shutdown waits for in-flight
// requests.
const shutdownTimeout = 10 * time.Second

// Server is the HTTP front end.
type Server struct {
	svc     *service.Service
	logger  *slog.Logger
	version string
	stats   *metrics.Collector
	router  *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithStats enables the GET /stats endpoint.
func WithStats(c *metrics.Collector) Option {
	return func(s *Server) { s.stats = c }
}

// New creates the HTTP server over the given service.
func New(svc *service.Service, version string, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		svc:     svc,
		logger:  logger,
		version: version,
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger), CORS())
	s.registerRoutes(router)
	s.router = router
	return s
}

func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/", s.handleInfo)
	router.GET("/info", s.handleInfo)
	router.GET("/health", s.handleHealth)
	router.GET("/stats", s.handleStats)

	router.GET("/node_count", s.handleNodeCount)
	router.GET("/edge_count", s.handleEdgeCount)
	router.GET("/namespace", s.handleNamespace)

	router.GET("/node/:id", s.handleGetNode)
	router.DELETE("/node/:id", s.handleDeleteNode)

	router.POST("/ingest", s.handleIngest)
	router.POST("/fact", s.handleAddFact)
	router.GET("/job/:id", s.handleJobStatus)
	router.GET("/job/:id/stream", s.handleJobStream)

	router.POST("/ask", s.handleAsk)
	router.POST("/augment", s.handleAugment)
}

// Handler returns the underlying HTTP handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully and
// drains in-flight jobs.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.svc.Drain()
	return nil
}
