// Package http serves the procurement backend over a gin REST API. It is the
// server half of the restapi client: documents, workflow actions, rates,
// numbering and master data, all wrapped in the {success, data, error} envelope.
package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/metrics"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	NodeID       int64
	Debug        bool
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		NodeID:       1,
	}
}

// Backend groups the ports the handlers serve. Exporter and History may be nil;
// their routes then answer 501. Archive, when set, keeps a copy of every export.
type Backend struct {
	Documents  port.DocumentRepository
	Workflow   port.WorkflowActions
	History    port.HistoryRepository
	Rates      port.ExchangeRateStore
	Sequencer  port.NumberSequencer
	MasterData port.MasterDataLookup
	Exporter   port.DocumentExporter
	Archive    port.FileArchive
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	backend    Backend
	metrics    *metrics.Metrics
	gatherer   prometheus.Gatherer
	ids        *snowflake.Node
	handlers   *Handlers
	logger     Logger
}

// NewServer wires routes and middleware. m may be nil, in which case no
// request metrics are recorded and /metrics serves gatherer alone.
func NewServer(config ServerConfig, backend Backend, m *metrics.Metrics, gatherer prometheus.Gatherer, pricing PricingConfig, logger Logger) (*Server, error) {
	if config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	node, err := snowflake.NewNode(config.NodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create request id node: %w", err)
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	server := &Server{
		config:   config,
		router:   gin.New(),
		backend:  backend,
		metrics:  m,
		gatherer: gatherer,
		ids:      node,
		handlers: NewHandlers(backend, pricing, logger),
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestIDMiddleware())
	s.router.Use(s.metricsMiddleware())
	s.router.Use(s.loggingMiddleware())
}

// requestIDMiddleware keeps an incoming X-Request-ID or mints a snowflake id.
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" {
			id = s.ids.Generate().String()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func (s *Server) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.metrics == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		s.metrics.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"method", method,
			"path", path,
			"status", status,
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(ctxRequestID),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error("HTTP request", kv...)
			return
		}
		s.logger.Info("HTTP request", kv...)
	}
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/health", h.HealthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	{
		docs := api.Group("/documents")
		docs.GET("", h.ListDocuments)
		docs.POST("", h.CreateDocument)
		docs.GET("/:id", h.GetDocument)
		docs.PUT("/:id", h.UpdateDocument)
		docs.DELETE("/:id", h.DeleteDocument)
		docs.POST("/:id/submit", h.Submit)
		docs.POST("/:id/approve", h.Approve)
		docs.POST("/:id/reject", h.Reject)
		docs.POST("/:id/cancel", h.Cancel)
		docs.GET("/:id/history", h.GetHistory)
		docs.GET("/:id/export", h.ExportDocument)

		api.POST("/calculate", h.Calculate)

		api.GET("/rates", h.GetRate)
		api.GET("/rates/all", h.ListRates)
		api.PUT("/rates", h.UpsertRate)

		api.POST("/sequence/:kind/next", h.NextNumber)

		api.GET("/master/:kind", h.ListMasterData)
		api.GET("/master/:kind/:id", h.GetMasterData)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
