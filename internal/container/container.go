package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-drafts/internal/application/dispatcher"
	"github.com/garyjia/procurement-drafts/internal/application/service"
	"github.com/garyjia/procurement-drafts/internal/config"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/metrics"
	httpapi "github.com/garyjia/procurement-drafts/internal/interfaces/http"
	"github.com/garyjia/procurement-drafts/pkg/clock"
	"github.com/garyjia/procurement-drafts/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components start in dependency order and close in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger
	clock  clock.Clock

	// Infrastructure
	database *database.DB
	backend  *BackendBundle
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// Application
	dispatcher dispatcher.Dispatcher
	documents  *service.DocumentService

	// Interfaces
	server *httpapi.Server

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger, clk clock.Clock) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if clk == nil {
		clk = clock.System()
	}

	return &Container{
		config: cfg,
		logger: logger,
		clock:  clk,
	}, nil
}

// Start initializes all components:
// 1. Backend (sqlite, memory or remote)
// 2. Metrics
// 3. Dispatcher and document service
// 4. HTTP server
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization", zap.String("driver", c.config.Database.Driver))

	if err := c.initBackend(); err != nil {
		return fmt.Errorf("failed to initialize backend: %w", err)
	}
	c.logger.Info("Backend initialized")

	registry, m, err := ProvideMetrics()
	if err != nil {
		_ = c.closeDatabase()
		return err
	}
	c.registry, c.metrics = registry, m

	c.dispatcher = ProvideDispatcher(c.logger)
	c.documents, err = ProvideDocumentService(c.config, c.backend, c.dispatcher, c.metrics, c.clock, c.logger)
	if err != nil {
		_ = c.closeDatabase()
		return fmt.Errorf("failed to initialize document service: %w", err)
	}
	c.logger.Info("Document service initialized")

	c.server, err = ProvideServer(c.config, c.backend, c.metrics, c.registry, c.logger)
	if err != nil {
		_ = c.closeDatabase()
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

func (c *Container) initBackend() error {
	var err error
	switch c.config.Database.Driver {
	case config.DriverSQLite:
		var db *DatabaseBundle
		if db, err = ProvideDatabase(c.config.Database, c.logger); err != nil {
			return err
		}
		c.database = db.Raw
		c.backend, err = ProvideSQLiteBackend(db.TransactionMgr, c.config.Numbering.Prefixes, c.clock, c.logger)
	case config.DriverMemory:
		c.backend = ProvideMemoryBackend(c.config.Numbering.Prefixes, c.clock)
	case config.DriverRemote:
		c.backend, err = ProvideRemoteBackend(c.config.Remote, c.logger)
	default:
		err = fmt.Errorf("unknown database driver %q", c.config.Database.Driver)
	}
	return err
}

// Close shuts components down in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")
	var errs []error

	if c.server != nil {
		if err := c.server.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop server: %w", err))
		}
	}
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}
	if err := c.closeDatabase(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors: %v", len(errs), errs)
	}
	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) closeDatabase() error {
	if c.database == nil {
		return nil
	}
	err := c.database.Close()
	c.database = nil
	if err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
		return err
	}
	c.logger.Info("Database closed")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health pings the database when the sqlite driver is in use.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	switch {
	case c.config.Database.Driver != config.DriverSQLite:
		status.Components["database"] = ComponentHealth{Healthy: true, Message: c.config.Database.Driver + " backend"}
	case c.database == nil:
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	default:
		if err := c.database.PingContext(ctx); err != nil {
			status.Components["database"] = ComponentHealth{Healthy: false, Message: fmt.Sprintf("ping failed: %v", err)}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	}

	if c.documents != nil {
		status.Components["documents"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["documents"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	return status
}

// Backend returns the selected port implementations.
func (c *Container) Backend() *BackendBundle {
	return c.backend
}

// Documents returns the document service.
func (c *Container) Documents() *service.DocumentService {
	return c.documents
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Server returns the HTTP server.
func (c *Container) Server() *httpapi.Server {
	return c.server
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *config.Config {
	return c.config
}
