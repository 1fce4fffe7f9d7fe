// Package container wires configuration into the procurement backend, the
// document service and the HTTP server, and owns their lifecycle.
package container

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-drafts/internal/application/dispatcher"
	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/application/service"
	"github.com/garyjia/procurement-drafts/internal/config"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/export"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/external/restapi"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/metrics"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/persistence/memory"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/persistence/repository"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/storage"
	httpapi "github.com/garyjia/procurement-drafts/internal/interfaces/http"
	"github.com/garyjia/procurement-drafts/pkg/clock"
	"github.com/garyjia/procurement-drafts/pkg/database"
	"github.com/garyjia/procurement-drafts/pkg/utils"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	Raw            *database.DB
	TransactionMgr *sqlite.DB
}

// BackendBundle holds the port implementations selected by database.driver.
type BackendBundle struct {
	Documents  port.DocumentRepository
	Workflow   port.WorkflowActions
	History    port.HistoryRepository
	Rates      port.ExchangeRateStore
	Sequencer  port.NumberSequencer
	MasterData port.MasterDataLookup
	TxManager  port.TransactionManager
}

// ProvideDatabase opens the sqlite file and applies the embedded migrations.
func ProvideDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	raw, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(raw, logger).Run(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		Raw:            raw,
		TransactionMgr: sqlite.NewDB(raw.DB, logger),
	}, nil
}

// ProvideSQLiteBackend builds the repositories over an open database.
func ProvideSQLiteBackend(db *sqlite.DB, prefixes map[string]string, clk clock.Clock, logger *zap.Logger) (*BackendBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	history := repository.NewHistoryRepository(db, clk, logger)
	return &BackendBundle{
		Documents:  repository.NewDocumentRepository(db, history, clk, logger),
		Workflow:   repository.NewWorkflowRepository(db, history, clk, logger),
		History:    history,
		Rates:      repository.NewRateRepository(db, clk, logger),
		Sequencer:  repository.NewSequenceRepository(db, prefixes, clk, logger),
		MasterData: repository.NewReferenceRepository(db, logger),
		TxManager:  db,
	}, nil
}

// ProvideMemoryBackend builds seeded in-process stores. Nothing survives a restart.
func ProvideMemoryBackend(prefixes map[string]string, clk clock.Clock) *BackendBundle {
	docs := memory.NewDocuments(clk)
	master := memory.NewMasterData()
	rates := memory.NewRates(clk)
	memory.Seed(master, rates)

	return &BackendBundle{
		Documents:  docs,
		Workflow:   docs,
		History:    docs.History(),
		Rates:      rates,
		Sequencer:  memory.NewSequencer(prefixes, clk),
		MasterData: master,
		TxManager:  memory.TxManager{},
	}
}

// ProvideRemoteBackend talks to another instance of this API. With fallback
// enabled, seeded memory stores answer rate and master-data reads while the
// server is down. History is not exposed remotely.
func ProvideRemoteBackend(cfg config.RemoteConfig, logger *zap.Logger) (*BackendBundle, error) {
	clientCfg := restapi.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	}
	if cfg.Fallback {
		master := memory.NewMasterData()
		rates := memory.NewRates(nil)
		memory.Seed(master, rates)
		clientCfg.Fallback = &restapi.Fallback{MasterData: master, Rates: rates}
	}

	client, err := restapi.NewClient(clientCfg, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return &BackendBundle{
		Documents:  client,
		Workflow:   client,
		Rates:      client.RateTable(),
		Sequencer:  client,
		MasterData: client.MasterData(),
		TxManager:  memory.TxManager{},
	}, nil
}

// ProvideMetrics registers the collectors on a fresh registry that also
// carries the Go and process collectors.
func ProvideMetrics() (*prometheus.Registry, *metrics.Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m, err := metrics.New(registry)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	return registry, m, nil
}

// ProvideDispatcher creates the event dispatcher shared by all sessions.
func ProvideDispatcher(logger *zap.Logger) dispatcher.Dispatcher {
	return dispatcher.NewDispatcher(dispatcher.WithLogger(utils.NewKVLogger(logger)))
}

// ProvideDocumentService builds the session factory from the backend.
func ProvideDocumentService(cfg *config.Config, backend *BackendBundle, disp dispatcher.Dispatcher, m *metrics.Metrics, clk clock.Clock, logger *zap.Logger) (*service.DocumentService, error) {
	return service.NewDocumentService(service.Dependencies{
		Documents:  backend.Documents,
		Workflow:   backend.Workflow,
		Rates:      backend.Rates,
		Sequencer:  backend.Sequencer,
		MasterData: backend.MasterData,
		Dispatcher: disp,
		Clock:      clk,
		Logger:     utils.NewKVLogger(logger),
		Recorder:   m,
	}, SessionConfig(cfg))
}

// SessionConfig maps the pricing and currency sections onto session settings.
func SessionConfig(cfg *config.Config) service.SessionConfig {
	return service.SessionConfig{
		HomeCurrency:      strings.ToUpper(cfg.Currency.Home),
		DefaultTaxRate:    cfg.DefaultTaxRate(),
		DueDays:           cfg.Pricing.DueDays,
		MinLines:          cfg.Pricing.MinLines,
		VarianceThreshold: cfg.VarianceThreshold(),
		LookupTimeout:     cfg.Currency.LookupTimeout,
	}
}

// ProvideArchive returns nil when export.archive_dir is empty.
func ProvideArchive(cfg config.ExportConfig, logger *zap.Logger) port.FileArchive {
	if cfg.ArchiveDir == "" {
		return nil
	}
	return storage.NewLocalArchive(cfg.ArchiveDir, logger)
}

// ProvideServer builds the HTTP server over the backend.
func ProvideServer(cfg *config.Config, backend *BackendBundle, m *metrics.Metrics, registry *prometheus.Registry, logger *zap.Logger) (*httpapi.Server, error) {
	return httpapi.NewServer(
		httpapi.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			NodeID:       cfg.Server.NodeID,
			Debug:        cfg.Server.Debug,
		},
		httpapi.Backend{
			Documents:  backend.Documents,
			Workflow:   backend.Workflow,
			History:    backend.History,
			Rates:      backend.Rates,
			Sequencer:  backend.Sequencer,
			MasterData: backend.MasterData,
			Exporter:   export.NewXLSXExporter(cfg.Export.TemplatePath, cfg.Export.CompanyName, logger),
			Archive:    ProvideArchive(cfg.Export, logger),
		},
		m,
		registry,
		httpapi.PricingConfig{
			VarianceThreshold: cfg.VarianceThreshold(),
			DefaultTaxRate:    cfg.DefaultTaxRate(),
		},
		utils.NewKVLogger(logger),
	)
}
