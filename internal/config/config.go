package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Backend names accepted in database.driver.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
	DriverRemote = "remote"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Remote    RemoteConfig    `mapstructure:"remote"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Currency  CurrencyConfig  `mapstructure:"currency"`
	Numbering NumberingConfig `mapstructure:"numbering"`
	Export    ExportConfig    `mapstructure:"export"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	NodeID       int64         `mapstructure:"node_id"`
	Debug        bool          `mapstructure:"debug"`
}

// DatabaseConfig selects and configures the persistence backend.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RemoteConfig is used when database.driver is "remote".
type RemoteConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Fallback bool          `mapstructure:"fallback"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// PricingConfig holds the line and totals settings.
type PricingConfig struct {
	VarianceThreshold float64 `mapstructure:"variance_threshold"`
	MinLines          int     `mapstructure:"min_lines"`
	DefaultTaxRate    float64 `mapstructure:"default_tax_rate"`
	DueDays           int     `mapstructure:"due_days"`
}

// CurrencyConfig holds the organization currency settings.
type CurrencyConfig struct {
	Home          string        `mapstructure:"home"`
	LookupTimeout time.Duration `mapstructure:"lookup_timeout"`
}

// NumberingConfig maps document kinds to number prefixes.
type NumberingConfig struct {
	Prefixes map[string]string `mapstructure:"prefixes"`
}

// ExportConfig holds xlsx export settings.
type ExportConfig struct {
	TemplatePath string `mapstructure:"template_path"`
	CompanyName  string `mapstructure:"company_name"`
	// ArchiveDir, when set, receives a copy of every exported file.
	ArchiveDir string `mapstructure:"archive_dir"`
}

// Load reads configPath (optional) and the environment. A .env file in the
// working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("PROCUREMENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.node_id", 1)
	v.SetDefault("server.debug", false)

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/procurement.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 0)

	v.SetDefault("remote.timeout", 15*time.Second)
	v.SetDefault("remote.fallback", true)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	v.SetDefault("pricing.variance_threshold", 0.15)
	v.SetDefault("pricing.min_lines", 1)
	v.SetDefault("pricing.default_tax_rate", 7)
	v.SetDefault("pricing.due_days", 7)

	v.SetDefault("currency.home", "THB")
	v.SetDefault("currency.lookup_timeout", 10*time.Second)

	v.SetDefault("export.archive_dir", "")
}

func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("remote.base_url", "PROCUREMENT_API_URL")
	_ = v.BindEnv("database.path", "PROCUREMENT_DB_PATH")
	_ = v.BindEnv("export.company_name", "COMPANY_NAME")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Server.NodeID < 0 || c.Server.NodeID > 1023 {
		return fmt.Errorf("server.node_id must be between 0 and 1023")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required")
		}
	case DriverMemory:
	case DriverRemote:
		if c.Remote.BaseURL == "" {
			return fmt.Errorf("remote.base_url is required")
		}
	default:
		return fmt.Errorf("database.driver %q is not one of sqlite, memory, remote", c.Database.Driver)
	}

	if c.Pricing.VarianceThreshold <= 0 {
		return fmt.Errorf("pricing.variance_threshold must be positive")
	}
	if c.Pricing.MinLines < 1 {
		return fmt.Errorf("pricing.min_lines must be at least 1")
	}
	if c.Pricing.DefaultTaxRate < 0 || c.Pricing.DefaultTaxRate > 100 {
		return fmt.Errorf("pricing.default_tax_rate must be between 0 and 100")
	}
	if c.Pricing.DueDays < 0 {
		return fmt.Errorf("pricing.due_days must not be negative")
	}

	if len(strings.TrimSpace(c.Currency.Home)) != 3 {
		return fmt.Errorf("currency.home must be a three-letter code")
	}
	if c.Currency.LookupTimeout <= 0 {
		return fmt.Errorf("currency.lookup_timeout must be positive")
	}

	return nil
}

// VarianceThreshold returns pricing.variance_threshold as a decimal.
func (c *Config) VarianceThreshold() decimal.Decimal {
	return decimal.NewFromFloat(c.Pricing.VarianceThreshold)
}

// DefaultTaxRate returns pricing.default_tax_rate as a decimal percentage.
func (c *Config) DefaultTaxRate() decimal.Decimal {
	return decimal.NewFromFloat(c.Pricing.DefaultTaxRate)
}
