package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "THB", cfg.Currency.Home)
	assert.Equal(t, 10*time.Second, cfg.Currency.LookupTimeout)
	assert.Equal(t, "0.15", cfg.VarianceThreshold().String())
	assert.Equal(t, "7", cfg.DefaultTaxRate().String())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  driver: memory
pricing:
  variance_threshold: 0.2
  min_lines: 2
currency:
  home: SGD
numbering:
  prefixes:
    PO: PUR
export:
  company_name: Acme
`)
	t.Setenv("PROCUREMENT_PRICING_DUE_DAYS", "30")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "0.2", cfg.VarianceThreshold().String())
	assert.Equal(t, 2, cfg.Pricing.MinLines)
	assert.Equal(t, 30, cfg.Pricing.DueDays)
	assert.Equal(t, "SGD", cfg.Currency.Home)
	assert.Equal(t, "PUR", cfg.Numbering.Prefixes["po"])
	assert.Equal(t, "Acme", cfg.Export.CompanyName)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080, NodeID: 1},
			Database: DatabaseConfig{Driver: DriverSQLite, Path: "x.db"},
			Pricing:  PricingConfig{VarianceThreshold: 0.15, MinLines: 1, DefaultTaxRate: 7, DueDays: 7},
			Currency: CurrencyConfig{Home: "THB", LookupTimeout: time.Second},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "bad_port", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "bad_node", mutate: func(c *Config) { c.Server.NodeID = 2048 }},
		{name: "unknown_driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }},
		{name: "sqlite_without_path", mutate: func(c *Config) { c.Database.Path = "" }},
		{name: "remote_without_url", mutate: func(c *Config) { c.Database.Driver = DriverRemote }},
		{name: "zero_threshold", mutate: func(c *Config) { c.Pricing.VarianceThreshold = 0 }},
		{name: "no_lines", mutate: func(c *Config) { c.Pricing.MinLines = 0 }},
		{name: "tax_over_100", mutate: func(c *Config) { c.Pricing.DefaultTaxRate = 101 }},
		{name: "bad_currency", mutate: func(c *Config) { c.Currency.Home = "BAHT" }},
		{name: "no_timeout", mutate: func(c *Config) { c.Currency.LookupTimeout = 0 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
