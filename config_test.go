package legalspend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/legalspend/internal/source"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := LoadConfig()
		assert.Equal(t, "Legal Spend Intelligence", cfg.ServerName)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, DefCacheTTL, cfg.CacheTTL)
		assert.Empty(t, cfg.Sources, "no integrations enabled by default")
	})

	t.Run("api source block", func(t *testing.T) {
		t.Setenv("LEGALTRACKER_ENABLED", "true")
		t.Setenv("LEGALTRACKER_API_KEY", "sekret")
		t.Setenv("LEGALTRACKER_BASE_URL", "https://lt.example.com")

		cfg := LoadConfig()
		require.Len(t, cfg.Sources, 1)
		src := cfg.Sources[0]
		assert.Equal(t, "legaltracker", src.Name)
		assert.Equal(t, source.TypeAPI, src.Type)
		assert.True(t, src.Enabled)
		assert.Equal(t, "sekret", src.Param("api_key", ""))
		assert.Equal(t, "https://lt.example.com", src.Param("base_url", ""))
	})

	t.Run("database source blocks", func(t *testing.T) {
		t.Setenv("SAP_ENABLED", "true")
		t.Setenv("SAP_HOST", "sap.internal")
		t.Setenv("SAP_DATABASE", "legal")
		t.Setenv("POSTGRES_ENABLED", "true")
		t.Setenv("POSTGRES_HOST", "pg.internal")

		cfg := LoadConfig()
		require.Len(t, cfg.Sources, 2)
		assert.Equal(t, "sap_erp", cfg.Sources[0].Name)
		assert.Equal(t, "mssql", cfg.Sources[0].Param("driver", ""))
		assert.Equal(t, "1433", cfg.Sources[0].Param("port", ""), "default port")
		assert.Equal(t, "postgres_legal", cfg.Sources[1].Name)
		assert.Equal(t, "postgres", cfg.Sources[1].Param("driver", ""))
	})

	t.Run("file source blocks", func(t *testing.T) {
		t.Setenv("CSV_ENABLED", "true")
		t.Setenv("CSV_FILE_PATH", "/data/spend.csv")
		t.Setenv("EXCEL_ENABLED", "true")
		t.Setenv("EXCEL_FILE_PATH", "/data/spend.xlsx")

		cfg := LoadConfig()
		require.Len(t, cfg.Sources, 2)
		assert.Equal(t, "csv_import", cfg.Sources[0].Name)
		assert.Equal(t, ",", cfg.Sources[0].Param("delimiter", ""))
		assert.Equal(t, "excel_import", cfg.Sources[1].Name)
		assert.Equal(t, "Sheet1", cfg.Sources[1].Param("sheet_name", ""))
	})

	t.Run("enable flag must be the literal true", func(t *testing.T) {
		t.Setenv("CSV_ENABLED", "1")
		cfg := LoadConfig()
		assert.Empty(t, cfg.Sources)
	})

	t.Run("tuning knobs", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "90s")
		t.Setenv("API_MAX_REQUESTS", "120")
		t.Setenv("API_WINDOW", "30s")
		cfg := LoadConfig()
		assert.Equal(t, 90*time.Second, cfg.CacheTTL)
		assert.Equal(t, 120, cfg.MaxRequests)
		assert.Equal(t, 30*time.Second, cfg.Window)
	})

	t.Run("malformed durations fall back to defaults", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "ten minutes")
		cfg := LoadConfig()
		assert.Equal(t, DefCacheTTL, cfg.CacheTTL)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := source.Config{
		Name: "csv_import", Type: source.TypeFile, Enabled: true,
		Connection: map[string]string{"file_path": "/data/spend.csv"},
	}

	t.Run("accepts a valid config", func(t *testing.T) {
		cfg := Config{Sources: []source.Config{valid}}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rejects duplicate source names", func(t *testing.T) {
		cfg := Config{Sources: []source.Config{valid, valid}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate source name")
	})

	t.Run("rejects a nameless source", func(t *testing.T) {
		cfg := Config{Sources: []source.Config{{Type: source.TypeFile, Enabled: true}}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects an unknown source type", func(t *testing.T) {
		cfg := Config{Sources: []source.Config{{Name: "x", Type: "carrier-pigeon", Enabled: true}}}
		assert.Error(t, cfg.Validate())
	})
}
