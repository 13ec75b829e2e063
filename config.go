package legalspend

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rusq/osenv/v2"

	"github.com/rusq/legalspend/internal/source"
)

// Config is the process configuration assembled from the environment.  One
// block of variables per supported integration: an enable flag plus
// credentials and connection parameters.
type Config struct {
	ServerName string
	LogLevel   string
	CacheTTL   time.Duration
	// API courtesy limit, requests per window per credential.
	MaxRequests int
	Window      time.Duration
	// BudgetsFile is an optional TOML file with department budgets.
	BudgetsFile string

	Sources []source.Config
}

// envBool interprets the conventional "true"/"false" enable flags.
func envBool(name string) bool {
	return strings.EqualFold(osenv.Value(name, "false"), "true")
}

// envDuration parses a Go duration from the environment, falling back to
// def on absence or parse failure.
func envDuration(name string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(osenv.Value(name, ""))
	if err != nil {
		return def
	}
	return d
}

func envInt(name string, def int) int {
	n, err := strconv.Atoi(osenv.Value(name, ""))
	if err != nil {
		return def
	}
	return n
}

// LoadConfig assembles the configuration from environment variables.  Only
// enabled integrations contribute a source entry.  Call Validate on the
// result before using it.
func LoadConfig() Config {
	cfg := Config{
		ServerName:  osenv.Value("MCP_SERVER_NAME", "Legal Spend Intelligence"),
		LogLevel:    osenv.Value("LOG_LEVEL", "info"),
		CacheTTL:    envDuration("CACHE_TTL", DefCacheTTL),
		MaxRequests: envInt("API_MAX_REQUESTS", 0),
		Window:      envDuration("API_WINDOW", 0),
		BudgetsFile: osenv.Value("BUDGETS_FILE", ""),
	}

	if envBool("LEGALTRACKER_ENABLED") {
		cfg.Sources = append(cfg.Sources, source.Config{
			Name:    "legaltracker",
			Type:    source.TypeAPI,
			Enabled: true,
			Connection: map[string]string{
				"api_key":  osenv.Secret("LEGALTRACKER_API_KEY", ""),
				"base_url": osenv.Value("LEGALTRACKER_BASE_URL", ""),
				"timeout":  osenv.Value("LEGALTRACKER_TIMEOUT", ""),
			},
		})
	}
	if envBool("SAP_ENABLED") {
		cfg.Sources = append(cfg.Sources, source.Config{
			Name:    "sap_erp",
			Type:    source.TypeDatabase,
			Enabled: true,
			Connection: map[string]string{
				"driver":   "mssql",
				"host":     osenv.Value("SAP_HOST", ""),
				"port":     osenv.Value("SAP_PORT", "1433"),
				"database": osenv.Value("SAP_DATABASE", ""),
				"username": osenv.Value("SAP_USER", ""),
				"password": osenv.Secret("SAP_PASSWORD", ""),
				"table":    osenv.Value("SAP_TABLE", ""),
			},
		})
	}
	if envBool("ORACLE_ENABLED") {
		cfg.Sources = append(cfg.Sources, source.Config{
			Name:    "oracle_erp",
			Type:    source.TypeDatabase,
			Enabled: true,
			Connection: map[string]string{
				"driver":       "oracle",
				"host":         osenv.Value("ORACLE_HOST", ""),
				"port":         osenv.Value("ORACLE_PORT", "1521"),
				"service_name": osenv.Value("ORACLE_SERVICE", ""),
				"username":     osenv.Value("ORACLE_USER", ""),
				"password":     osenv.Secret("ORACLE_PASSWORD", ""),
				"table":        osenv.Value("ORACLE_TABLE", ""),
			},
		})
	}
	if envBool("POSTGRES_ENABLED") {
		cfg.Sources = append(cfg.Sources, source.Config{
			Name:    "postgres_legal",
			Type:    source.TypeDatabase,
			Enabled: true,
			Connection: map[string]string{
				"driver":   "postgres",
				"host":     osenv.Value("POSTGRES_HOST", ""),
				"port":     osenv.Value("POSTGRES_PORT", "5432"),
				"database": osenv.Value("POSTGRES_DB", ""),
				"username": osenv.Value("POSTGRES_USER", ""),
				"password": osenv.Secret("POSTGRES_PASSWORD", ""),
				"table":    osenv.Value("POSTGRES_TABLE", ""),
			},
		})
	}
	if envBool("SQLITE_ENABLED") {
		cfg.Sources = append(cfg.Sources, source.Config{
			Name:    "sqlite_local",
			Type:    source.TypeDatabase,
			Enabled: true,
			Connection: map[string]string{
				"driver": "sqlite",
				"file":   osenv.Value("SQLITE_FILE", ""),
				"table":  osenv.Value("SQLITE_TABLE", ""),
			},
		})
	}
	if envBool("CSV_ENABLED") {
		cfg.Sources = append(cfg.Sources, source.Config{
			Name:    "csv_import",
			Type:    source.TypeFile,
			Enabled: true,
			Connection: map[string]string{
				"file_type": "csv",
				"file_path": osenv.Value("CSV_FILE_PATH", ""),
				"delimiter": osenv.Value("CSV_DELIMITER", ","),
			},
		})
	}
	if envBool("EXCEL_ENABLED") {
		cfg.Sources = append(cfg.Sources, source.Config{
			Name:    "excel_import",
			Type:    source.TypeFile,
			Enabled: true,
			Connection: map[string]string{
				"file_type":  "excel",
				"file_path":  osenv.Value("EXCEL_FILE_PATH", ""),
				"sheet_name": osenv.Value("EXCEL_SHEET_NAME", "Sheet1"),
			},
		})
	}
	return cfg
}

var validate = validator.New()

// Validate checks the assembled configuration.  Source names must be unique:
// the manager keys its adapters by name.
func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.Sources))
	for _, src := range c.Sources {
		if err := validate.Struct(src); err != nil {
			return fmt.Errorf("source %q: %w", src.Name, err)
		}
		if seen[src.Name] {
			return fmt.Errorf("duplicate source name: %q", src.Name)
		}
		seen[src.Name] = true
	}
	return nil
}
