package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Extract  ExtractConfig
	Watch    WatchConfig
	LLM      LLMConfig
	Log      LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // postgres | sqlite
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	ConnectAttempts  uint
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr    string
	MetricsAddr string
}

// ExtractConfig controls page loading and the area fan-out.
type ExtractConfig struct {
	Workers      int
	PDFBackend   string // native | pdftotext
	PDFToTextBin string
	TenderPages  int
}

// WatchConfig configures the inbox watcher of the daemon.
type WatchConfig struct {
	Dir      string
	Debounce time.Duration
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string
	Format string // json | console
}

// Driver names accepted by DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// PDF backends accepted by PDF_BACKEND.
const (
	PDFBackendNative    = "native"
	PDFBackendPDFToText = "pdftotext"
)

var configDefaults = map[string]any{
	"DB_DRIVER":             DriverSQLite,
	"DB_URL":                "file:angebotsagent.db?_pragma=busy_timeout(5000)",
	"DB_MAX_CONNS":          20,
	"DB_MIN_CONNS":          2,
	"DB_MAX_CONN_LIFETIME":  30 * time.Minute,
	"DB_MAX_CONN_IDLE_TIME": 5 * time.Minute,
	"DB_DIAL_TIMEOUT":       3 * time.Second,
	"DB_STATEMENT_TIMEOUT":  0,
	"DB_CONNECT_ATTEMPTS":   5,
	"GRPC_ADDR":             ":8080",
	"METRICS_ADDR":          ":9090",
	"EXTRACT_WORKERS":       4,
	"PDF_BACKEND":           PDFBackendNative,
	"PDFTOTEXT_BIN":         "pdftotext",
	"TENDER_PAGES":          5,
	"WATCH_DIR":             "",
	"WATCH_DEBOUNCE":        500 * time.Millisecond,
	"OPENAI_MODEL":          "gpt-4o-mini",
	"OPENAI_API_KEY":        "",
	"OPENAI_BASE_URL":       "",
	"OPENAI_TEMPERATURE":    0.0,
	"OPENAI_TIMEOUT":        45 * time.Second,
	"OPENAI_MAX_RETRIES":    2,
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "json",
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	cfg, _ := LoadConfigFile("")
	return cfg
}

// LoadConfigFile layers defaults, an optional config file (yaml, json or
// toml, keys spelled like the environment variables) and the environment.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	for k, val := range configDefaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var err error
	if path != "" {
		v.SetConfigFile(path)
		if rerr := v.ReadInConfig(); rerr != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(rerr, &notFound) {
				err = fmt.Errorf("read config file: %w", rerr)
			}
		}
	}
	return fromViper(v), err
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:           strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:              v.GetString("DB_URL"),
			MaxConns:         v.GetInt32("DB_MAX_CONNS"),
			MinConns:         v.GetInt32("DB_MIN_CONNS"),
			MaxConnLifetime:  v.GetDuration("DB_MAX_CONN_LIFETIME"),
			MaxConnIdleTime:  v.GetDuration("DB_MAX_CONN_IDLE_TIME"),
			DialTimeout:      v.GetDuration("DB_DIAL_TIMEOUT"),
			StatementTimeout: v.GetDuration("DB_STATEMENT_TIMEOUT"),
			ConnectAttempts:  v.GetUint("DB_CONNECT_ATTEMPTS"),
		},
		Server: ServerConfig{
			GRPCAddr:    v.GetString("GRPC_ADDR"),
			MetricsAddr: v.GetString("METRICS_ADDR"),
		},
		Extract: ExtractConfig{
			Workers:      v.GetInt("EXTRACT_WORKERS"),
			PDFBackend:   strings.ToLower(v.GetString("PDF_BACKEND")),
			PDFToTextBin: v.GetString("PDFTOTEXT_BIN"),
			TenderPages:  v.GetInt("TENDER_PAGES"),
		},
		Watch: WatchConfig{
			Dir:      v.GetString("WATCH_DIR"),
			Debounce: v.GetDuration("WATCH_DEBOUNCE"),
		},
		LLM: LLMConfig{
			Model:       v.GetString("OPENAI_MODEL"),
			APIKey:      v.GetString("OPENAI_API_KEY"),
			BaseURL:     v.GetString("OPENAI_BASE_URL"),
			Temperature: v.GetFloat64("OPENAI_TEMPERATURE"),
			Timeout:     v.GetDuration("OPENAI_TIMEOUT"),
			MaxRetries:  v.GetInt("OPENAI_MAX_RETRIES"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
	}
}

// Validate validates the loaded configuration. The LLM key is optional;
// without it the LV fallback is disabled.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("DB_DRIVER %q is not supported", c.Database.Driver), ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Extract.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "EXTRACT_WORKERS must be at least 1", ErrInvalidInput)
	}
	switch c.Extract.PDFBackend {
	case PDFBackendNative, PDFBackendPDFToText:
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("PDF_BACKEND %q is not supported", c.Extract.PDFBackend), ErrInvalidInput)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("LOG_FORMAT %q is not supported", c.Log.Format), ErrInvalidInput)
	}
	return nil
}

// LLMEnabled reports whether an API key is configured.
func (c *Config) LLMEnabled() bool {
	return c.LLM.APIKey != ""
}
