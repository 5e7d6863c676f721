package common

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFile("")
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Extract.Workers != 4 || cfg.Server.GRPCAddr != ":8080" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond || cfg.LLM.Timeout != 45*time.Second {
		t.Errorf("durations = %v %v", cfg.Watch.Debounce, cfg.LLM.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if cfg.LLMEnabled() {
		t.Error("llm must be disabled without a key")
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "DB_DRIVER: postgres\nDB_URL: postgres://u:p@localhost/db\nEXTRACT_WORKERS: 8\nLOG_FORMAT: console\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EXTRACT_WORKERS", "2")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.DSN != "postgres://u:p@localhost/db" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Extract.Workers != 2 {
		t.Errorf("env must win over file: workers = %d", cfg.Extract.Workers)
	}
	if cfg.Log.Format != "console" || !cfg.LLMEnabled() {
		t.Errorf("log = %+v llm = %v", cfg.Log, cfg.LLMEnabled())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"driver", func(c *Config) { c.Database.Driver = "mysql" }, "DB_DRIVER"},
		{"dsn", func(c *Config) { c.Database.DSN = "" }, "DB_URL"},
		{"workers", func(c *Config) { c.Extract.Workers = 0 }, "EXTRACT_WORKERS"},
		{"backend", func(c *Config) { c.Extract.PDFBackend = "ocr" }, "PDF_BACKEND"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var appErr *AppError
			if !errors.As(err, &appErr) || appErr.Code != "CONFIG_ERROR" || !strings.Contains(appErr.Message, tt.want) {
				t.Errorf("Validate() = %v", err)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error must wrap ErrInvalidInput")
			}
		})
	}
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{WrapError(ErrInvalidInput, "style"), codes.InvalidArgument},
		{NewAppError("LOAD", "pdf", ErrNoTextLayer), codes.InvalidArgument},
		{ErrNotFound, codes.NotFound},
		{ErrLLMDisabled, codes.FailedPrecondition},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("boom"), codes.Internal},
		{NotFoundError("job"), codes.NotFound},
	}
	for _, tt := range tests {
		if got := status.Code(ToStatus(tt.err)); got != tt.want {
			t.Errorf("ToStatus(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
	if ToStatus(nil) != nil {
		t.Error("nil must stay nil")
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("style", "bauhaus", OneOf("haardtring", "leiq", "omniturm")).
		Field("pages", []int{0, -1}, NonNegativeInts).
		Field("document_id", "not-a-uuid", UUID).
		Field("path", "", Required)
	if len(v.Errors()) != 4 {
		t.Fatalf("errors = %+v", v.Errors())
	}
	if !errors.Is(v.Error(), ErrValidation) {
		t.Errorf("Error() must wrap ErrValidation")
	}
	if status.Code(ValidateAndReturnError(v)) != codes.InvalidArgument {
		t.Errorf("ValidateAndReturnError must be InvalidArgument")
	}

	ok := NewValidator().Field("style", "", OneOf("leiq")).Field("name", "abc", MaxLength(3))
	if ok.HasErrors() || ok.Error() != nil {
		t.Errorf("unexpected errors: %+v", ok.Errors())
	}
}

func TestRequestContext(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	if id == "" || RequestIDFromContext(ctx) != id {
		t.Fatalf("request id = %q", id)
	}
	ctx2, id2 := EnsureRequestID(ctx)
	if id2 != id || ctx2 != ctx {
		t.Errorf("existing id must be kept")
	}
	if DocumentIDFromContext(WithDocumentID(ctx, "doc")) != "doc" {
		t.Error("document id lost")
	}
	if LoggerFromContext(ctx, nil) == nil {
		t.Error("LoggerFromContext must never return nil")
	}
}
