package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DataDir != "./data" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "./data")
	}
	if cfg.AutosaveInterval != 5*time.Second {
		t.Errorf("AutosaveInterval = %v, want 5s", cfg.AutosaveInterval)
	}
	if cfg.QueryPageSize != 1000 {
		t.Errorf("QueryPageSize = %d, want 1000", cfg.QueryPageSize)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataDir != Default().DataDir {
		t.Errorf("expected default DataDir for a missing file, got %q", cfg.DataDir)
	}
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.QueryPageSize != Default().QueryPageSize {
		t.Errorf("expected default QueryPageSize, got %d", cfg.QueryPageSize)
	}
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tablestore.yaml")
	if err := os.WriteFile(path, []byte("data_dir: /var/lib/tablestore\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataDir != "/var/lib/tablestore" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "/var/lib/tablestore")
	}
	if cfg.QueryPageSize != Default().QueryPageSize {
		t.Errorf("expected untouched default QueryPageSize, got %d", cfg.QueryPageSize)
	}
	if cfg.AutosaveInterval != Default().AutosaveInterval {
		t.Errorf("expected untouched default AutosaveInterval, got %v", cfg.AutosaveInterval)
	}
}

func TestLoad_FullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tablestore.yaml")
	contents := `
data_dir: /srv/tablestore
autosave_interval: 10s
query_page_size: 500
log_level: debug
log_json: true
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataDir != "/srv/tablestore" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.AutosaveInterval != 10*time.Second {
		t.Errorf("AutosaveInterval = %v, want 10s", cfg.AutosaveInterval)
	}
	if cfg.QueryPageSize != 500 {
		t.Errorf("QueryPageSize = %d, want 500", cfg.QueryPageSize)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if !cfg.LogJSON {
		t.Error("LogJSON = false, want true")
	}
}

func testFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("data-dir", "", "")
	flags.Duration("autosave-interval", 0, "")
	flags.Int("query-page-size", 0, "")
	flags.String("log-level", "", "")
	flags.Bool("log-json", false, "")
	return flags
}

func TestApplyFlags_OnlyChangedFlagsOverride(t *testing.T) {
	cfg := Default()
	flags := testFlagSet()
	if err := flags.Set("log-level", "warn"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if err := cfg.ApplyFlags(flags); err != nil {
		t.Fatalf("ApplyFlags() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.DataDir != Default().DataDir {
		t.Errorf("unchanged flag DataDir = %q, want default", cfg.DataDir)
	}
}

func TestApplyFlags_NoneChangedLeavesConfigUntouched(t *testing.T) {
	cfg := Default()
	flags := testFlagSet()

	if err := cfg.ApplyFlags(flags); err != nil {
		t.Fatalf("ApplyFlags() error = %v", err)
	}

	want := Default()
	if *cfg != *want {
		t.Errorf("cfg = %+v, want unchanged default %+v", cfg, want)
	}
}
