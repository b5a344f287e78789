package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.yaml")

	configContent := `
loader:
  mode: nodes
  num_loaders: 2
  loader_index: 1
  num_threads: 4
  base_dir: /data/social_network
  supplementary_dir: /data/supplementary

report:
  interval_seconds: 30
  format: lLfFdDT

sink:
  kind: mysql
  graph_name: snb
  table_prefix: ldbc_
  mysql:
    host: graph-host
    port: 3307
    user: loader
    password: secret
    database: graphdb
    max_connections: 20

metrics:
  listen: ":9102"

logging:
  level: debug
  format: json
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify loader config
	if cfg.Loader.Mode != "nodes" {
		t.Errorf("expected mode 'nodes', got %s", cfg.Loader.Mode)
	}
	if cfg.Loader.NumLoaders != 2 || cfg.Loader.LoaderIndex != 1 || cfg.Loader.NumThreads != 4 {
		t.Errorf("unexpected partition settings: %+v", cfg.Loader)
	}
	if cfg.Loader.BaseDir != "/data/social_network" {
		t.Errorf("expected base dir '/data/social_network', got %s", cfg.Loader.BaseDir)
	}

	// Verify report config
	if cfg.Report.IntervalSeconds != 30 {
		t.Errorf("expected interval 30, got %d", cfg.Report.IntervalSeconds)
	}
	if cfg.Report.Format != "lLfFdDT" {
		t.Errorf("expected format 'lLfFdDT', got %s", cfg.Report.Format)
	}

	// Verify sink config
	if cfg.Sink.Kind != SinkMySQL {
		t.Errorf("expected sink kind 'mysql', got %s", cfg.Sink.Kind)
	}
	if cfg.Sink.TablePrefix != "ldbc_" {
		t.Errorf("expected table prefix 'ldbc_', got %s", cfg.Sink.TablePrefix)
	}
	if cfg.Sink.MySQL.Host != "graph-host" || cfg.Sink.MySQL.Port != 3307 {
		t.Errorf("unexpected mysql settings: %+v", cfg.Sink.MySQL)
	}
	if cfg.Sink.MySQL.MaxConnections != 20 {
		t.Errorf("expected max_connections 20, got %d", cfg.Sink.MySQL.MaxConnections)
	}
	// Unset fields keep their defaults
	if cfg.Sink.MySQL.MaxIdleConnections != 5 {
		t.Errorf("expected default max_idle_connections 5, got %d", cfg.Sink.MySQL.MaxIdleConnections)
	}

	if cfg.Metrics.Listen != ":9102" {
		t.Errorf("expected metrics listen ':9102', got %s", cfg.Metrics.Listen)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level 'debug', got %s", cfg.Logging.Level)
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	t.Setenv("TEST_SNB_BASE", "/env/base")
	t.Setenv("TEST_DB_USER", "env-user")
	t.Setenv("TEST_DB_PASS", "env-pass")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-env.yaml")

	configContent := `
loader:
  base_dir: ${TEST_SNB_BASE}
  supplementary_dir: $TEST_SNB_BASE/supp
sink:
  mysql:
    user: ${TEST_DB_USER}
    password: ${TEST_DB_PASS}
    host: ${TEST_UNSET_HOST}
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Loader.BaseDir != "/env/base" {
		t.Errorf("expected base dir '/env/base', got %s", cfg.Loader.BaseDir)
	}
	if cfg.Loader.SupplementaryDir != "/env/base/supp" {
		t.Errorf("expected supplementary dir '/env/base/supp', got %s", cfg.Loader.SupplementaryDir)
	}
	if cfg.Sink.MySQL.User != "env-user" || cfg.Sink.MySQL.Password != "env-pass" {
		t.Errorf("unexpected mysql credentials: %+v", cfg.Sink.MySQL)
	}
	// Unknown variables are left as-is
	if cfg.Sink.MySQL.Host != "${TEST_UNSET_HOST}" {
		t.Errorf("expected unexpanded host, got %s", cfg.Sink.MySQL.Host)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadFromViper(t *testing.T) {
	v := viper.New()
	v.Set("loader.num_threads", 6)
	v.Set("sink.kind", "discard")

	cfg, err := LoadFromViper(v)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Loader.NumThreads != 6 {
		t.Errorf("expected 6 threads, got %d", cfg.Loader.NumThreads)
	}
	if cfg.Sink.Kind != SinkDiscard {
		t.Errorf("expected sink 'discard', got %s", cfg.Sink.Kind)
	}
	if cfg.Report.IntervalSeconds != 10 {
		t.Errorf("expected default interval 10, got %d", cfg.Report.IntervalSeconds)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := LoadDefaults()
	if cfg.Loader.Mode != "all" {
		t.Errorf("expected default mode 'all', got %s", cfg.Loader.Mode)
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("TEST_EXPAND", "value")

	tests := []struct {
		in   string
		want string
	}{
		{"${TEST_EXPAND}", "value"},
		{"$TEST_EXPAND", "value"},
		{"prefix-${TEST_EXPAND}-suffix", "prefix-value-suffix"},
		{"plain", "plain"},
		{"$TEST_EXPAND_MISSING", "$TEST_EXPAND_MISSING"},
	}
	for _, tt := range tests {
		if got := expandEnvVar(tt.in); got != tt.want {
			t.Errorf("expandEnvVar(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
