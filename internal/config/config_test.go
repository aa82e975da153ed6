package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"VisualContentExtractor/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{configPathEnv, outputDirEnv, inputDirEnv, logLevelEnv, userAgentEnv, checkpointFormatEnv} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.OutputDir != "output" || cfg.Paths.InputDir != "input" {
		t.Fatalf("unexpected paths %+v", cfg.Paths)
	}
	if cfg.Checkpoint.Format != FormatCSV || cfg.Checkpoint.PersistEvery != 100 {
		t.Fatalf("unexpected checkpoint config %+v", cfg.Checkpoint)
	}
	if cfg.Extraction.BatchSize != 50 || !cfg.Extraction.HasHeader() || cfg.Extraction.Timeout() != 30*time.Second {
		t.Fatalf("unexpected extraction config %+v", cfg.Extraction)
	}
}

func TestLoadYAMLMergesOverDefaults(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "vce.yaml", `
paths:
  outputDir: /data/out
checkpoint:
  format: SQLite
extraction:
  batchSize: 20
  requestTimeout: 5s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.OutputDir != "/data/out" || cfg.Paths.InputDir != "input" {
		t.Fatalf("unexpected paths %+v", cfg.Paths)
	}
	if cfg.Checkpoint.Format != FormatSQLite || cfg.Checkpoint.PersistEvery != 100 {
		t.Fatalf("unexpected checkpoint config %+v", cfg.Checkpoint)
	}
	if cfg.Extraction.BatchSize != 20 || cfg.Extraction.Timeout() != 5*time.Second {
		t.Fatalf("unexpected extraction config %+v", cfg.Extraction)
	}
}

func TestLoadTOMLFromEnvPath(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "vce.toml", `
[logging]
level = "warn"
format = "json"

[extraction]
listHasHeader = false
userAgent = "museum-bot/2.0"
`)
	t.Setenv(configPathEnv, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Extraction.HasHeader() {
		t.Fatalf("listHasHeader=false was ignored")
	}
	if cfg.Extraction.UserAgent != "museum-bot/2.0" {
		t.Fatalf("unexpected user agent %q", cfg.Extraction.UserAgent)
	}
}

func TestEnvOverridesWin(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "vce.yaml", "paths:\n  outputDir: from-file\n")
	t.Setenv(outputDirEnv, "from-env")
	t.Setenv(checkpointFormatEnv, "SQLITE")
	t.Setenv(userAgentEnv, "env-agent")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.OutputDir != "from-env" || cfg.Checkpoint.Format != FormatSQLite || cfg.Extraction.UserAgent != "env-agent" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "bad.yaml", `
checkpoint:
  format: parquet
extraction:
  batchSize: 500
  requestTimeout: soon
`)
	_, err := Load(path)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	for _, fragment := range []string{"checkpoint.format", "batchSize", "requestTimeout"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error %q does not mention %s", err, fragment)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
