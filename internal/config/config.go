package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"VisualContentExtractor/internal/batch"
	"VisualContentExtractor/internal/domain"
)

const (
	configPathEnv       = "VCE_CONFIG"
	outputDirEnv        = "VCE_OUTPUT_DIR"
	inputDirEnv         = "VCE_INPUT_DIR"
	logLevelEnv         = "VCE_LOG_LEVEL"
	userAgentEnv        = "VCE_USER_AGENT"
	checkpointFormatEnv = "VCE_CHECKPOINT_FORMAT"
)

// Checkpoint formats.
const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// Config holds high-level settings required across the application.
type Config struct {
	Paths      PathsConfig      `yaml:"paths" toml:"paths"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Checkpoint CheckpointConfig `yaml:"checkpoint" toml:"checkpoint"`
	Extraction ExtractionConfig `yaml:"extraction" toml:"extraction"`
	Endpoints  EndpointConfig   `yaml:"endpoints" toml:"endpoints"`
}

// PathsConfig locates list inputs and per-collection workspaces.
type PathsConfig struct {
	InputDir  string `yaml:"inputDir" toml:"inputDir"`
	OutputDir string `yaml:"outputDir" toml:"outputDir"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// CheckpointConfig selects the checkpoint backend and write cadence.
type CheckpointConfig struct {
	Format       string `yaml:"format" toml:"format"`
	PersistEvery int    `yaml:"persistEvery" toml:"persistEvery"`
}

// ExtractionConfig tunes the calls made to the external services.
type ExtractionConfig struct {
	BatchSize      int    `yaml:"batchSize" toml:"batchSize"`
	UserAgent      string `yaml:"userAgent" toml:"userAgent"`
	RequestTimeout string `yaml:"requestTimeout" toml:"requestTimeout"`
	// ListHasHeader is a pointer so a file can switch it off.
	ListHasHeader *bool `yaml:"listHasHeader" toml:"listHasHeader"`
}

// HasHeader reports whether list files start with a header row.
func (e ExtractionConfig) HasHeader() bool {
	return e.ListHasHeader == nil || *e.ListHasHeader
}

// Timeout returns the per-request timeout.
func (e ExtractionConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(e.RequestTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// EndpointConfig points the adapters at their services.
type EndpointConfig struct {
	MediaWikiAPI string `yaml:"mediawikiApi" toml:"mediawikiApi"`
	MediaWikiRaw string `yaml:"mediawikiRaw" toml:"mediawikiRaw"`
	WP1          string `yaml:"wp1" toml:"wp1"`
}

// Load builds the configuration from defaults, an optional YAML or TOML file
// and environment overrides. An empty path falls back to $VCE_CONFIG.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read config %s: %v", domain.ErrConfiguration, path, err)
	}

	var fileCfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(raw, &fileCfg)
	default:
		err = yaml.Unmarshal(raw, &fileCfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: parse config %s: %v", domain.ErrConfiguration, path, err)
	}
	return fileCfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		problems = append(problems, "paths.outputDir is empty")
	}
	switch c.Checkpoint.Format {
	case FormatCSV, FormatSQLite:
	default:
		problems = append(problems, fmt.Sprintf("checkpoint.format %q is not csv or sqlite", c.Checkpoint.Format))
	}
	if c.Checkpoint.PersistEvery <= 0 {
		problems = append(problems, "checkpoint.persistEvery must be positive")
	}
	if c.Extraction.BatchSize <= 0 || c.Extraction.BatchSize > batch.MaxSize {
		problems = append(problems, fmt.Sprintf("extraction.batchSize must be within 1..%d", batch.MaxSize))
	}
	if c.Extraction.RequestTimeout != "" {
		if d, err := time.ParseDuration(c.Extraction.RequestTimeout); err != nil || d <= 0 {
			problems = append(problems, fmt.Sprintf("extraction.requestTimeout %q is not a positive duration", c.Extraction.RequestTimeout))
		}
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not text or json", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(outputDirEnv); v != "" {
		c.Paths.OutputDir = v
	}

	if v := os.Getenv(inputDirEnv); v != "" {
		c.Paths.InputDir = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(userAgentEnv); v != "" {
		c.Extraction.UserAgent = v
	}

	if v := os.Getenv(checkpointFormatEnv); v != "" {
		c.Checkpoint.Format = strings.ToLower(v)
	}
}

func mergeConfig(base, override Config) Config {
	if override.Paths.InputDir != "" {
		base.Paths.InputDir = override.Paths.InputDir
	}
	if override.Paths.OutputDir != "" {
		base.Paths.OutputDir = override.Paths.OutputDir
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = strings.ToLower(override.Logging.Format)
	}

	if override.Checkpoint.Format != "" {
		base.Checkpoint.Format = strings.ToLower(override.Checkpoint.Format)
	}
	if override.Checkpoint.PersistEvery != 0 {
		base.Checkpoint.PersistEvery = override.Checkpoint.PersistEvery
	}

	if override.Extraction.BatchSize != 0 {
		base.Extraction.BatchSize = override.Extraction.BatchSize
	}
	if override.Extraction.UserAgent != "" {
		base.Extraction.UserAgent = override.Extraction.UserAgent
	}
	if override.Extraction.RequestTimeout != "" {
		base.Extraction.RequestTimeout = override.Extraction.RequestTimeout
	}
	if override.Extraction.ListHasHeader != nil {
		base.Extraction.ListHasHeader = override.Extraction.ListHasHeader
	}

	if override.Endpoints.MediaWikiAPI != "" {
		base.Endpoints.MediaWikiAPI = override.Endpoints.MediaWikiAPI
	}
	if override.Endpoints.MediaWikiRaw != "" {
		base.Endpoints.MediaWikiRaw = override.Endpoints.MediaWikiRaw
	}
	if override.Endpoints.WP1 != "" {
		base.Endpoints.WP1 = override.Endpoints.WP1
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Paths:      PathsConfig{InputDir: "input", OutputDir: "output"},
		Logging:    LoggingConfig{Level: "info", Format: "text"},
		Checkpoint: CheckpointConfig{Format: FormatCSV, PersistEvery: 100},
		Extraction: ExtractionConfig{
			BatchSize:      batch.MaxSize,
			UserAgent:      "VisualContentExtractor/1.0",
			RequestTimeout: "30s",
		},
		Endpoints: EndpointConfig{
			MediaWikiAPI: "https://en.wikipedia.org/w/api.php",
			MediaWikiRaw: "https://en.wikipedia.org/w/index.php",
			WP1:          "https://api.wp1.openzim.org/v1",
		},
	}
}

