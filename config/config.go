package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
	"jassjr/internal/domain"
)

// Config holds all configuration for the indexer.
type Config struct {
	Index    IndexConfig    `yaml:"index"`
	Progress ProgressConfig `yaml:"progress"`
	Manifest ManifestConfig `yaml:"manifest"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// IndexConfig holds indexing configuration.
type IndexConfig struct {
	OutputDir        string `yaml:"output_dir"`
	DocumentTag      string `yaml:"document_tag"`
	PrimaryKeyTag    string `yaml:"primary_key_tag"`
	IndexPrimaryKeys bool   `yaml:"index_primary_keys"`
	StopwordsFile    string `yaml:"stopwords_file"` // empty uses the built-in list
	Stemming         bool   `yaml:"stemming"`
	StemCacheSize    int    `yaml:"stem_cache_size"` // 0 disables the cache
	MaxTermBytes     int    `yaml:"max_term_bytes"`
	MaxLineBytes     int    `yaml:"max_line_bytes"`
	ByteOrder        string `yaml:"byte_order"`  // "compat", "native", "little", "big"
	VocabOrder       string `yaml:"vocab_order"` // "first_seen", "sorted"
}

// ProgressConfig controls progress reporting while indexing.
type ProgressConfig struct {
	Enabled  bool `yaml:"enabled"`
	LogEvery int  `yaml:"log_every"` // documents between progress log lines
}

// ManifestConfig controls the build manifest written next to the index.
type ManifestConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

var (
	byteOrders  = []string{"compat", "native", "little", "big"}
	vocabOrders = []string{"first_seen", "sorted"}
	logFormats  = []string{"text", "json"}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			OutputDir:     ".",
			DocumentTag:   "<DOC>",
			PrimaryKeyTag: "<DOCNO>",
			Stemming:      true,
			StemCacheSize: 1 << 16,
			MaxTermBytes:  domain.MaxTermBytes,
			MaxLineBytes:  16 << 20,
			ByteOrder:     "compat",
			VocabOrder:    "first_seen",
		},
		Progress: ProgressConfig{
			Enabled:  false,
			LogEvery: 1000,
		},
		Manifest: ManifestConfig{
			Enabled: true,
			File:    "manifest.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file and applies JASSJR_*
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for jassjr.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "jassjr.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".jassjr", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks values the indexer cannot run with.
func (c *Config) Validate() error {
	idx := c.Index
	if idx.MaxTermBytes < 1 || idx.MaxTermBytes > domain.MaxTermBytes {
		return fmt.Errorf("%w: max_term_bytes must be between 1 and %d, got %d", domain.ErrInvalidConfig, domain.MaxTermBytes, idx.MaxTermBytes)
	}
	if idx.MaxLineBytes <= 0 {
		return fmt.Errorf("%w: max_line_bytes must be positive", domain.ErrInvalidConfig)
	}
	if !isTag(idx.DocumentTag) {
		return fmt.Errorf("%w: document_tag %q is not a tag", domain.ErrInvalidConfig, idx.DocumentTag)
	}
	if !isTag(idx.PrimaryKeyTag) {
		return fmt.Errorf("%w: primary_key_tag %q is not a tag", domain.ErrInvalidConfig, idx.PrimaryKeyTag)
	}
	if idx.DocumentTag == idx.PrimaryKeyTag {
		return fmt.Errorf("%w: document_tag and primary_key_tag must differ", domain.ErrInvalidConfig)
	}
	if !slices.Contains(byteOrders, idx.ByteOrder) {
		return fmt.Errorf("%w: byte_order must be one of %s", domain.ErrInvalidConfig, strings.Join(byteOrders, ", "))
	}
	if !slices.Contains(vocabOrders, idx.VocabOrder) {
		return fmt.Errorf("%w: vocab_order must be one of %s", domain.ErrInvalidConfig, strings.Join(vocabOrders, ", "))
	}
	if idx.StemCacheSize < 0 {
		return fmt.Errorf("%w: stem_cache_size must not be negative", domain.ErrInvalidConfig)
	}
	if !slices.Contains(logFormats, c.Logging.Format) {
		return fmt.Errorf("%w: logging format must be text or json", domain.ErrInvalidConfig)
	}
	if c.Manifest.Enabled && c.Manifest.File == "" {
		return fmt.Errorf("%w: manifest file name is empty", domain.ErrInvalidConfig)
	}
	return nil
}

// ManifestPath returns the path to the build manifest for an output directory.
func (c *Config) ManifestPath(outputDir string) string {
	return filepath.Join(outputDir, c.Manifest.File)
}

// EnsureOutputDir ensures the output directory exists.
func EnsureOutputDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// applyEnvOverrides reads JASSJR_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JASSJR_OUTPUT_DIR"); v != "" {
		cfg.Index.OutputDir = v
	}
	if v := os.Getenv("JASSJR_STOPWORDS_FILE"); v != "" {
		cfg.Index.StopwordsFile = v
	}
	if v := os.Getenv("JASSJR_BYTE_ORDER"); v != "" {
		cfg.Index.ByteOrder = v
	}
	if v := os.Getenv("JASSJR_STEMMING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Index.Stemming = b
		}
	}
	if v := os.Getenv("JASSJR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("JASSJR_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("JASSJR_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Textfile = v
	}
}

func isTag(s string) bool {
	return len(s) >= 2 && s[0] == '<' && s[len(s)-1] == '>'
}
