package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
}

// Storage selects the persistence backend.
type Storage struct {
	// Driver is "sqlite" or "postgres".
	Driver string `toml:"driver"`
	// DSN is a file path for sqlite or a connection URL for postgres.
	DSN string `toml:"dsn"`
}

// Gutenberg contains archive endpoints and politeness settings.
type Gutenberg struct {
	BaseURL          string   `toml:"base_url"`
	TextPaths        []string `toml:"text_paths"`
	CoverPath        string   `toml:"cover_path"`
	UserAgent        string   `toml:"user_agent"`
	RateLimitSeconds float64  `toml:"rate_limit_seconds"`
	TimeoutSeconds   float64  `toml:"timeout_seconds"`
	MaxRetries       int      `toml:"max_retries"`
	VerifyCovers     bool     `toml:"verify_covers"`
}

// Processing controls how book text is cut into excerpts.
type Processing struct {
	ChunkMinWords int `toml:"chunk_min_words"`
	ChunkMaxWords int `toml:"chunk_max_words"`
}

// Scoring selects and tunes the sentiment scorer.
type Scoring struct {
	Analyzer           string  `toml:"analyzer"`
	HighScoreThreshold float64 `toml:"high_score_threshold"`
	LexiconPath        string  `toml:"lexicon_path"`
	// Keyword lists replace the built-in lists when non-empty.
	PositiveKeywords    []string `toml:"positive_keywords"`
	DescriptiveKeywords []string `toml:"descriptive_keywords"`
	PositiveWeight      float64  `toml:"positive_weight"`
	DescriptiveWeight   float64  `toml:"descriptive_weight"`
	DialogueBonus       float64  `toml:"dialogue_bonus"`
	MaxBonus            float64  `toml:"max_bonus"`
}

// Catalog points at an optional replacement seed list.
type Catalog struct {
	Path string `toml:"path"`
}

// Ingest contains batch defaults.
type Ingest struct {
	DefaultCount int `toml:"default_count"`
	MaxErrors    int `toml:"max_errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for libris.
//
// Configuration sections by subsystem:
//   - Paths: data directory holding the default database and run lock
//   - Storage: sqlite file or postgres URL
//   - Gutenberg: archive URLs, rate limit, timeout and retries
//   - Processing: excerpt word-count window
//   - Scoring: analyzer variant, feed threshold and keyword bonus weights
//   - Catalog: optional seed list override
//   - Ingest: batch defaults
//   - Logging: log format, level and optional file directory
type Config struct {
	Paths      Paths      `toml:"paths"`
	Storage    Storage    `toml:"storage"`
	Gutenberg  Gutenberg  `toml:"gutenberg"`
	Processing Processing `toml:"processing"`
	Scoring    Scoring    `toml:"scoring"`
	Catalog    Catalog    `toml:"catalog"`
	Ingest     Ingest     `toml:"ingest"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data directory and, when configured, the log directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir}
	if c.Logging.Dir != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath is the file guarding against concurrent ingestion runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, lockFileName)
}

// RateLimit returns the minimum spacing between archive requests.
func (c *Config) RateLimit() time.Duration {
	return secondsToDuration(c.Gutenberg.RateLimitSeconds)
}

// RequestTimeout returns the per-request archive timeout.
func (c *Config) RequestTimeout() time.Duration {
	return secondsToDuration(c.Gutenberg.TimeoutSeconds)
}

func secondsToDuration(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
