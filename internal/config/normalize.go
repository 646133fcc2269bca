package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeGutenberg()
	if err := c.normalizeScoring(); err != nil {
		return err
	}
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStorage() error {
	c.Storage.DSN = strings.TrimSpace(c.Storage.DSN)
	if c.Storage.DSN == "" {
		for _, key := range []string{"LIBRIS_DATABASE_URL", "DATABASE_URL"} {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				c.Storage.DSN = strings.TrimSpace(value)
				break
			}
		}
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if isPostgresURL(c.Storage.DSN) {
		c.Storage.Driver = DriverPostgres
	}
	if c.Storage.Driver == "" || c.Storage.Driver == "sqlite3" {
		c.Storage.Driver = DriverSQLite
	}
	if c.Storage.Driver == "postgresql" {
		c.Storage.Driver = DriverPostgres
	}

	if c.Storage.Driver != DriverSQLite {
		return nil
	}
	if c.Storage.DSN == "" {
		c.Storage.DSN = filepath.Join(c.Paths.DataDir, databaseFileName)
		return nil
	}
	if c.Storage.DSN == ":memory:" || strings.HasPrefix(c.Storage.DSN, "file:") {
		return nil
	}
	var err error
	if c.Storage.DSN, err = expandPath(c.Storage.DSN); err != nil {
		return fmt.Errorf("storage.dsn: %w", err)
	}
	return nil
}

func isPostgresURL(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

func (c *Config) normalizeGutenberg() {
	c.Gutenberg.BaseURL = strings.TrimRight(strings.TrimSpace(c.Gutenberg.BaseURL), "/")
	if c.Gutenberg.BaseURL == "" {
		c.Gutenberg.BaseURL = defaultGutenbergBaseURL
	}
	paths := make([]string, 0, len(c.Gutenberg.TextPaths))
	for _, path := range c.Gutenberg.TextPaths {
		if path = strings.TrimSpace(path); path != "" {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		paths = defaultTextPaths()
	}
	c.Gutenberg.TextPaths = paths
	c.Gutenberg.CoverPath = strings.TrimSpace(c.Gutenberg.CoverPath)
	if c.Gutenberg.CoverPath == "" {
		c.Gutenberg.CoverPath = defaultGutenbergCoverPath
	}
	c.Gutenberg.UserAgent = strings.TrimSpace(c.Gutenberg.UserAgent)
	if c.Gutenberg.UserAgent == "" {
		c.Gutenberg.UserAgent = defaultGutenbergUserAgent
	}
}

func (c *Config) normalizeScoring() error {
	c.Scoring.Analyzer = strings.ToLower(strings.TrimSpace(c.Scoring.Analyzer))
	if c.Scoring.Analyzer == "" {
		c.Scoring.Analyzer = defaultAnalyzer
	}
	c.Scoring.PositiveKeywords = trimList(c.Scoring.PositiveKeywords)
	c.Scoring.DescriptiveKeywords = trimList(c.Scoring.DescriptiveKeywords)
	var err error
	if c.Scoring.LexiconPath, err = expandPath(strings.TrimSpace(c.Scoring.LexiconPath)); err != nil {
		return fmt.Errorf("scoring.lexicon_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() error {
	var err error
	if c.Catalog.Path, err = expandPath(strings.TrimSpace(c.Catalog.Path)); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}
