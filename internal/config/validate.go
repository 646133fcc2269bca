package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateGutenberg(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("storage.driver: unsupported value %q (want sqlite or postgres)", c.Storage.Driver)
	}
	if c.Storage.DSN == "" {
		return errors.New("storage.dsn must be set for the postgres driver (or export LIBRIS_DATABASE_URL)")
	}
	return nil
}

func (c *Config) validateGutenberg() error {
	if !strings.HasPrefix(c.Gutenberg.BaseURL, "http://") && !strings.HasPrefix(c.Gutenberg.BaseURL, "https://") {
		return fmt.Errorf("gutenberg.base_url must be an http(s) URL, got %q", c.Gutenberg.BaseURL)
	}
	for _, path := range c.Gutenberg.TextPaths {
		if !strings.Contains(path, "{id}") {
			return fmt.Errorf("gutenberg.text_paths: %q must contain the {id} placeholder", path)
		}
	}
	if !strings.Contains(c.Gutenberg.CoverPath, "{id}") {
		return errors.New("gutenberg.cover_path must contain the {id} placeholder")
	}
	if c.Gutenberg.RateLimitSeconds < 0 {
		return errors.New("gutenberg.rate_limit_seconds must be zero or greater")
	}
	if c.Gutenberg.TimeoutSeconds <= 0 {
		return errors.New("gutenberg.timeout_seconds must be positive")
	}
	if c.Gutenberg.MaxRetries < 1 {
		return errors.New("gutenberg.max_retries must be at least 1")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	if c.Processing.ChunkMinWords < 1 {
		return errors.New("processing.chunk_min_words must be at least 1")
	}
	if c.Processing.ChunkMaxWords < c.Processing.ChunkMinWords {
		return errors.New("processing.chunk_max_words must be greater than or equal to chunk_min_words")
	}
	return nil
}

func (c *Config) validateScoring() error {
	switch c.Scoring.Analyzer {
	case "polarity", "textblob", "hybrid", "literary":
	default:
		return fmt.Errorf("scoring.analyzer: unsupported value %q (want polarity, hybrid or literary)", c.Scoring.Analyzer)
	}
	if c.Scoring.HighScoreThreshold < 0 || c.Scoring.HighScoreThreshold > 1 {
		return errors.New("scoring.high_score_threshold must be between 0 and 1")
	}
	weights := map[string]float64{
		"positive_weight":    c.Scoring.PositiveWeight,
		"descriptive_weight": c.Scoring.DescriptiveWeight,
		"dialogue_bonus":     c.Scoring.DialogueBonus,
		"max_bonus":          c.Scoring.MaxBonus,
	}
	for name, value := range weights {
		if value < 0 || value > 1 {
			return fmt.Errorf("scoring.%s must be between 0 and 1", name)
		}
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.DefaultCount < 1 {
		return errors.New("ingest.default_count must be at least 1")
	}
	if c.Ingest.MaxErrors < 1 {
		return errors.New("ingest.max_errors must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
