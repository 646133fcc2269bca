package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/LarryLuggage/project-libris/internal/catalog"
	"github.com/LarryLuggage/project-libris/internal/config"
	"github.com/LarryLuggage/project-libris/internal/gutenberg"
	"github.com/LarryLuggage/project-libris/internal/library"
	"github.com/LarryLuggage/project-libris/internal/logging"
	"github.com/LarryLuggage/project-libris/internal/sentiment"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
				if err := cfg.Validate(); err != nil {
					c.configErr = fmt.Errorf("--log-level: %w", err)
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// logger builds the command logger. Log lines go to the command's stderr so
// tables and summaries on stdout stay clean.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func (c *commandContext) openStore(ctx context.Context, logger *slog.Logger) (*library.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := library.Open(ctx, library.Options{
		Driver: cfg.Storage.Driver,
		DSN:    cfg.Storage.DSN,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	return store, nil
}

func (c *commandContext) withStore(cmd *cobra.Command, fn func(*library.Store) error) error {
	logger, err := c.logger(cmd)
	if err != nil {
		return err
	}
	store, err := c.openStore(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (c *commandContext) loadCatalog() (*catalog.Catalog, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Catalog.Path != "" {
		return catalog.Load(cfg.Catalog.Path)
	}
	return catalog.Default()
}

func (c *commandContext) analyzer() (*sentiment.Analyzer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Scoring.LexiconPath != "" {
		return sentiment.LoadAnalyzer(cfg.Scoring.LexiconPath)
	}
	return sentiment.DefaultAnalyzer()
}

func (c *commandContext) keywordPolicy() sentiment.KeywordPolicy {
	policy := sentiment.DefaultKeywordPolicy()
	cfg := c.config
	if cfg == nil {
		return policy
	}
	if len(cfg.Scoring.PositiveKeywords) > 0 {
		policy.Positive = cfg.Scoring.PositiveKeywords
	}
	if len(cfg.Scoring.DescriptiveKeywords) > 0 {
		policy.Descriptive = cfg.Scoring.DescriptiveKeywords
	}
	policy.PositiveWeight = cfg.Scoring.PositiveWeight
	policy.DescriptiveWeight = cfg.Scoring.DescriptiveWeight
	policy.DialogueBonus = cfg.Scoring.DialogueBonus
	policy.MaxBonus = cfg.Scoring.MaxBonus
	return policy
}

// scorer resolves the configured variant, or override when non-empty.
func (c *commandContext) scorer(override string) (sentiment.Scorer, sentiment.Kind, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	name := cfg.Scoring.Analyzer
	if strings.TrimSpace(override) != "" {
		name = override
	}
	kind, err := sentiment.ParseKind(name)
	if err != nil {
		return nil, "", err
	}
	analyzer, err := c.analyzer()
	if err != nil {
		return nil, "", err
	}
	scorer, err := sentiment.New(kind, analyzer, c.keywordPolicy())
	if err != nil {
		return nil, "", err
	}
	return scorer, kind, nil
}

func (c *commandContext) fetcher(logger *slog.Logger) (*gutenberg.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return gutenberg.NewClient(gutenberg.Config{
		BaseURL:    cfg.Gutenberg.BaseURL,
		TextPaths:  cfg.Gutenberg.TextPaths,
		CoverPath:  cfg.Gutenberg.CoverPath,
		UserAgent:  cfg.Gutenberg.UserAgent,
		RateLimit:  cfg.RateLimit(),
		Timeout:    cfg.RequestTimeout(),
		MaxRetries: cfg.Gutenberg.MaxRetries,
	}, gutenberg.WithLogger(logger)), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
