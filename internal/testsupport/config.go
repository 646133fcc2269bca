package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/LarryLuggage/project-libris/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The archive is unreachable and unthrottled until WithGutenbergServer is applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Storage.Driver = config.DriverSQLite
	cfgVal.Storage.DSN = filepath.Join(base, "data", "libris.db")
	cfgVal.Gutenberg.BaseURL = "http://127.0.0.1:0"
	cfgVal.Gutenberg.RateLimitSeconds = 0
	cfgVal.Gutenberg.TimeoutSeconds = 5
	cfgVal.Logging.Format = "json"
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithGutenbergServer points the archive settings at a fake server.
func WithGutenbergServer(srv *GutenbergServer) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Gutenberg.BaseURL = srv.URL
	}
}

// WithWindow overrides the excerpt word-count window.
func WithWindow(minWords, maxWords int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Processing.ChunkMinWords = minWords
		b.cfg.Processing.ChunkMaxWords = maxWords
	}
}

// WithCatalogFile writes a seed list into the temp dir and points the config at it.
func WithCatalogFile(yaml string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "catalog.yaml")
		WriteFile(b.t, path, yaml)
		b.cfg.Catalog.Path = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
