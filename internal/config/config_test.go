package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LarryLuggage/project-libris/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LIBRIS_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "")
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolateEnv(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(home, ".local", "share", "libris")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Storage.Driver != config.DriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.DSN != filepath.Join(wantData, "libris.db") {
		t.Fatalf("unexpected dsn: %q", cfg.Storage.DSN)
	}
	if cfg.LockPath() != filepath.Join(wantData, "libris.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
	if cfg.Processing.ChunkMinWords != 40 || cfg.Processing.ChunkMaxWords != 300 {
		t.Fatalf("unexpected chunk window: %d..%d", cfg.Processing.ChunkMinWords, cfg.Processing.ChunkMaxWords)
	}
	if cfg.Scoring.Analyzer != "literary" {
		t.Fatalf("expected literary analyzer, got %q", cfg.Scoring.Analyzer)
	}
	if cfg.Scoring.HighScoreThreshold != 0.6 {
		t.Fatalf("unexpected threshold: %v", cfg.Scoring.HighScoreThreshold)
	}
	if cfg.RateLimit() != time.Second {
		t.Fatalf("unexpected rate limit: %v", cfg.RateLimit())
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.RequestTimeout())
	}
	if len(cfg.Gutenberg.TextPaths) != 3 {
		t.Fatalf("expected three text paths, got %v", cfg.Gutenberg.TextPaths)
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	home := isolateEnv(t)

	path := filepath.Join(t.TempDir(), "libris.toml")
	content := `
[paths]
data_dir = "~/libris-data"

[gutenberg]
base_url = "http://mirror.example.org/"
rate_limit_seconds = 0.25
max_retries = 5

[processing]
chunk_min_words = 10
chunk_max_words = 120

[scoring]
analyzer = " Hybrid "
high_score_threshold = 0.7
positive_keywords = [" dawn ", "", "bloom"]

[logging]
format = "JSON"
level = "DEBUG"
dir = "~/logs"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config %q to exist, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(home, "libris-data") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Storage.DSN != filepath.Join(home, "libris-data", "libris.db") {
		t.Fatalf("dsn should follow data dir, got %q", cfg.Storage.DSN)
	}
	if cfg.Gutenberg.BaseURL != "http://mirror.example.org" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Gutenberg.BaseURL)
	}
	if cfg.RateLimit() != 250*time.Millisecond {
		t.Fatalf("unexpected rate limit: %v", cfg.RateLimit())
	}
	if cfg.Gutenberg.MaxRetries != 5 {
		t.Fatalf("unexpected retries: %d", cfg.Gutenberg.MaxRetries)
	}
	if cfg.Scoring.Analyzer != "hybrid" {
		t.Fatalf("expected normalized analyzer, got %q", cfg.Scoring.Analyzer)
	}
	if got := strings.Join(cfg.Scoring.PositiveKeywords, ","); got != "dawn,bloom" {
		t.Fatalf("unexpected keywords: %q", got)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging settings: %+v", cfg.Logging)
	}
	if cfg.Logging.Dir != filepath.Join(home, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Logging.Dir)
	}
}

func TestLoadUsesDatabaseURLFromEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("DATABASE_URL", "postgres://libris@localhost/libris?sslmode=disable")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.Driver != config.DriverPostgres {
		t.Fatalf("expected postgres driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.DSN != "postgres://libris@localhost/libris?sslmode=disable" {
		t.Fatalf("unexpected dsn: %q", cfg.Storage.DSN)
	}
}

func TestLoadPrefersLibrisDatabaseURL(t *testing.T) {
	isolateEnv(t)
	t.Setenv("LIBRIS_DATABASE_URL", "postgresql://primary/libris")
	t.Setenv("DATABASE_URL", "postgres://secondary/other")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.DSN != "postgresql://primary/libris" {
		t.Fatalf("unexpected dsn: %q", cfg.Storage.DSN)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"driver", func(c *config.Config) { c.Storage.Driver = "mysql" }, "storage.driver"},
		{"postgres without dsn", func(c *config.Config) { c.Storage.Driver = config.DriverPostgres; c.Storage.DSN = "" }, "storage.dsn"},
		{"text path placeholder", func(c *config.Config) { c.Gutenberg.TextPaths = []string{"/files/book.txt"} }, "gutenberg.text_paths"},
		{"negative rate", func(c *config.Config) { c.Gutenberg.RateLimitSeconds = -1 }, "gutenberg.rate_limit_seconds"},
		{"zero retries", func(c *config.Config) { c.Gutenberg.MaxRetries = 0 }, "gutenberg.max_retries"},
		{"window", func(c *config.Config) { c.Processing.ChunkMaxWords = 10 }, "processing.chunk_max_words"},
		{"analyzer", func(c *config.Config) { c.Scoring.Analyzer = "vader" }, "scoring.analyzer"},
		{"threshold", func(c *config.Config) { c.Scoring.HighScoreThreshold = 1.5 }, "scoring.high_score_threshold"},
		{"max bonus", func(c *config.Config) { c.Scoring.MaxBonus = 2 }, "scoring.max_bonus"},
		{"max errors", func(c *config.Config) { c.Ingest.MaxErrors = 0 }, "ingest.max_errors"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Storage.DSN = "/tmp/libris.db"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[paths\ndata_dir = 1"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	defaults := config.Default()
	if cfg.Gutenberg.UserAgent != defaults.Gutenberg.UserAgent {
		t.Fatalf("sample user agent drifted from defaults: %q", cfg.Gutenberg.UserAgent)
	}
	if cfg.Scoring.MaxBonus != defaults.Scoring.MaxBonus || cfg.Ingest.DefaultCount != defaults.Ingest.DefaultCount {
		t.Fatalf("sample values drifted from defaults: %+v %+v", cfg.Scoring, cfg.Ingest)
	}
	if cfg.Paths.DataDir != filepath.Join(home, ".local", "share", "libris") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
}

func TestEnsureDirectoriesCreatesDataAndLogDirs(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Logging.Dir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Logging.Dir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}
