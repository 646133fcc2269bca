package config

const (
	defaultConfigPath  = "~/.config/libris/config.toml"
	projectConfigName  = "libris.toml"
	lockFileName       = "libris.lock"
	databaseFileName   = "libris.db"
	defaultDataDir     = "~/.local/share/libris"
	defaultStorageKind = DriverSQLite

	defaultGutenbergBaseURL   = "https://www.gutenberg.org"
	defaultGutenbergCoverPath = "/cache/epub/{id}/pg{id}.cover.medium.jpg"
	defaultGutenbergUserAgent = "ProjectLibris/1.0 (Educational; +https://github.com/LarryLuggage/project-libris)"
	defaultRateLimitSeconds   = 1.0
	defaultTimeoutSeconds     = 30.0
	defaultMaxRetries         = 3

	defaultChunkMinWords = 40
	defaultChunkMaxWords = 300

	defaultAnalyzer           = "literary"
	defaultHighScoreThreshold = 0.6
	defaultPositiveWeight     = 0.015
	defaultDescriptiveWeight  = 0.01
	defaultDialogueBonus      = 0.03
	defaultMaxBonus           = 0.15

	defaultIngestCount = 10
	defaultMaxErrors   = 50

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func defaultTextPaths() []string {
	return []string{
		"/cache/epub/{id}/pg{id}.txt",
		"/files/{id}/{id}-0.txt",
		"/files/{id}/{id}.txt",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Storage: Storage{
			Driver: defaultStorageKind,
		},
		Gutenberg: Gutenberg{
			BaseURL:          defaultGutenbergBaseURL,
			TextPaths:        defaultTextPaths(),
			CoverPath:        defaultGutenbergCoverPath,
			UserAgent:        defaultGutenbergUserAgent,
			RateLimitSeconds: defaultRateLimitSeconds,
			TimeoutSeconds:   defaultTimeoutSeconds,
			MaxRetries:       defaultMaxRetries,
		},
		Processing: Processing{
			ChunkMinWords: defaultChunkMinWords,
			ChunkMaxWords: defaultChunkMaxWords,
		},
		Scoring: Scoring{
			Analyzer:           defaultAnalyzer,
			HighScoreThreshold: defaultHighScoreThreshold,
			PositiveWeight:     defaultPositiveWeight,
			DescriptiveWeight:  defaultDescriptiveWeight,
			DialogueBonus:      defaultDialogueBonus,
			MaxBonus:           defaultMaxBonus,
		},
		Ingest: Ingest{
			DefaultCount: defaultIngestCount,
			MaxErrors:    defaultMaxErrors,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
