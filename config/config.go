package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config carries the process-level configuration, resolved from environment
// variables with sensible defaults for local use.
type Config struct {
	ListenAddr string

	// DataDir holds all JSON-file persistence (library stores, sessions,
	// accounts, settings, image cache).
	DataDir string

	// DatabasePath is the SQLite file backing themed collections.
	DatabasePath string

	// ImageSearchURL is the base URL of the upstream image search service.
	ImageSearchURL string

	// OMDBProxyURL is the base URL of the upstream OMDB proxy.
	OMDBProxyURL string

	// GroqAPIKey optionally seeds the recommendation credential; the runtime
	// settings value takes precedence once configured.
	GroqAPIKey string

	// LogFile enables rotating file logging when set; empty logs to stderr.
	LogFile string

	// LogMaxSizeMB bounds a single log file before rotation.
	LogMaxSizeMB int
}

// Load builds a Config from the environment.
func Load() Config {
	dataDir := envOr("CINEMATCH_DATA_DIR", "./data")

	return Config{
		ListenAddr:     envOr("CINEMATCH_LISTEN_ADDR", ":8484"),
		DataDir:        dataDir,
		DatabasePath:   envOr("CINEMATCH_DB_PATH", filepath.Join(dataDir, "cinematch.db")),
		ImageSearchURL: envOr("CINEMATCH_IMAGE_SEARCH_URL", "http://localhost:8000/image-search"),
		OMDBProxyURL:   envOr("CINEMATCH_OMDB_URL", "http://localhost:8000/omdb"),
		GroqAPIKey:     os.Getenv("CINEMATCH_GROQ_API_KEY"),
		LogFile:        os.Getenv("CINEMATCH_LOG_FILE"),
		LogMaxSizeMB:   envIntOr("CINEMATCH_LOG_MAX_SIZE_MB", 20),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
