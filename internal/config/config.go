// Package config loads client configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the client needs to talk to the CRMS backend.
type Config struct {
	BaseURL  string        // backend origin, no trailing slash
	Timeout  time.Duration // per-request HTTP timeout
	StateDir string        // where the session file lives
}

// Load reads CRMS_* variables with defaults, loading .env first if present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		BaseURL:  getEnv("CRMS_BASE_URL", "http://localhost:5000"),
		Timeout:  getDuration("CRMS_TIMEOUT", 30*time.Second),
		StateDir: os.Getenv("CRMS_STATE_DIR"),
	}
	if cfg.StateDir == "" {
		cfg.StateDir = defaultStateDir()
	}
	for len(cfg.BaseURL) > 0 && cfg.BaseURL[len(cfg.BaseURL)-1] == '/' {
		cfg.BaseURL = cfg.BaseURL[:len(cfg.BaseURL)-1]
	}
	return cfg
}

func defaultStateDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "crms")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "crms")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
