package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	API     APIConfig
	Session SessionConfig
	Poll    PollConfig
	Scan    ScanConfig
	Stub    StubConfig
}

type APIConfig struct {
	// BaseURL is the collaborator REST API root, including the /api
	// prefix, e.g. http://localhost:8080/api
	BaseURL string
	// AssetBaseURL resolves relative image paths returned by the API.
	AssetBaseURL string
	Timeout      time.Duration
}

type SessionConfig struct {
	// File is where the serialized session lives between runs.
	File string
}

type PollConfig struct {
	// Interval between scan-status checks while a QR panel is open.
	Interval time.Duration
	// MaxFailures caps consecutive silent poll retries so a dead
	// backend doesn't get hammered forever.
	MaxFailures int
	// NotifyDismiss is how long a scan notification stays on screen.
	NotifyDismiss time.Duration
}

type ScanConfig struct {
	// ResumeDelay is how long the checker view shows an error before
	// scanning resumes on its own.
	ResumeDelay time.Duration
}

type StubConfig struct {
	Port      string
	JWTSecret string
	UploadDir string
	PageSize  int
}

func Load() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      getEnv("NEBULA_API_URL", "http://localhost:8080/api"),
			AssetBaseURL: getEnv("NEBULA_ASSET_URL", "http://localhost:8080"),
			Timeout:      time.Duration(getEnvInt("NEBULA_HTTP_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Session: SessionConfig{
			File: getEnv("NEBULA_SESSION_FILE", defaultSessionFile()),
		},
		Poll: PollConfig{
			Interval:      time.Duration(getEnvInt("NEBULA_POLL_INTERVAL_SECONDS", 3)) * time.Second,
			MaxFailures:   getEnvInt("NEBULA_POLL_MAX_FAILURES", 20),
			NotifyDismiss: 5 * time.Second,
		},
		Scan: ScanConfig{
			ResumeDelay: time.Duration(getEnvInt("NEBULA_SCAN_RESUME_SECONDS", 3)) * time.Second,
		},
		Stub: StubConfig{
			Port:      getEnv("STUB_PORT", ":8080"),
			JWTSecret: getEnv("STUB_JWT_SECRET", "nebula-dev-secret"),
			UploadDir: getEnv("STUB_UPLOAD_DIR", "uploads"),
			PageSize:  getEnvInt("STUB_PAGE_SIZE", 6),
		},
	}
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nebula-session.json"
	}
	return filepath.Join(home, ".nebula", "session.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
