package app

import (
	"os"
	"strings"
)

type Config struct {
	BackendURL string // Required: base URL of the hosted Thibis backend

	MediaBucket  string // Optional: bucket for sign-up photos (default: pages)
	S3Region     string // Optional: media store region (default: us-east-1)
	S3Endpoint   string // Optional: custom endpoint for S3-compatible stores
	S3AccessKey  string // Optional: media store access key
	S3SecretKey  string // Optional: media store secret key
	StateDir     string // Optional: directory for local state (default: .thibis)
	DatabaseFile string // Optional: path to the registry database (default: <state dir>/thibis.db)
	SessionFile  string // Optional: path to the encrypted session file (default: <state dir>/session.bin)
	Resolution   string // Optional: reported screen resolution for fingerprinting
	ShellAssets  []string

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
}

func LoadConfig() Config {
	stateDir := getEnvOrDefault("THIBIS_STATE_DIR", ".thibis")

	cfg := Config{
		BackendURL:   os.Getenv("THIBIS_BACKEND_URL"),
		MediaBucket:  getEnvOrDefault("THIBIS_MEDIA_BUCKET", "pages"),
		S3Region:     getEnvOrDefault("THIBIS_S3_REGION", "us-east-1"),
		S3Endpoint:   os.Getenv("THIBIS_S3_ENDPOINT"),   // Optional
		S3AccessKey:  os.Getenv("THIBIS_S3_ACCESS_KEY"), // Optional
		S3SecretKey:  os.Getenv("THIBIS_S3_SECRET_KEY"), // Optional
		StateDir:     stateDir,
		DatabaseFile: getEnvOrDefault("THIBIS_DATABASE_FILE", stateDir+"/thibis.db"),
		SessionFile:  getEnvOrDefault("THIBIS_SESSION_FILE", stateDir+"/session.bin"),
		Resolution:   os.Getenv("THIBIS_SCREEN_RESOLUTION"), // Optional
		Env:          getEnvOrDefault("ENV", "dev"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:    getEnvOrDefault("LOG_FORMAT", "json"),
	}

	// Comma-separated list of app-shell asset URLs to prime offline.
	if assets := os.Getenv("THIBIS_SHELL_ASSETS"); assets != "" {
		for _, u := range strings.Split(assets, ",") {
			if u = strings.TrimSpace(u); u != "" {
				cfg.ShellAssets = append(cfg.ShellAssets, u)
			}
		}
	}

	if cfg.BackendURL == "" {
		cfg.BackendURL = "https://api.thibis.app"
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
