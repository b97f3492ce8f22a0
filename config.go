package main

import (
	"errors"
	"os"
	"strconv"
)

// appConfig is read once from the environment at startup. Mail, archive and
// AI suggestion settings are optional; their endpoints answer 503 when unset.
type appConfig struct {
	DBURL    string
	Port     string
	LogLevel string

	OpenAIKey     string
	OpenAIBaseURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	ExportBucket string
	ExportRegion string
	ExportPrefix string
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// loadConfig reads appConfig from the process environment.
func loadConfig() (appConfig, error) {
	cfg := appConfig{
		DBURL:         os.Getenv("DB_URL"),
		Port:          envOr("PORT", "3000"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:      os.Getenv("SMTP_FROM"),
		ExportBucket:  os.Getenv("EXPORT_S3_BUCKET"),
		ExportRegion:  os.Getenv("EXPORT_S3_REGION"),
		ExportPrefix:  envOr("EXPORT_S3_PREFIX", "exports/"),
	}
	if cfg.DBURL == "" {
		return cfg, errors.New("DB_URL is required")
	}
	port, err := strconv.Atoi(envOr("SMTP_PORT", "587"))
	if err != nil {
		return cfg, errors.New("SMTP_PORT must be a number")
	}
	cfg.SMTPPort = port
	return cfg, nil
}

func (c appConfig) mailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func (c appConfig) archiveConfigured() bool {
	return c.ExportBucket != ""
}
