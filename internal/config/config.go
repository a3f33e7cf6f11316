package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the server.
type Config struct {
	DatabaseURL      string
	HTTPAddr         string
	JWTSecret        string
	JWTTTL           time.Duration
	UploadDir        string
	ReminderInterval time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		HTTPAddr:         strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		JWTSecret:        strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTTTL:           parseHours(os.Getenv("JWT_TTL_HOURS")),
		UploadDir:        strings.TrimSpace(os.Getenv("UPLOAD_DIR")),
		ReminderInterval: parseSeconds(os.Getenv("REMINDER_INTERVAL_SECONDS")),
		SMTPHost:         strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:         parseInt(os.Getenv("SMTP_PORT")),
		SMTPUser:         strings.TrimSpace(os.Getenv("SMTP_USER")),
		SMTPPass:         os.Getenv("SMTP_PASS"),
		SMTPFrom:         strings.TrimSpace(os.Getenv("SMTP_FROM")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "todolist.db"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.JWTTTL == 0 {
		cfg.JWTTTL = 24 * time.Hour
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.ReminderInterval == 0 {
		cfg.ReminderInterval = 60 * time.Second
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
	}
	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = "no-reply@example.com"
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func parseHours(raw string) time.Duration {
	hours := parseInt(raw)
	if hours <= 0 {
		return 0
	}
	return time.Duration(hours) * time.Hour
}

func parseSeconds(raw string) time.Duration {
	seconds := parseInt(raw)
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func parseInt(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return value
}
