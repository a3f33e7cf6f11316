package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "HTTP_ADDR", "JWT_SECRET", "JWT_TTL_HOURS",
		"UPLOAD_DIR", "REMINDER_INTERVAL_SECONDS",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "SMTP_FROM",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "todolist.db" {
		t.Errorf("database url = %q", cfg.DatabaseURL)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("http addr = %q", cfg.HTTPAddr)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("jwt ttl = %v", cfg.JWTTTL)
	}
	if cfg.UploadDir != "uploads" {
		t.Errorf("upload dir = %q", cfg.UploadDir)
	}
	if cfg.ReminderInterval != 60*time.Second {
		t.Errorf("reminder interval = %v", cfg.ReminderInterval)
	}
	if cfg.SMTPPort != 587 {
		t.Errorf("smtp port = %d", cfg.SMTPPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "data/app.db")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("REMINDER_INTERVAL_SECONDS", "15")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "data/app.db" {
		t.Errorf("database url = %q", cfg.DatabaseURL)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("http addr = %q", cfg.HTTPAddr)
	}
	if cfg.JWTTTL != 2*time.Hour {
		t.Errorf("jwt ttl = %v", cfg.JWTTTL)
	}
	if cfg.ReminderInterval != 15*time.Second {
		t.Errorf("reminder interval = %v", cfg.ReminderInterval)
	}
	if cfg.SMTPPort != 2525 {
		t.Errorf("smtp port = %d", cfg.SMTPPort)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	clearEnv(t)

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}
