package config

import (
	"testing"
	"time"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is empty")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rivo")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("DB_LOCK_TIMEOUT", "3s")
	t.Setenv("CASE_NOTIFICATION_RECIPIENTS", "ops@rivo.test,  ,lead@rivo.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GetLockTimeout() != 3*time.Second {
		t.Errorf("lock timeout = %v, want 3s", cfg.GetLockTimeout())
	}
	if got := cfg.GetCORSOrigins(); len(got) != 2 || got[1] != "http://b.test" {
		t.Errorf("cors origins = %v", got)
	}
	if got := cfg.GetCaseNotificationRecipients(); len(got) != 2 {
		t.Errorf("recipients = %v, want 2 entries", got)
	}
	if cfg.IsMinIOEnabled() {
		t.Error("minio should be disabled without endpoint and credentials")
	}
	if cfg.GetEmailEnabled() {
		t.Error("email should be disabled by default")
	}
}

func TestLoadRejectsWildcardWithCredentials(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rivo")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for wildcard origins with credentials")
	}
}

func TestLoadRejectsInvalidLockTimeout(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rivo")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("DB_LOCK_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparsable lock timeout")
	}
}
