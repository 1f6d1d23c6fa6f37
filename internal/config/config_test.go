package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/cyclecore/internal/security"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Learning.MinUserLogs != 30 || cfg.Learning.SyntheticUsers != 50 || cfg.Learning.SyntheticCycles != 6 {
		t.Errorf("unexpected learning defaults: %#v", cfg.Learning)
	}
	if cfg.RetrainInterval() != 7*24*time.Hour {
		t.Errorf("expected 7 day retrain interval, got %s", cfg.RetrainInterval())
	}
	if cfg.ScorerTimeout() != 500*time.Millisecond {
		t.Errorf("expected 500ms scorer timeout, got %s", cfg.ScorerTimeout())
	}
	if cfg.Ranker.DefaultLimit != 3 {
		t.Errorf("expected default limit 3, got %d", cfg.Ranker.DefaultLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cyclecore.yaml")
	content := `server:
  port: "9090"
database:
  path: /tmp/file.db
learning:
  min_user_logs: 10
ranker:
  scorer_timeout_ms: 250
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DB_PATH", "/tmp/env.db")
	t.Setenv("LOG_MODE", "production")
	t.Setenv("LEARNING_ENABLED", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected file port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("expected env db path, got %s", cfg.Database.Path)
	}
	if cfg.Learning.MinUserLogs != 10 {
		t.Errorf("expected min_user_logs 10, got %d", cfg.Learning.MinUserLogs)
	}
	if cfg.Learning.SyntheticUsers != 50 {
		t.Errorf("expected untouched default synthetic users, got %d", cfg.Learning.SyntheticUsers)
	}
	if cfg.Learning.Enabled {
		t.Error("expected LEARNING_ENABLED=false to disable learning")
	}
	if cfg.Log.Mode != "production" {
		t.Errorf("expected production log mode, got %s", cfg.Log.Mode)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got %v", err)
	}
	if cfg.Ranker.ScorerTimeoutMs != 500 {
		t.Fatalf("expected default scorer timeout, got %d", cfg.Ranker.ScorerTimeoutMs)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "port", content: "server:\n  port: abc\n", want: "server.port"},
		{name: "cycles", content: "learning:\n  synthetic_cycles: 0\n", want: "learning.synthetic_cycles"},
		{name: "timeout", content: "ranker:\n  scorer_timeout_ms: -1\n", want: "ranker.scorer_timeout_ms"},
		{name: "log mode", content: "log:\n  mode: loud\n", want: "log.mode"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cyclecore.yaml")
			if err := os.WriteFile(path, []byte(test.content), 0o600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Fatalf("expected error mentioning %q, got %v", test.want, err)
			}
		})
	}
}

func TestSigningKeyValidatesSecret(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Auth.SecretKey = "change_me_in_production"
	if _, err := cfg.SigningKey(); !errors.Is(err, security.ErrWeakSecret) {
		t.Fatalf("expected ErrWeakSecret, got %v", err)
	}

	cfg.Auth.SecretKey = strings.Repeat("k", 40)
	key, err := cfg.SigningKey()
	if err != nil || len(key) != 32 {
		t.Fatalf("expected 32-byte key, got %d bytes err=%v", len(key), err)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Server.Timezone = "Not/AZone"
	location, ok := cfg.Location()
	if ok || location != time.UTC {
		t.Fatalf("expected UTC fallback, got %v ok=%v", location, ok)
	}

	cfg.Server.Timezone = "Europe/Istanbul"
	location, ok = cfg.Location()
	if !ok || location.String() != "Europe/Istanbul" {
		t.Fatalf("expected Europe/Istanbul, got %v ok=%v", location, ok)
	}
}
