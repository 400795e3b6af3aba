package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WebPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.WebPort)
	}
	if cfg.SessionTTL() != 12*time.Hour {
		t.Fatalf("expected 12h session ttl, got %s", cfg.SessionTTL())
	}
}

func TestSaveLoadRoundTripKeepsSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	if !cfg.EnsureSecret() {
		t.Fatalf("expected a secret to be generated")
	}
	if cfg.EnsureSecret() {
		t.Fatalf("expected existing secret to be kept")
	}
	cfg.WebPort = 9090

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.SecretKey != cfg.SecretKey || loaded.WebPort != 9090 {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestResolvedSecretPrefersEnvironment(t *testing.T) {
	t.Setenv(secretKeyEnv, "")
	cfg := Config{SecretKey: "stored"}
	if cfg.ResolvedSecret() != "stored" {
		t.Fatalf("expected stored secret")
	}
	t.Setenv(secretKeyEnv, "from-env")
	if cfg.ResolvedSecret() != "from-env" {
		t.Fatalf("expected env secret to win")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
