package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const secretKeyEnv = "LAZYTODO_SECRET_KEY"

type Config struct {
	DBPath                 string `json:"db_path"`
	WebPort                int    `json:"web_port"`
	SecretKey              string `json:"secret_key"`
	SessionTTLMinutes      int    `json:"session_ttl_minutes"`
	BcryptCost             int    `json:"bcrypt_cost"`
	RedisAddr              string `json:"redis_addr"`
	SecureCookies          bool   `json:"secure_cookies"`
	ShutdownTimeoutSeconds int    `json:"shutdown_timeout_seconds"`
}

func Default() Config {
	return Config{
		WebPort:                8080,
		SessionTTLMinutes:      720,
		BcryptCost:             12,
		ShutdownTimeoutSeconds: 30,
	}
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// EnsureSecret generates and stores a signing key when the config has none.
// It reports whether the config changed.
func (c *Config) EnsureSecret() bool {
	if c.SecretKey != "" {
		return false
	}
	c.SecretKey = uuid.NewString() + uuid.NewString()
	return true
}

// ResolvedSecret prefers the environment over the stored key.
func (c Config) ResolvedSecret() string {
	if value := os.Getenv(secretKeyEnv); value != "" {
		return value
	}
	return c.SecretKey
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lazytodo", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	config.applyDefaults()
	return config, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// The file holds the signing key.
	return os.WriteFile(path, data, 0o600)
}

func (c *Config) applyDefaults() {
	defaults := Default()
	if c.WebPort == 0 {
		c.WebPort = defaults.WebPort
	}
	if c.SessionTTLMinutes <= 0 {
		c.SessionTTLMinutes = defaults.SessionTTLMinutes
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = defaults.BcryptCost
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		c.ShutdownTimeoutSeconds = defaults.ShutdownTimeoutSeconds
	}
}
