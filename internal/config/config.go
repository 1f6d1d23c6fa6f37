package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/cyclecore/internal/security"
	"gopkg.in/yaml.v3"
)

// Config is the cyclecore server configuration. File values are applied over
// DefaultConfig and environment variables are applied last.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Learning  LearningConfig  `yaml:"learning"`
	Ranker    RankerConfig    `yaml:"ranker"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port     string `yaml:"port"`
	Timezone string `yaml:"timezone"` // IANA name, UTC when empty
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	SecretKey     string `yaml:"secret_key"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

type KnowledgeConfig struct {
	DefaultLanguage string `yaml:"default_language"`
	Dir             string `yaml:"dir"` // overrides the embedded catalogs
}

type LearningConfig struct {
	Enabled               bool   `yaml:"enabled"`
	MinUserLogs           int    `yaml:"min_user_logs"`
	RetrainIntervalHours  int    `yaml:"retrain_interval_hours"`
	SyntheticUsers        int    `yaml:"synthetic_users"`
	SyntheticCycles       int    `yaml:"synthetic_cycles"`
	SchedulerIntervalMins int    `yaml:"scheduler_interval_mins"`
	Seed                  uint64 `yaml:"seed"`
}

type RankerConfig struct {
	ScorerTimeoutMs int `yaml:"scorer_timeout_ms"`
	DefaultLimit    int `yaml:"default_limit"`
}

type LogConfig struct {
	Mode string `yaml:"mode"` // development or production
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     "8080",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path: filepath.Join("data", "cyclecore.db"),
		},
		Auth: AuthConfig{
			TokenTTLHours: 24 * 30,
		},
		Knowledge: KnowledgeConfig{
			DefaultLanguage: "en",
		},
		Learning: LearningConfig{
			Enabled:               true,
			MinUserLogs:           30,
			RetrainIntervalHours:  24 * 7,
			SyntheticUsers:        50,
			SyntheticCycles:       6,
			SchedulerIntervalMins: 6 * 60,
			Seed:                  1,
		},
		Ranker: RankerConfig{
			ScorerTimeoutMs: 500,
			DefaultLimit:    3,
		},
		Log: LogConfig{
			Mode: "development",
		},
	}
}

// Load reads path when it is set and exists, then applies the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) ApplyEnvOverrides() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Timezone = getEnv("TZ", c.Server.Timezone)
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)
	c.Auth.SecretKey = getEnv("SECRET_KEY", c.Auth.SecretKey)
	c.Knowledge.DefaultLanguage = getEnv("DEFAULT_LANGUAGE", c.Knowledge.DefaultLanguage)
	c.Knowledge.Dir = getEnv("KB_DIR", c.Knowledge.Dir)
	c.Log.Mode = getEnv("LOG_MODE", c.Log.Mode)

	if raw := os.Getenv("LEARNING_ENABLED"); raw != "" {
		if enabled, err := strconv.ParseBool(raw); err == nil {
			c.Learning.Enabled = enabled
		}
	}
}

// Validate checks structural settings. The secret key is checked separately
// by SigningKey so commands that never issue tokens can run without one.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("server.port must not be empty")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric (got: %s)", c.Server.Port)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path must not be empty")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return errors.New("auth.token_ttl_hours must be > 0")
	}
	if c.Learning.MinUserLogs < 0 {
		return errors.New("learning.min_user_logs must be >= 0")
	}
	if c.Learning.RetrainIntervalHours <= 0 {
		return errors.New("learning.retrain_interval_hours must be > 0")
	}
	if c.Learning.SyntheticUsers < 0 {
		return errors.New("learning.synthetic_users must be >= 0")
	}
	if c.Learning.SyntheticCycles < 1 {
		return errors.New("learning.synthetic_cycles must be >= 1")
	}
	if c.Learning.SchedulerIntervalMins <= 0 {
		return errors.New("learning.scheduler_interval_mins must be > 0")
	}
	if c.Ranker.ScorerTimeoutMs <= 0 {
		return errors.New("ranker.scorer_timeout_ms must be > 0")
	}
	if c.Ranker.DefaultLimit <= 0 {
		return errors.New("ranker.default_limit must be > 0")
	}
	if !isValidLogMode(c.Log.Mode) {
		return fmt.Errorf("log.mode must be development or production (got: %s)", c.Log.Mode)
	}
	return nil
}

// SigningKey validates the secret key and derives the token signing key.
func (c *Config) SigningKey() ([]byte, error) {
	return security.DeriveSigningKey(c.Auth.SecretKey)
}

// Location falls back to UTC for unknown zone names.
func (c *Config) Location() (*time.Location, bool) {
	name := strings.TrimSpace(c.Server.Timezone)
	if name == "" {
		return time.UTC, true
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, false
	}
	return location, true
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

func (c *Config) RetrainInterval() time.Duration {
	return time.Duration(c.Learning.RetrainIntervalHours) * time.Hour
}

func (c *Config) SchedulerInterval() time.Duration {
	return time.Duration(c.Learning.SchedulerIntervalMins) * time.Minute
}

func (c *Config) ScorerTimeout() time.Duration {
	return time.Duration(c.Ranker.ScorerTimeoutMs) * time.Millisecond
}

func isValidLogMode(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "development", "dev", "production", "prod":
		return true
	default:
		return false
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
