package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type AppConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	WSAddr   string `yaml:"ws_addr"`

	SessionStore  string `yaml:"session_store"`
	RedisURL      string `yaml:"redis_url"`
	DatabaseURL   string `yaml:"database_url"`
	SessionTTLSec int    `yaml:"session_ttl"`
	MaxSessions   int    `yaml:"max_sessions"`

	MessagesDir    string   `yaml:"messages_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// SessionTTL is SessionTTLSec as a duration.
func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSec) * time.Second
}

func defaults() *AppConfig {
	return &AppConfig{
		HTTPAddr:      ":8080",
		WSAddr:        ":8081",
		SessionStore:  StoreMemory,
		SessionTTLSec: 86400,
		MaxSessions:   200,
	}
}

// Load builds the config from defaults, then the YAML file named by
// CONFIG_FILE (if set), then environment variables.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		c.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("WS_ADDR")); v != "" {
		c.WSAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("SESSION_STORE")); v != "" {
		c.SessionStore = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		c.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		c.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("SESSION_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.SessionTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_SESSIONS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxSessions = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MESSAGES_DIR")); v != "" {
		c.MessagesDir = v
	}
	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		c.AllowedOrigins = splitList(v)
	}
}

func (c *AppConfig) validate() error {
	c.SessionStore = strings.ToLower(strings.TrimSpace(c.SessionStore))
	switch c.SessionStore {
	case StoreMemory:
	case StoreRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return errors.New("REDIS_URL is required when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, c.SessionStore)
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return errors.New("HTTP_ADDR is required")
	}
	if c.SessionTTLSec <= 0 {
		c.SessionTTLSec = defaults().SessionTTLSec
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = defaults().MaxSessions
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
