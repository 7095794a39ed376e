package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	PresenceMemory = "memory"
	PresenceRedis  = "redis"
)

type GRPC struct {
	Addr string `yaml:"addr"`
}

type HTTP struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	IdleTimeout    time.Duration `yaml:"idleTimeout"`
	RequestTimeout time.Duration `yaml:"requestTimeout"` // только /api, /ws без таймаута
}

type Logging struct {
	Env        string `yaml:"env"`        // dev|stage|prod
	Service    string `yaml:"service"`    // chat-service
	Version    string `yaml:"version"`    // v0.1.0
	InstanceID string `yaml:"instanceId"` // пусто: hostname + суффикс
	Backend    string `yaml:"backend"`    // std|zap
	Level      string `yaml:"level"`      // debug|info|warn|error
	AddSource  bool   `yaml:"addSource"`  // false|true
	Debug      bool   `yaml:"debug"`      // false|true
}

type Postgres struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"maxConns"`
	MinConns        int32         `yaml:"minConns"`
	MaxConnLifetime time.Duration `yaml:"maxConnLifetime"`
	MaxConnIdleTime time.Duration `yaml:"maxConnIdleTime"`
}

type SQLite struct {
	Path string `yaml:"path"`
}

type Storage struct {
	Driver   string   `yaml:"driver"` // postgres|sqlite
	Migrate  bool     `yaml:"migrate"`
	Postgres Postgres `yaml:"postgres"`
	SQLite   SQLite   `yaml:"sqlite"`
}

type Redis struct {
	URL       string `yaml:"url"`
	KeyPrefix string `yaml:"keyPrefix"`
}

type Presence struct {
	Backend string `yaml:"backend"` // memory|redis
	Redis   Redis  `yaml:"redis"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwtSecret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`
}

type WS struct {
	PingEvery      time.Duration `yaml:"pingEvery"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type Chat struct {
	MaxMessageLength   int `yaml:"maxMessageLength"`
	NotificationsLimit int `yaml:"notificationsLimit"` // 0 — без лимита
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	GRPC     GRPC     `yaml:"grpc"`
	Logging  Logging  `yaml:"logging"`
	Storage  Storage  `yaml:"storage"`
	Presence Presence `yaml:"presence"`
	Auth     Auth     `yaml:"auth"`
	WS       WS       `yaml:"ws"`
	CORS     CORS     `yaml:"cors"`
	Chat     Chat     `yaml:"chat"`
}

// LoadConfig читает .env (если есть), затем YAML из CONFIG_PATH.
// Секреты можно переопределить переменными окружения.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("INSTANCE_ID"); v != "" {
		c.Logging.InstanceID = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Presence.Redis.URL = v
	}
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.GRPC.Addr == "" {
		return errors.New("grpc.addr is required")
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverPostgres
	}
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.Postgres.DSN == "" {
			return errors.New("storage.postgres.dsn is required")
		}
	case DriverSQLite:
		if c.Storage.SQLite.Path == "" {
			c.Storage.SQLite.Path = "./data/chat.db"
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}

	if c.Presence.Backend == "" {
		c.Presence.Backend = PresenceMemory
	}
	switch c.Presence.Backend {
	case PresenceMemory:
	case PresenceRedis:
		if c.Presence.Redis.URL == "" {
			return errors.New("presence.redis.url is required")
		}
		if c.Presence.Redis.KeyPrefix == "" {
			c.Presence.Redis.KeyPrefix = "presence"
		}
	default:
		return fmt.Errorf("presence.backend %q is not supported", c.Presence.Backend)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret is required")
	}
	if c.Chat.NotificationsLimit < 0 {
		return errors.New("chat.notificationsLimit must be >= 0")
	}

	// установка дефолтов, если значения не указаны
	if c.HTTP.ReadTimeout <= 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.RequestTimeout <= 0 {
		c.HTTP.RequestTimeout = 15 * time.Second
	}
	if c.HTTP.IdleTimeout <= 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "chat-service"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.WS.PingEvery <= 0 {
		c.WS.PingEvery = 15 * time.Second
	}
	if c.Chat.MaxMessageLength <= 0 {
		c.Chat.MaxMessageLength = 4000
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "chat-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	return nil
}
