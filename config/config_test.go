package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimal = `
http:
  addr: ":8080"
grpc:
  addr: ":9090"
storage:
  driver: sqlite
auth:
  jwtSecret: s3cret
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Storage.SQLite.Path != "./data/chat.db" {
		t.Errorf("sqlite path default = %q", cfg.Storage.SQLite.Path)
	}
	if cfg.Presence.Backend != PresenceMemory {
		t.Errorf("presence default = %q", cfg.Presence.Backend)
	}
	if cfg.WS.PingEvery != 15*time.Second {
		t.Errorf("ping default = %v", cfg.WS.PingEvery)
	}
	if cfg.HTTP.RequestTimeout != 15*time.Second {
		t.Errorf("request timeout default = %v", cfg.HTTP.RequestTimeout)
	}
	if cfg.Chat.MaxMessageLength != 4000 {
		t.Errorf("max message length default = %d", cfg.Chat.MaxMessageLength)
	}
	if cfg.Logging.Service != "chat-service" || cfg.Logging.Backend != "std" {
		t.Errorf("logging defaults: %+v", cfg.Logging)
	}
}

func TestParse_Durations(t *testing.T) {
	doc := strings.Replace(minimal, "jwtSecret: s3cret", "jwtSecret: x\n  tokenTTL: 90m", 1) + "ws:\n  pingEvery: 3s\n"
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.WS.PingEvery != 3*time.Second {
		t.Errorf("pingEvery = %v", cfg.WS.PingEvery)
	}
	if cfg.Auth.TokenTTL != 90*time.Minute {
		t.Errorf("tokenTTL = %v", cfg.Auth.TokenTTL)
	}
}

func TestParse_Validation(t *testing.T) {
	cases := map[string]string{
		"http.addr":          "grpc:\n  addr: \":1\"\n",
		"storage.postgres":   "http:\n  addr: \":1\"\ngrpc:\n  addr: \":2\"\nauth:\n  jwtSecret: x\n",
		"presence.redis.url": minimal + "presence:\n  backend: redis\n",
		"storage.driver":     strings.Replace(minimal, "sqlite", "mysql", 1),
		"auth.jwtSecret":     strings.Replace(minimal, "jwtSecret: s3cret", "issuer: x", 1),
	}
	for want, doc := range cases {
		_, err := Parse([]byte(doc))
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("expected error mentioning %q, got %v", want, err)
		}
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	cfg, err := Parse([]byte(minimal + "presence:\n  backend: redis\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("jwt secret = %q", cfg.Auth.JWTSecret)
	}
	if cfg.Presence.Redis.URL != "redis://cache:6379/1" || cfg.Presence.Redis.KeyPrefix != "presence" {
		t.Errorf("redis = %+v", cfg.Presence.Redis)
	}
}

func TestLoadConfig_FromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(minimal), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("http addr = %q", cfg.HTTP.Addr)
	}
}
