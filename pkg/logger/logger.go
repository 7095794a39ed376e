package logger

import (
	"log/slog"
	"os"
	"sync"
	"time"
)

var (
	mu  sync.RWMutex
	def *slog.Logger
)

// New собирает логгер по конфигу, не трогая slog.Default.
func New(cfg Config) *slog.Logger {
	if cfg.Env == "" {
		cfg.Env = DetectEnv()
	}
	if cfg.Service == "" {
		cfg.Service = "chat-service"
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	cfg.InstanceID = ensureInstanceID(cfg.InstanceID)

	// Выбор бекенда по умолчанию
	if cfg.Backend == "" {
		if cfg.Env == EnvDev {
			cfg.Backend = BackendStd
		} else {
			cfg.Backend = BackendZap
		}
	}

	var h slog.Handler
	switch cfg.Backend {
	case BackendZap:
		h = newZapHandler(cfg)
	default:
		h = newStdHandler(cfg)
	}

	return slog.New(h.WithAttrs(commonAttr(cfg, time.Now())))
}

// Init настраивает slog.Default в зависимости от среды.
func Init(cfg Config) *slog.Logger {
	base := New(cfg)

	mu.Lock()
	def = base
	mu.Unlock()

	slog.SetDefault(base)
	return base
}

func L() *slog.Logger {
	mu.RLock()
	l := def
	mu.RUnlock()
	if l != nil {
		return l
	}

	return Init(Config{})
}
