package logger

import (
	"io"
	"log/slog"
	"strings"
)

type Backend string

const (
	BackendStd Backend = "std" // text handler, удобно в dev
	BackendZap Backend = "zap" // slog-zap, JSON
)

type Config struct {
	// Метаданные для логгера
	Service    string
	Version    string
	InstanceID string
	Attrs      []slog.Attr // дополнительные общие атрибуты

	// Управление выводом
	Level   slog.Level
	Env     Env
	Backend Backend // default: zap для stage/prod, std для dev
	Debug   bool
	Output  io.Writer // default: os.Stdout

	// Zap sampling
	SampleInitial    int
	SampleThereafter int

	AddSource bool
}

// ParseLevel — "debug|info|warn|error"; неизвестное значение даёт info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) level() slog.Level {
	if c.Debug && c.Level == 0 {
		return slog.LevelDebug
	}
	return c.Level
}
