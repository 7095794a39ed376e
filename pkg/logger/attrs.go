package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// ensureInstanceID: явный id из конфига, иначе имя хоста (в k8s это имя пода)
// с коротким случайным суффиксом, чтобы рестарты одного пода различались.
func ensureInstanceID(v string) string {
	if v != "" {
		return v
	}
	hn, err := os.Hostname()
	if err != nil || hn == "" {
		hn = "chat"
	}
	return hn + "-" + uuid.NewString()[:8]
}

// commonAttr: атрибуты, которые попадают в каждую запись.
// cfg.Attrs идут последними, так что сервис может дописать свои (storage, presence).
func commonAttr(cfg Config, startedAt time.Time) []slog.Attr {
	out := make([]slog.Attr, 0, 5+len(cfg.Attrs))
	out = append(out,
		slog.String("service", cfg.Service),
		slog.String("env", string(cfg.Env)),
		slog.String("instance_id", cfg.InstanceID),
		slog.Time("started_at", startedAt),
	)
	if cfg.Version != "" {
		out = append(out, slog.String("version", cfg.Version))
	}
	return append(out, cfg.Attrs...)
}
