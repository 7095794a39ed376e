package http

import (
	"context"
	"net/http"
	"time"

	"github.com/cwrk-planet/chat-service/pkg/httputil"
)

// HealthCheck: одна зависимость в /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type Check struct {
	Status  string `json:"status"` // pass|fail
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status    string           `json:"status"` // healthy|degraded
	Checks    map[string]Check `json:"checks"`
	Timestamp string           `json:"timestamp"`
}

// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]Check, len(h.checks))
	healthy := true
	for _, c := range h.checks {
		start := time.Now()
		if err := c.Ping(ctx); err != nil {
			checks[c.Name] = Check{Status: "fail", Message: "unreachable"}
			healthy = false
			continue
		}
		checks[c.Name] = Check{Status: "pass", Latency: time.Since(start).String()}
	}

	resp := HealthResponse{
		Status:    "healthy",
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK
	if !healthy {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	httputil.JSON(w, status, resp)
}
