package httputil

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// тела логируем только на debug и не длиннее maxLoggedBody
const maxLoggedBody = 1024

// MiddlewareLogging логирует метод, путь, статус, длительность и X-Request-ID.
func MiddlewareLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		debug := slog.Default().Enabled(r.Context(), slog.LevelDebug)

		var reqBody string
		if debug && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "json") && r.Body != nil {
			var buf bytes.Buffer
			tee := io.TeeReader(r.Body, &buf)
			b, _ := io.ReadAll(tee)
			r.Body = io.NopCloser(&buf)
			reqBody = clip(string(b))
		}

		lrw := &logResponseWriter{ResponseWriter: w, keepBody: debug}
		next.ServeHTTP(lrw, r)

		reqID, _ := FromContext(r.Context())
		attrs := []any{
			"req_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", lrw.status,
			"bytes", lrw.bytes,
			"duration", time.Since(start).String(),
		}
		if debug {
			attrs = append(attrs, "req_body", reqBody, "resp_body", clip(lrw.body.String()))
		}
		slog.InfoContext(r.Context(), "http request", attrs...)
	})
}

func clip(s string) string {
	if len(s) <= maxLoggedBody {
		return s
	}
	return s[:maxLoggedBody] + "..."
}

type logResponseWriter struct {
	http.ResponseWriter
	status   int
	bytes    int
	keepBody bool
	body     bytes.Buffer
}

func (w *logResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *logResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if w.keepBody && w.body.Len() < maxLoggedBody {
		w.body.Write(b)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n

	return n, err
}

// Hijack нужен для апгрейда в websocket.
func (w *logResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("httputil: underlying writer does not support hijacking")
	}
	if w.status == 0 {
		w.status = http.StatusSwitchingProtocols
	}
	return h.Hijack()
}

func (w *logResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
