package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestDetectEnv(t *testing.T) {
	t.Setenv("APP_ENV", "")
	if got := DetectEnv(); got != EnvDev {
		t.Fatalf("default should be dev, got %q", got)
	}

	t.Setenv("APP_ENV", "staging")
	if got := DetectEnv(); got != EnvStage {
		t.Fatalf("expected stage, got %q", got)
	}

	t.Setenv("APP_ENV", "Production")
	if got := DetectEnv(); got != EnvProd {
		t.Fatalf("expected prod, got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_DevStd_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{
		Service: "chat",
		Version: "v0.0.1",
		Env:     EnvDev,
		Backend: BackendStd,
		Level:   slog.LevelDebug,
		Output:  &buf,
	})
	l.Info("Hello world")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("expected text output in dev/std, got JSON: %s", out)
	}
	if !strings.Contains(out, "Hello world") {
		t.Fatalf("message missing: %s", out)
	}
	if !strings.Contains(out, "service=chat") {
		t.Fatalf("service attr missing: %s", out)
	}
	if !strings.Contains(out, "env=dev") {
		t.Fatalf("env attr missing: %s", out)
	}
}

func TestNew_ProdZap_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{
		Service:          "chat",
		Version:          "1.2.3",
		Env:              EnvProd,
		Backend:          BackendZap,
		Level:            slog.LevelInfo,
		Output:           &buf,
		SampleInitial:    100000,
		SampleThereafter: 100000,
	})
	l.Info("booted", slog.String("k", "v"))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected JSON line, got %s, err=%v", buf.String(), err)
	}
	if m["msg"] != "booted" {
		t.Fatalf("msg mismatch: %v", m["msg"])
	}
	if m["service"] != "chat" || m["env"] != "prod" || m["version"] != "1.2.3" {
		t.Fatalf("attrs missing: service=%v env=%v version=%v", m["service"], m["env"], m["version"])
	}
	if m["level"] != "INFO" {
		t.Fatalf("level mismatch: %v", m["level"])
	}
	if m["k"] != "v" {
		t.Fatalf("custom field missing: %v", m["k"])
	}
}

func TestNew_DefaultBackendByEnv(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: EnvStage, Output: &buf})
	l.Info("stage")
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatalf("stage should default to zap JSON, got %s", buf.String())
	}
}

func TestAttrsFromCtx_PropagatesTraceIDs(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	var buf bytes.Buffer
	l := New(Config{
		Service:          "chat",
		Env:              EnvProd,
		Backend:          BackendZap,
		Output:           &buf,
		SampleInitial:    100000,
		SampleThereafter: 100000,
	})

	attrs := AttrsFromCtx(ctx)
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	l.InfoContext(ctx, "with trace", args...)

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected JSON, got: %s, err=%v", buf.String(), err)
	}
	if m["trace_id"] == nil || m["span_id"] == nil {
		t.Fatalf("trace_id/span_id missing in log: %v", m)
	}
	if m["msg"] != "with trace" {
		t.Fatalf("msg mismatch: %v", m["msg"])
	}
}

func TestAttrsFromCtx_NoSpan(t *testing.T) {
	if attrs := AttrsFromCtx(context.Background()); attrs != nil {
		t.Fatalf("expected no attrs without span, got %v", attrs)
	}
}

func TestNew_InstanceIDAndExtraAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{
		Env:        EnvProd,
		Backend:    BackendZap,
		InstanceID: "chat-7f9c",
		Attrs:      []slog.Attr{slog.String("storage", "sqlite"), slog.String("presence", "redis")},
		Output:     &buf,
	})
	l.Info("up")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected JSON line, got %s, err=%v", buf.String(), err)
	}
	if m["instance_id"] != "chat-7f9c" {
		t.Fatalf("instance_id = %v", m["instance_id"])
	}
	if m["storage"] != "sqlite" || m["presence"] != "redis" {
		t.Fatalf("extra attrs missing: %v", m)
	}
	if _, ok := m["version"]; ok {
		t.Fatalf("empty version must be omitted")
	}
}

func TestEnsureInstanceID(t *testing.T) {
	if got := ensureInstanceID("pod-1"); got != "pod-1" {
		t.Fatalf("explicit id replaced: %q", got)
	}
	a, b := ensureInstanceID(""), ensureInstanceID("")
	if a == "" || a == b {
		t.Fatalf("generated ids must be unique: %q %q", a, b)
	}
}
