package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cwrk-planet/chat-service/pkg/errs"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMiddlewareRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	h := MiddlewareRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" {
		t.Fatalf("request id not generated")
	}
	if rec.Header().Get(HeaderRequestID) != seen {
		t.Fatalf("response header %q != ctx %q", rec.Header().Get(HeaderRequestID), seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc" {
		t.Fatalf("incoming request id not kept, got %q", seen)
	}
}

func TestOK_WrapsData(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]int{"count": 3})

	var body struct {
		Data map[string]int `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data["count"] != 3 {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestFromErr_MapsKind(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	FromErr(req.Context(), rec, fmt.Errorf("notification %w", errs.ErrNotFound))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	FromErr(req.Context(), rec, errors.New("db down"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error.Message != "internal error" {
		t.Fatalf("internal details leaked: %q", body.Error.Message)
	}
}

func TestMiddlewareLogging_KeepsStatus(t *testing.T) {
	h := MiddlewareLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMiddlewareTracing_StartsSpan(t *testing.T) {
	prev := otel.GetTracerProvider()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	var valid bool
	h := MiddlewareRequestID(MiddlewareTracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		valid = trace.SpanContextFromContext(r.Context()).IsValid()
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/conversations", nil))
	if !valid {
		t.Fatal("span not started")
	}
}
