package httpmw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/auth"
)

func TestAuth(t *testing.T) {
	authn := auth.NewAuthenticator("secret", "chat-service", time.Hour)
	expired := auth.NewAuthenticator("secret", "chat-service", -time.Minute)

	var seen string
	h := Auth(authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromCtx(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	good, _ := authn.GenerateToken("u-42", "Bob", "user")
	old, _ := expired.GenerateToken("u-42", "Bob", "user")

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"expired", "Bearer " + old, http.StatusUnauthorized},
		{"valid", "Bearer " + good, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if tc.status == http.StatusNoContent && seen != "u-42" {
				t.Fatalf("user id in ctx = %q", seen)
			}
		})
	}
}

func TestUserIDFromCtx_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := UserIDFromCtx(req.Context()); id != "" {
		t.Fatalf("got %q", id)
	}
}
