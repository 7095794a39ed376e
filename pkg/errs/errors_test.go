package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToHTTP(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("text is required: %w", ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("notification %w", ErrNotFound), http.StatusNotFound},
		{ErrConflict, http.StatusConflict},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrUnavailable, http.StatusServiceUnavailable},
		{ErrUpstream, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := ToHTTP(c.err); got != c.want {
			t.Errorf("ToHTTP(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestPublic_HidesInternalDetails(t *testing.T) {
	if got := Public(errors.New("pq: connection refused")); got != "internal error" {
		t.Fatalf("internal error leaked: %q", got)
	}
	err := fmt.Errorf("text is required: %w", ErrInvalidInput)
	if got := Public(err); got != err.Error() {
		t.Fatalf("client error should pass through, got %q", got)
	}
}
