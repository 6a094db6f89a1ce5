package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated when absent", "", false},
		{"incoming reused", "abc-123", true},
		{"too long replaced", strings.Repeat("a", maxRequestIDLen+1), false},
		{"control characters replaced", "bad\nid", false},
		{"spaces replaced", "two words", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromCtx(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if seen == "" {
				t.Fatal("request ID missing from context")
			}
			if got := rr.Header().Get(RequestIDHeader); got != seen {
				t.Errorf("response header %q does not match context %q", got, seen)
			}
			if tt.keep {
				if seen != tt.incoming {
					t.Errorf("got %q, want incoming %q", seen, tt.incoming)
				}
				return
			}
			if _, err := uuid.Parse(seen); err != nil {
				t.Errorf("generated ID %q is not a UUID: %v", seen, err)
			}
		})
	}
}

func TestRequestIDFromCtxEmpty(t *testing.T) {
	if got := RequestIDFromCtx(context.Background()); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
