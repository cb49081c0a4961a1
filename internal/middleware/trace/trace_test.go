package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"jiceot/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Component: "test", Output: &buf})

	var seen string
	h := log.Middleware(logger)(NewMiddleware(func(*http.Request) string { return "203.0.113.7" }).Middleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
			log.FromContext(r.Context()).Info("inside handler")
			w.WriteHeader(http.StatusNoContent)
		})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	header := rr.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(header); err != nil {
		t.Fatalf("%s = %q, want a uuid", RequestIDHeader, header)
	}
	if seen != header {
		t.Errorf("context request id = %q, want %q", seen, header)
	}

	out := buf.String()
	for _, want := range []string{"HTTP request started", "HTTP request completed", "inside handler", "request_id=" + header, "status_code=204"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestMiddlewareKeepsValidIncomingID(t *testing.T) {
	incoming := uuid.NewString()
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"valid uuid kept", incoming, true},
		{"garbage replaced", "not-a-uuid", false},
		{"missing minted", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMiddleware(nil)
			h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			got := rr.Header().Get(RequestIDHeader)
			if tt.keep && got != tt.header {
				t.Errorf("request id = %q, want %q", got, tt.header)
			}
			if !tt.keep && (got == tt.header || got == "") {
				t.Errorf("request id = %q, want a fresh uuid", got)
			}
			if m.GetMetrics().TotalRequests != 1 {
				t.Errorf("TotalRequests = %d, want 1", m.GetMetrics().TotalRequests)
			}
		})
	}
}
