package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestNewHTTPFunc tests the HTTP transport against a local test server.
func TestNewHTTPFunc(t *testing.T) {
	t.Parallel()

	t.Run("returns status and body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
				t.Errorf("unexpected User-Agent: %q", ua)
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("<html>hello</html>"))
		}))
		defer srv.Close()

		fn := NewHTTPFunc(srv.Client(), "test-agent", 1<<20)
		status, body, err := fn(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if status != http.StatusOK {
			t.Errorf("status = %d, want %d", status, http.StatusOK)
		}
		if string(body) != "<html>hello</html>" {
			t.Errorf("body = %q", body)
		}
	})

	t.Run("caps body at max size", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", 1024)))
		}))
		defer srv.Close()

		fn := NewHTTPFunc(srv.Client(), "test-agent", 16)
		_, body, err := fn(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(body) != 16 {
			t.Errorf("body length = %d, want 16", len(body))
		}
	})

	t.Run("reports non-success statuses without error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		fn := NewHTTPFunc(srv.Client(), "test-agent", 1<<20)
		status, _, err := fn(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if status != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want %d", status, http.StatusServiceUnavailable)
		}
	})

	t.Run("propagates context cancellation", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fn := NewHTTPFunc(srv.Client(), "test-agent", 1<<20)
		if _, _, err := fn(ctx, srv.URL); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}
