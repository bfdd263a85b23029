package store

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen(t *testing.T) {
	t.Run("memory by default", func(t *testing.T) {
		s, err := Open(context.Background(), Config{}, discardLogger())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if _, ok := s.(*MemoryStore); !ok {
			t.Errorf("Open() = %T, want *MemoryStore", s)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		if _, err := Open(context.Background(), Config{Driver: "mongo"}, discardLogger()); err == nil {
			t.Error("Open() expected error for unknown driver")
		}
	})

	t.Run("defra applies schema", func(t *testing.T) {
		var schemaCalls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/v0/schema" {
				schemaCalls++
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		s, err := Open(context.Background(), Config{Driver: DriverDefra, DefraURL: srv.URL}, discardLogger())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if _, ok := s.(*DefraStore); !ok {
			t.Errorf("Open() = %T, want *DefraStore", s)
		}
		if schemaCalls != 1 {
			t.Errorf("schema calls = %d, want 1", schemaCalls)
		}
	})
}
