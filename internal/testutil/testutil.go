// Package testutil provides shared test helpers for databases and loggers.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/professor/internal/session"
)

// TestDB creates a temporary SQLite session database that is automatically cleaned up.
func TestDB(t *testing.T) *session.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "professor-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() {
		os.Remove(dbFile.Name())
		os.Remove(dbFile.Name() + "-wal")
		os.Remove(dbFile.Name() + "-shm")
	})

	db, err := session.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Logger returns a logger that discards everything below error.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
