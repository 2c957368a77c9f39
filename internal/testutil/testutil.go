// Package testutil provides shared test helpers for setting up stores and services.
package testutil

import (
	"log/slog"
	"os"
	"testing"

	"github.com/starford/organizer/internal/organizer"
	"github.com/starford/organizer/internal/store"
)

// TestDB creates a temporary SQLite record store that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "organizer-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Logger returns a logger that only reports errors, keeping test output quiet.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestService creates an organizer service over a fresh TestDB.
func TestService(t *testing.T) (*organizer.Service, *store.DB) {
	t.Helper()
	db := TestDB(t)
	return organizer.NewService(db, Logger()), db
}
