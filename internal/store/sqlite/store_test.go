package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/storyspine/storyspine-server/internal/domain"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, id, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func ensureTestBook(t *testing.T, s *Store, id, externalID, title string, categories ...string) *domain.Book {
	t.Helper()
	b, err := s.EnsureBook(context.Background(), &domain.Book{
		ID:         id,
		ExternalID: externalID,
		Title:      title,
		Authors:    []string{"Test Author"},
		Genres:     categories,
		CreatedAt:  testNow,
	})
	if err != nil {
		t.Fatalf("ensure book %s: %v", externalID, err)
	}
	return b
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	tables := []string{
		"users", "sessions", "books", "genres", "book_genres", "library_entries",
		"ratings", "reviews", "review_likes", "follows", "genre_preferences",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.DiscardHandler)

	s1, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s1.Close()

	s2, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()

	genres, err := s2.ListGenres(context.Background())
	if err != nil {
		t.Fatalf("ListGenres: %v", err)
	}
	if len(genres) == 0 {
		t.Error("expected seeded genres after reopen")
	}
}

func TestOpen_SchemaVersion(t *testing.T) {
	s := newTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if version != schemaVersion {
		t.Errorf("expected user_version %d, got %d", schemaVersion, version)
	}
}

func TestOpen_RefusesNewerSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "future.db")
	logger := slog.New(slog.DiscardHandler)

	raw, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("raw open: %v", err)
	}
	if _, err := raw.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion+1)); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	raw.Close()

	s, err := Open(dbPath, logger)
	if err == nil {
		s.Close()
		t.Fatal("expected error opening a database from a newer schema")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTimeFormat_SortsLexically(t *testing.T) {
	a := formatTime(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	b := formatTime(time.Date(2026, 1, 1, 0, 0, 0, 500, time.UTC))
	if !(a < b) {
		t.Errorf("expected %q < %q", a, b)
	}

	parsed, err := parseTime(b)
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	if !parsed.Equal(time.Date(2026, 1, 1, 0, 0, 0, 500, time.UTC)) {
		t.Errorf("round trip: got %v", parsed)
	}
}

func TestDecodeList_Malformed(t *testing.T) {
	if got := decodeList("not json"); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
	if got := decodeList(`["a","b"]`); len(got) != 2 {
		t.Errorf("expected 2 items, got %v", got)
	}
}
