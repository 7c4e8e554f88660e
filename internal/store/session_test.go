package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// newTestStore creates a new Store backed by a temporary database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestSessionRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{Source: "replay:clap.jsonl"}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if sess.ID == "" {
		t.Error("ID should be generated")
	}
	if sess.StartedAt.IsZero() {
		t.Error("StartedAt should be set")
	}

	got, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.Source != sess.Source {
		t.Errorf("Source mismatch: got %q, want %q", got.Source, sess.Source)
	}
	if got.EndedAt != nil {
		t.Errorf("EndedAt should be nil for an open session, got %v", got.EndedAt)
	}
}

func TestSessionRepository_End(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	start := time.Date(2024, 8, 4, 12, 0, 0, 0, time.UTC)
	sess := &Session{ID: "s1", Source: "socket", StartedAt: start}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	end := start.Add(time.Minute)
	if err := repo.End("s1", end); err != nil {
		t.Fatalf("failed to end session: %v", err)
	}

	got, err := repo.GetByID("s1")
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.EndedAt == nil || !got.EndedAt.Equal(end) {
		t.Errorf("EndedAt = %v, want %v", got.EndedAt, end)
	}

	if err := repo.End("missing", end); !errors.Is(err, ErrNotFound) {
		t.Errorf("End(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Sessions().GetByID("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	base := time.Date(2024, 8, 4, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		sess := &Session{ID: id, Source: "mock", StartedAt: base.Add(time.Duration(i) * time.Second)}
		if err := repo.Create(sess); err != nil {
			t.Fatalf("failed to create session %s: %v", id, err)
		}
	}

	sessions, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}

	var ids []string
	for _, sess := range sessions {
		ids = append(ids, sess.ID)
	}
	if diff := cmp.Diff([]string{"c", "b", "a"}, ids); diff != "" {
		t.Errorf("List() order mismatch (-want +got):\n%s", diff)
	}
}
