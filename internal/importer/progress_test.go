package importer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreSetGet(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	state := JobState{Current: 3, Total: 10, Status: StatusImporting, Imported: 2, Errors: 1}
	if err := store.Set("session-a", state); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := store.Get("session-a")
	if !ok {
		t.Fatal("Get: state missing")
	}
	if got != state {
		t.Fatalf("Get = %+v, want %+v", got, state)
	}

	if _, ok := store.Get("session-b"); ok {
		t.Fatal("Get returned state for unknown session")
	}
}

func TestStoreSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	state := JobState{Current: 7, Total: 10, Status: StatusImporting, Imported: 5, Skipped: 2}
	if err := first.Set("session-a", state); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// a fresh store over the same directory models a process restart
	second, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	got, ok := second.Get("session-a")
	if !ok {
		t.Fatal("state did not survive restart")
	}
	if got != state {
		t.Fatalf("Get = %+v, want %+v", got, state)
	}
}

func TestStoreClearRemovesOnlyDurableCopy(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	state := JobState{Current: 10, Total: 10, Status: StatusCompleted, Imported: 10}
	if err := store.Set("session-a", state); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Clear("session-a"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	// in-memory snapshot still readable for late stream subscribers
	if got, ok := store.Get("session-a"); !ok || got.Status != StatusCompleted {
		t.Fatalf("Get after Clear = %+v, %v", got, ok)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("progress dir not empty after Clear: %v", entries)
	}

	restarted, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, ok := restarted.Get("session-a"); ok {
		t.Fatal("cleared state should not survive a restart")
	}
}

func TestStoreClearMissingIsNoop(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.Clear("never-existed"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
}

func TestStoreSanitizesSessionID(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.Set("../escape", JobState{Status: StatusStarting}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "___escape.json")); err != nil {
		t.Fatalf("expected sanitized file inside progress dir: %v", err)
	}
}
