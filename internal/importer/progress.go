package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Status is the lifecycle phase of an import job.
type Status string

const (
	StatusStarting           Status = "starting"
	StatusCheckingDuplicates Status = "checking_duplicates"
	StatusImporting          Status = "importing"
	StatusCompleted          Status = "completed"
	StatusError              Status = "error"
	StatusUnknown            Status = "unknown"
)

// Terminal reports whether the job has finished, successfully or not.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// JobState is the full progress snapshot of one import job. It is what the
// progress stream emits and what survives a process restart.
type JobState struct {
	Current  int    `json:"current"`
	Total    int    `json:"total"`
	Status   Status `json:"status"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Errors   int    `json:"errors"`
	Error    string `json:"error,omitempty"`
}

// Store keeps per-session job state in memory with a JSON file write-through
// per session. The file copy is what makes an interrupted import resumable
// after a crash or restart.
type Store struct {
	mu  sync.RWMutex
	mem map[string]JobState
	dir string
}

// NewStore creates the progress directory if needed and returns a store
// backed by it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create progress dir: %w", err)
	}
	return &Store{mem: make(map[string]JobState), dir: dir}, nil
}

// Get returns the state for a session. When the in-memory entry is missing,
// for example after a restart, it falls back to the durable file copy and
// rehydrates the cache from it.
func (s *Store) Get(sessionID string) (JobState, bool) {
	s.mu.RLock()
	state, ok := s.mem[sessionID]
	s.mu.RUnlock()
	if ok {
		return state, true
	}

	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		return JobState{}, false
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return JobState{}, false
	}

	s.mu.Lock()
	s.mem[sessionID] = state
	s.mu.Unlock()
	return state, true
}

// Set updates both the in-memory entry and the durable file copy. The file
// is written to a temp path and renamed so readers never observe a partial
// snapshot.
func (s *Store) Set(sessionID string, state JobState) error {
	s.mu.Lock()
	s.mem[sessionID] = state
	s.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal job state: %w", err)
	}

	path := s.path(sessionID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write job state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publish job state: %w", err)
	}
	return nil
}

// Clear removes only the durable copy. The in-memory entry stays so clients
// still streaming can observe the final snapshot; a completed job just no
// longer survives a restart.
func (s *Store) Clear(sessionID string) error {
	err := os.Remove(s.path(sessionID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear job state: %w", err)
	}
	return nil
}

func (s *Store) path(sessionID string) string {
	// session IDs are UUIDs, but never trust them as path components
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, sessionID)
	return filepath.Join(s.dir, safe+".json")
}
