package importer

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"outreach_backend/platform/config"
	"outreach_backend/platform/httpkit"
	"outreach_backend/platform/logger"
	"outreach_backend/platform/validator"
)

func newProgressServer(t *testing.T, store *Store, sessionID string) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)

	svc := NewService(store, func(string) Datastore { return &fakeDatastore{} }, 0, logger.New("test"))
	t.Cleanup(svc.Shutdown)

	h := NewHandler(svc, &config.Config{}, validator.New(), logger.New("test"))

	engine := gin.New()
	engine.GET("/progress", func(c *gin.Context) {
		if sessionID != "" {
			c.Set(httpkit.ContextSessionIDKey, sessionID)
		}
	}, h.StreamProgress)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

func readProgressEvent(t *testing.T, r *bufio.Reader) JobState {
	t.Helper()

	var data string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.HasPrefix(line, "data:") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
		if line == "" && data != "" {
			break
		}
	}

	var state JobState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		t.Fatalf("unmarshal event %q: %v", data, err)
	}
	return state
}

func TestStreamProgressEmitsOnChangeAndClosesWhenTerminal(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	srv := newProgressServer(t, store, "s1")

	resp, err := http.Get(srv.URL + "/progress")
	if err != nil {
		t.Fatalf("GET /progress: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)

	// no job yet: the stream opens with the placeholder snapshot
	first := readProgressEvent(t, r)
	if first.Current != 0 || first.Total != 1 || first.Status != StatusUnknown {
		t.Fatalf("placeholder = %+v", first)
	}

	running := JobState{Current: 2, Total: 5, Status: StatusImporting, Imported: 2}
	if err := store.Set("s1", running); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := readProgressEvent(t, r); got != running {
		t.Fatalf("second event = %+v, want %+v", got, running)
	}

	// let a poll pass with unchanged state, then finish; an unchanged
	// snapshot must not be re-emitted, so the next event is the terminal one
	time.Sleep(progressPollInterval + 100*time.Millisecond)

	done := JobState{Current: 5, Total: 5, Status: StatusCompleted, Imported: 5}
	if err := store.Set("s1", done); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := readProgressEvent(t, r); got != done {
		t.Fatalf("terminal event = %+v, want %+v", got, done)
	}

	// the handler closes the stream after the terminal snapshot
	if _, err := r.ReadString('\n'); err == nil {
		t.Fatal("stream still open after terminal snapshot")
	}
}

func TestStreamProgressRequiresSession(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	srv := newProgressServer(t, store, "")

	resp, err := http.Get(srv.URL + "/progress")
	if err != nil {
		t.Fatalf("GET /progress: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
