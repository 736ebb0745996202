package importer

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"outreach_backend/platform/apperr"
	"outreach_backend/platform/logger"
)

// DatastoreFactory builds a datastore client for the credentials submitted
// with an import request.
type DatastoreFactory func(apiKey string) Datastore

// StartParams carries everything needed to launch or resume an import job.
type StartParams struct {
	SessionID      string
	SheetURL       string
	APIKey         string
	DatabaseID     string
	SkipDuplicates bool
}

// ChunkParams describes one synchronous slice of an import.
type ChunkParams struct {
	SheetURL       string
	APIKey         string
	DatabaseID     string
	SkipDuplicates bool
	Start          int
	Count          int
}

// RowError describes a single row the chunk importer could not store.
type RowError struct {
	Row    int               `json:"row"`
	Reason string            `json:"reason"`
	Fields map[string]string `json:"fields,omitempty"`
	Raw    map[string]string `json:"raw,omitempty"`
}

// ChunkResult is the outcome of one chunked import call. NextStart is nil
// once the source is exhausted.
type ChunkResult struct {
	Imported     int        `json:"imported"`
	Skipped      int        `json:"skipped"`
	Errors       int        `json:"errors"`
	Start        int        `json:"start"`
	Count        int        `json:"count"`
	Total        int        `json:"total"`
	NextStart    *int       `json:"nextStart"`
	ErrorsDetail []RowError `json:"errorsDetail,omitempty"`
}

// Service orchestrates background and chunked import jobs. One background
// job may run per session at a time; workers are owned by the service and
// cancelled together on Shutdown.
type Service struct {
	store        *Store
	newDatastore DatastoreFactory
	resolveSheet func(sheetURL string) (*SheetSource, error)
	recordDelay  time.Duration
	log          *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	active map[string]struct{}
}

// NewService wires the import orchestrator. recordDelay paces writes to the
// destination; zero disables pacing.
func NewService(store *Store, newDatastore DatastoreFactory, recordDelay time.Duration, log *logger.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		store:        store,
		newDatastore: newDatastore,
		resolveSheet: ResolveSheet,
		recordDelay:  recordDelay,
		log:          log,
		ctx:          ctx,
		cancel:       cancel,
		active:       make(map[string]struct{}),
	}
}

// Shutdown cancels all running workers and waits for them to drain. An
// interrupted job keeps its last persisted snapshot, so it can be resumed
// after the next start.
func (s *Service) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

// Status returns the current job state for a session, if any.
func (s *Service) Status(sessionID string) (JobState, bool) {
	return s.store.Get(sessionID)
}

// Start validates the request synchronously, counts the source rows, records
// a starting snapshot and launches a background worker. A session with a
// worker already running gets a conflict; a stale durable snapshot without a
// live worker does not block a fresh start.
func (s *Service) Start(ctx context.Context, params StartParams) (JobState, error) {
	const op = "importer.Start"

	src, err := s.resolveSheet(params.SheetURL)
	if err != nil {
		return JobState{}, apperr.BadRequest("invalid Google Sheets URL").WithOp(op)
	}

	if !s.acquire(params.SessionID) {
		return JobState{}, apperr.Conflict("an import is already running for this session").WithOp(op)
	}

	total, err := src.Count(ctx)
	if err != nil {
		s.release(params.SessionID)
		return JobState{}, apperr.BadRequest("could not access the Google Sheet; make sure it is shared publicly").
			WithOp(op).WithErr(err)
	}

	state := JobState{Current: 0, Total: total, Status: StatusStarting}
	if err := s.store.Set(params.SessionID, state); err != nil {
		s.release(params.SessionID)
		return JobState{}, apperr.Internal("could not persist import state").WithOp(op).WithErr(err)
	}

	s.spawn(params, src, state, 0)
	return state, nil
}

// Resume relaunches an interrupted job from its durable snapshot, replaying
// the source stream and skipping every row before the persisted cursor.
// Counters keep their persisted values.
func (s *Service) Resume(params StartParams) (JobState, error) {
	const op = "importer.Resume"

	state, ok := s.store.Get(params.SessionID)
	if !ok || state.Status.Terminal() {
		return JobState{}, apperr.NotFound("no resumable import for this session").WithOp(op)
	}

	src, err := s.resolveSheet(params.SheetURL)
	if err != nil {
		return JobState{}, apperr.BadRequest("invalid Google Sheets URL").WithOp(op)
	}

	if !s.acquire(params.SessionID) {
		return JobState{}, apperr.Conflict("an import is already running for this session").WithOp(op)
	}

	resumeFrom := state.Current
	state.Status = StatusStarting
	if err := s.store.Set(params.SessionID, state); err != nil {
		s.release(params.SessionID)
		return JobState{}, apperr.Internal("could not persist import state").WithOp(op).WithErr(err)
	}

	s.spawn(params, src, state, resumeFrom)
	return state, nil
}

func (s *Service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.active[sessionID]; busy {
		return false
	}
	s.active[sessionID] = struct{}{}
	return true
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	delete(s.active, sessionID)
	s.mu.Unlock()
}

func (s *Service) spawn(params StartParams, src *SheetSource, state JobState, startAt int) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(params.SessionID)

		s.log.ImportEvent("import_started", params.SessionID, state.Current, state.Total)

		err := s.run(s.ctx, params, src, state, startAt)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			// graceful shutdown: leave the snapshot non-terminal so the
			// job stays resumable
			s.log.ImportEvent("import_interrupted", params.SessionID, 0, state.Total)
		default:
			if latest, ok := s.store.Get(params.SessionID); ok {
				state = latest
			}
			state.Status = StatusError
			state.Error = err.Error()
			if serr := s.store.Set(params.SessionID, state); serr != nil {
				s.log.DatastoreError("persist import failure", serr)
			}
			s.log.ImportRowError(params.SessionID, state.Current, "import failed", err)
		}
	}()
}

func (s *Service) run(ctx context.Context, params StartParams, src *SheetSource, state JobState, startAt int) error {
	ds := s.newDatastore(params.APIKey)

	var idx *DedupIndex
	if params.SkipDuplicates {
		state.Status = StatusCheckingDuplicates
		if err := s.store.Set(params.SessionID, state); err != nil {
			return err
		}

		built, err := BuildDedupIndex(ctx, ds, params.DatabaseID)
		if err != nil {
			return err
		}
		idx = built
	}

	state.Status = StatusImporting
	if err := s.store.Set(params.SessionID, state); err != nil {
		return err
	}

	rows, err := src.Rows(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()

	limiter := rate.NewLimiter(rate.Every(s.recordDelay), 1)

	i := 0
	for {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if i < startAt {
			i++
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		fields, mapErr := MapRow(row)
		switch {
		case mapErr != nil:
			state.Errors++
			s.log.ImportRowError(params.SessionID, i, "missing required field", nil)
		case idx != nil && idx.Contains(fields.Email):
			state.Skipped++
		default:
			if _, err := ds.CreatePage(ctx, params.DatabaseID, fields.Properties()); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				state.Errors++
				s.log.ImportRowError(params.SessionID, i, "datastore rejected record", err)
			} else {
				state.Imported++
				if idx != nil {
					idx.Add(fields.Email)
				}
			}
		}

		state.Current = i + 1
		if state.Current > state.Total {
			state.Current = state.Total
		}
		if err := s.store.Set(params.SessionID, state); err != nil {
			return err
		}
		i++
	}

	state.Current = state.Total
	state.Status = StatusCompleted
	if err := s.store.Set(params.SessionID, state); err != nil {
		return err
	}
	if err := s.store.Clear(params.SessionID); err != nil {
		s.log.DatastoreError("clear completed import", err)
	}

	s.log.ImportEvent("import_completed", params.SessionID, state.Current, state.Total)
	return nil
}

// ImportChunk imports one bounded slice of the source synchronously. It
// shares no state with background jobs: the dedup index is built fresh per
// call and nothing is written to the progress store.
func (s *Service) ImportChunk(ctx context.Context, params ChunkParams) (*ChunkResult, error) {
	const op = "importer.ImportChunk"

	if params.Start < 0 || params.Count <= 0 {
		return nil, apperr.Validation("start must be non-negative and count positive").WithOp(op)
	}

	src, err := s.resolveSheet(params.SheetURL)
	if err != nil {
		return nil, apperr.BadRequest("invalid Google Sheets URL").WithOp(op)
	}

	total, err := src.Count(ctx)
	if err != nil {
		return nil, apperr.BadRequest("could not access the Google Sheet; make sure it is shared publicly").
			WithOp(op).WithErr(err)
	}

	ds := s.newDatastore(params.APIKey)

	var idx *DedupIndex
	if params.SkipDuplicates {
		built, err := BuildDedupIndex(ctx, ds, params.DatabaseID)
		if err != nil {
			return nil, apperr.Unavailable("could not read existing leads").WithOp(op).WithErr(err)
		}
		idx = built
	}

	rows, err := src.Rows(ctx)
	if err != nil {
		return nil, apperr.BadRequest("could not access the Google Sheet; make sure it is shared publicly").
			WithOp(op).WithErr(err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := &ChunkResult{Start: params.Start, Total: total}

	i := 0
	for result.Count < params.Count {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperr.Internal("failed reading sheet rows").WithOp(op).WithErr(err)
		}
		if i < params.Start {
			i++
			continue
		}

		fields, mapErr := MapRow(row)
		switch {
		case mapErr != nil:
			result.Errors++
			result.ErrorsDetail = append(result.ErrorsDetail, RowError{
				Row:    i,
				Reason: "missing_required_field",
				Raw:    row,
			})
		case idx != nil && idx.Contains(fields.Email):
			result.Skipped++
		default:
			if _, err := ds.CreatePage(ctx, params.DatabaseID, fields.Properties()); err != nil {
				result.Errors++
				result.ErrorsDetail = append(result.ErrorsDetail, RowError{
					Row:    i,
					Reason: "create_failed",
					Fields: fields.AsMap(),
					Raw:    row,
				})
			} else {
				result.Imported++
				if idx != nil {
					idx.Add(fields.Email)
				}
			}
		}

		result.Count++
		i++
	}

	if next := params.Start + result.Count; next < total {
		result.NextStart = &next
	}

	return result, nil
}
