package importer

import (
	"net/http"
	"time"

	"outreach_backend/internal/importer/transport"
	"outreach_backend/internal/notion"
	"outreach_backend/platform/config"
	"outreach_backend/platform/httpkit"
	"outreach_backend/platform/logger"
	"outreach_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const progressPollInterval = 500 * time.Millisecond

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgMissingSession   = "no session"
	msgMissingCreds     = "missing Notion credentials"
)

// Handler exposes the import pipeline over HTTP, including the SSE progress
// stream.
type Handler struct {
	svc *Service
	cfg config.NotionConfig
	val *validator.Validator
	log *logger.Logger
}

func NewHandler(svc *Service, cfg config.NotionConfig, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, cfg: cfg, val: val, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Start)
	rg.POST("/resume", h.Resume)
	rg.POST("/chunk", h.ImportChunk)
	rg.GET("/status", h.Status)
	rg.GET("/progress", h.StreamProgress)
}

// Start launches a background import for the caller's session and responds
// 202 before any rows are processed.
func (h *Handler) Start(c *gin.Context) {
	sessionID, ok := httpkit.SessionID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, msgMissingSession, nil)
		return
	}

	var req transport.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	params, ok := h.startParams(c, sessionID, req)
	if !ok {
		return
	}

	state, err := h.svc.Start(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	h.log.WithSessionID(sessionID).Info("import accepted", "total", state.Total)
	httpkit.Accepted(c, transport.StartResponse{Status: "accepted", Total: state.Total})
}

// Resume continues an interrupted import from its last persisted cursor.
func (h *Handler) Resume(c *gin.Context) {
	sessionID, ok := httpkit.SessionID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, msgMissingSession, nil)
		return
	}

	var req transport.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	params, ok := h.startParams(c, sessionID, req)
	if !ok {
		return
	}

	state, err := h.svc.Resume(params)
	if httpkit.HandleError(c, err) {
		return
	}

	h.log.WithSessionID(sessionID).Info("import resumed", "current", state.Current, "total", state.Total)
	httpkit.Accepted(c, transport.ResumeResponse{
		Status:  string(state.Status),
		Current: state.Current,
		Total:   state.Total,
	})
}

// ImportChunk processes one bounded slice synchronously and reports per-row
// failures in the response, for callers that drive the import themselves.
func (h *Handler) ImportChunk(c *gin.Context) {
	var req transport.ChunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	apiKey, databaseID, ok := h.credentials(c, req.NotionAPIKey, req.NotionDatabaseID)
	if !ok {
		return
	}

	result, err := h.svc.ImportChunk(c.Request.Context(), ChunkParams{
		SheetURL:       req.SheetURL,
		APIKey:         apiKey,
		DatabaseID:     databaseID,
		SkipDuplicates: req.SkipDuplicates,
		Start:          req.Start,
		Count:          req.Count,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Status returns the current job snapshot for the caller's session.
func (h *Handler) Status(c *gin.Context) {
	sessionID, ok := httpkit.SessionID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, msgMissingSession, nil)
		return
	}

	state, ok := h.svc.Status(sessionID)
	if !ok {
		httpkit.Error(c, http.StatusNotFound, "no import state for this session", nil)
		return
	}

	httpkit.OK(c, state)
}

// StreamProgress streams job snapshots over SSE. It polls the state store,
// emits only on change, sends a placeholder while no job exists yet, and
// closes after emitting a terminal snapshot.
func (h *Handler) StreamProgress(c *gin.Context) {
	sessionID, ok := httpkit.SessionID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, msgMissingSession, nil)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	clientGone := c.Request.Context().Done()

	var last *JobState
	for {
		state, ok := h.svc.Status(sessionID)
		if !ok {
			// nothing started yet for this session
			state = JobState{Current: 0, Total: 1, Status: StatusUnknown}
		}

		if last == nil || state != *last {
			c.SSEvent("progress", state)
			c.Writer.Flush()
			snapshot := state
			last = &snapshot
		}

		if state.Status.Terminal() {
			return
		}

		select {
		case <-clientGone:
			return
		case <-ticker.C:
		}
	}
}

func (h *Handler) startParams(c *gin.Context, sessionID string, req transport.ImportRequest) (StartParams, bool) {
	apiKey, databaseID, ok := h.credentials(c, req.NotionAPIKey, req.NotionDatabaseID)
	if !ok {
		return StartParams{}, false
	}

	return StartParams{
		SessionID:      sessionID,
		SheetURL:       req.SheetURL,
		APIKey:         apiKey,
		DatabaseID:     databaseID,
		SkipDuplicates: req.SkipDuplicates,
	}, true
}

// credentials resolves request credentials, falling back to the configured
// workspace defaults.
func (h *Handler) credentials(c *gin.Context, apiKey, databaseID string) (string, string, bool) {
	if apiKey == "" {
		apiKey = h.cfg.GetNotionAPIKey()
	}
	if databaseID == "" {
		databaseID = h.cfg.GetNotionDatabaseID()
	}
	if apiKey == "" || databaseID == "" {
		httpkit.Error(c, http.StatusBadRequest, msgMissingCreds, nil)
		return "", "", false
	}
	// accept a full Notion URL as the database locator
	return apiKey, notion.ExtractDatabaseID(databaseID), true
}
