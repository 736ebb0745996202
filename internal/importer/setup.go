package importer

import (
	apphttp "outreach_backend/internal/http"
	"outreach_backend/internal/notion"
	"outreach_backend/platform/config"
	"outreach_backend/platform/logger"
	"outreach_backend/platform/validator"
)

// Module is the lead import bounded context implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
	store   *Store
}

// NewModule wires the progress store, the orchestrator and the HTTP handler.
func NewModule(cfg *config.Config, val *validator.Validator, log *logger.Logger) (*Module, error) {
	store, err := NewStore(cfg.GetProgressDir())
	if err != nil {
		return nil, err
	}

	factory := func(apiKey string) Datastore {
		return notion.New(apiKey, notion.WithBaseURL(cfg.GetNotionBaseURL()))
	}

	svc := NewService(store, factory, cfg.GetImportRecordDelay(), log)
	h := NewHandler(svc, cfg, val, log)

	return &Module{handler: h, service: svc, store: store}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "importer"
}

// RegisterRoutes mounts the import API under the session-scoped group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Session.Group("/imports"))
}

// Service exposes the orchestrator for composition roots that supervise it.
func (m *Module) Service() *Service {
	return m.service
}

// Shutdown stops all running import workers and waits for them to drain.
func (m *Module) Shutdown() {
	m.service.Shutdown()
}
