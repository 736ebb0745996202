package outreach

import (
	apphttp "outreach_backend/internal/http"
	"outreach_backend/internal/email"
	"outreach_backend/internal/notion"
	"outreach_backend/platform/config"
	"outreach_backend/platform/logger"
)

// Module is the outreach campaign bounded context implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule loads the email templates and wires the campaign service with
// the configured datastore and SMTP transport.
func NewModule(cfg *config.Config, log *logger.Logger) (*Module, error) {
	tpls, err := LoadTemplates(cfg.GetTemplatesPath())
	if err != nil {
		return nil, err
	}

	ds := notion.New(cfg.GetNotionAPIKey(), notion.WithBaseURL(cfg.GetNotionBaseURL()))

	var sender email.Sender
	if cfg.GetEmailEnabled() {
		sender = email.NewSMTPSender(cfg, log)
	} else {
		sender = email.NewDisabledSender(log)
	}

	svc := NewService(ds, sender, tpls, cfg, log)

	return &Module{handler: NewHandler(svc), service: svc}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "outreach"
}

// RegisterRoutes mounts the campaign API.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/outreach"))
}

// Service exposes the campaign service for background workers.
func (m *Module) Service() *Service {
	return m.service
}
