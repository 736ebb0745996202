// Package outreach runs cold email campaigns and follow-ups against the
// lead database.
package outreach

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"outreach_backend/internal/email"
	"outreach_backend/internal/notion"
	"outreach_backend/platform/apperr"
	"outreach_backend/platform/config"
	"outreach_backend/platform/logger"
)

// Lead property names in the destination database.
const (
	propName          = "Name"
	propEmail         = "Email"
	propOrganisation  = "Organisation"
	propIndustry      = "Industry"
	propStatus        = "Status"
	propDraft         = "Cold email draft"
	propFollowUpDraft = "Follow-up email draft"
	propContactedDate = "Contacted Date"
	propFollowUpDate  = "Follow-Up Date"
)

const (
	statusNotContacted = "Not contacted"
	statusContacted    = "Contacted"
)

// Datastore is the slice of the datastore API campaigns need.
type Datastore interface {
	RetrieveDatabase(ctx context.Context, databaseID string) (*notion.Database, error)
	QueryDatabase(ctx context.Context, databaseID string, req *notion.QueryRequest) (*notion.QueryResponse, error)
	UpdatePage(ctx context.Context, pageID string, props notion.Properties) (*notion.Page, error)
}

// Lead is a campaign target loaded from the database.
type Lead struct {
	PageID        string `json:"pageId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Company       string `json:"company"`
	Industry      string `json:"industry"`
	ContactedDate string `json:"contactedDate,omitempty"`
}

// Preview is a rendered message for one lead, without sending anything.
type Preview struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendOutcome records what happened to one lead during a campaign run.
type SendOutcome struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Sent   bool   `json:"sent"`
	Reason string `json:"reason,omitempty"`
}

// CampaignResult summarizes a campaign run.
type CampaignResult struct {
	Sent    int           `json:"sent"`
	Failed  int           `json:"failed"`
	Details []SendOutcome `json:"details"`
}

// ComponentStatus reports the health of one external collaborator.
type ComponentStatus struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// ConnectionStatus is the result of probing both collaborators.
type ConnectionStatus struct {
	Notion ComponentStatus `json:"notion"`
	Email  ComponentStatus `json:"email"`
}

// Service runs previews and campaigns. All sends are paced by the configured
// delay; in test mode every message is rerouted to the operator.
type Service struct {
	ds            Datastore
	sender        email.Sender
	tpls          Templates
	databaseID    string
	testMode      bool
	testEmail     string
	probeEmail    string
	emailDelay    time.Duration
	followUpAfter time.Duration
	maxPerRun     int
	now           func() time.Time
	log           *logger.Logger
}

// NewService wires a campaign service from configuration.
func NewService(ds Datastore, sender email.Sender, tpls Templates, cfg *config.Config, log *logger.Logger) *Service {
	probe := cfg.GetTestEmail()
	if probe == "" {
		probe = cfg.GetEmailFromAddress()
	}

	return &Service{
		ds:            ds,
		sender:        sender,
		tpls:          tpls,
		databaseID:    cfg.GetNotionDatabaseID(),
		testMode:      cfg.GetTestMode(),
		testEmail:     cfg.GetTestEmail(),
		probeEmail:    probe,
		emailDelay:    cfg.GetEmailDelay(),
		followUpAfter: cfg.GetFollowUpAfter(),
		maxPerRun:     cfg.GetMaxEmailsPerRun(),
		now:           time.Now,
		log:           log,
	}
}

// LeadsToContact returns leads that have never been emailed: status is still
// "Not contacted" and no draft has been written back yet.
func (s *Service) LeadsToContact(ctx context.Context) ([]Lead, error) {
	filter := &notion.Filter{And: []notion.Filter{
		{Property: propStatus, Status: &notion.StatusCondition{Equals: statusNotContacted}},
		{Property: propDraft, RichText: &notion.TextCondition{IsEmpty: true}},
	}}
	return s.queryLeads(ctx, filter)
}

// LeadsForFollowUp returns contacted leads whose first email is old enough
// and that have not been followed up yet.
func (s *Service) LeadsForFollowUp(ctx context.Context) ([]Lead, error) {
	cutoff := s.now().Add(-s.followUpAfter).Format("2006-01-02")
	filter := &notion.Filter{And: []notion.Filter{
		{Property: propStatus, Status: &notion.StatusCondition{Equals: statusContacted}},
		{Property: propContactedDate, Date: &notion.DateCondition{OnOrBefore: cutoff}},
		{Property: propFollowUpDate, Date: &notion.DateCondition{IsEmpty: true}},
	}}
	return s.queryLeads(ctx, filter)
}

func (s *Service) queryLeads(ctx context.Context, filter *notion.Filter) ([]Lead, error) {
	var leads []Lead

	cursor := ""
	for {
		resp, err := s.ds.QueryDatabase(ctx, s.databaseID, &notion.QueryRequest{
			Filter:      filter,
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUnavailable, "could not query leads", err)
		}

		for _, page := range resp.Results {
			lead := Lead{
				PageID:        page.ID,
				Name:          page.Properties.PlainText(propName),
				Email:         page.Properties.EmailValue(propEmail),
				Company:       page.Properties.PlainText(propOrganisation),
				Industry:      page.Properties.PlainText(propIndustry),
				ContactedDate: page.Properties.DateStart(propContactedDate),
			}
			if lead.Email == "" {
				continue
			}
			leads = append(leads, lead)
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	return leads, nil
}

// PreviewCold renders the cold email for every contactable lead without
// sending or mutating anything.
func (s *Service) PreviewCold(ctx context.Context) ([]Preview, error) {
	leads, err := s.LeadsToContact(ctx)
	if err != nil {
		return nil, err
	}
	return s.renderPreviews(leads, s.tpls.ColdEmail), nil
}

// PreviewFollowUps renders the follow-up email for every due lead.
func (s *Service) PreviewFollowUps(ctx context.Context) ([]Preview, error) {
	leads, err := s.LeadsForFollowUp(ctx)
	if err != nil {
		return nil, err
	}
	return s.renderPreviews(leads, s.tpls.FollowUp), nil
}

func (s *Service) renderPreviews(leads []Lead, tpl Template) []Preview {
	previews := make([]Preview, 0, len(leads))
	for _, lead := range leads {
		subject, body := tpl.Render(lead)
		previews = append(previews, Preview{
			Name:    lead.Name,
			Email:   lead.Email,
			Company: lead.Company,
			Subject: subject,
			Body:    body,
		})
	}
	return previews
}

// RunCold sends the cold email to contactable leads, up to the per-run cap.
// Each delivered lead is marked contacted and gets the sent body written
// back as its draft. Test mode sends but never mutates lead state.
func (s *Service) RunCold(ctx context.Context) (*CampaignResult, error) {
	leads, err := s.LeadsToContact(ctx)
	if err != nil {
		return nil, err
	}

	return s.runCampaign(ctx, leads, s.tpls.ColdEmail, func(body string) notion.Properties {
		return notion.Properties{
			propStatus:        notion.Status(statusContacted),
			propContactedDate: notion.Date(s.now()),
			propDraft:         notion.Text(body),
		}
	})
}

// RunFollowUps sends the follow-up email to every due lead, stores the sent
// body as its follow-up draft and stamps its follow-up date.
func (s *Service) RunFollowUps(ctx context.Context) (*CampaignResult, error) {
	leads, err := s.LeadsForFollowUp(ctx)
	if err != nil {
		return nil, err
	}

	return s.runCampaign(ctx, leads, s.tpls.FollowUp, func(body string) notion.Properties {
		return notion.Properties{
			propFollowUpDraft: notion.Text(body),
			propFollowUpDate:  notion.Date(s.now()),
		}
	})
}

func (s *Service) runCampaign(ctx context.Context, leads []Lead, tpl Template, writeBack func(body string) notion.Properties) (*CampaignResult, error) {
	if s.maxPerRun > 0 && len(leads) > s.maxPerRun {
		leads = leads[:s.maxPerRun]
	}

	limiter := rate.NewLimiter(rate.Every(s.emailDelay), 1)
	result := &CampaignResult{Details: make([]SendOutcome, 0, len(leads))}

	for _, lead := range leads {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		subject, body := tpl.Render(lead)
		msg := email.Message{To: lead.Email, Subject: subject, Body: body}
		if s.testMode {
			msg.To = s.testEmail
			msg.Subject = fmt.Sprintf("[TEST] Would have sent to: %s - %s", lead.Email, subject)
		}

		outcome := SendOutcome{Name: lead.Name, Email: lead.Email}

		if err := s.sender.Send(ctx, msg); err != nil {
			result.Failed++
			outcome.Reason = err.Error()
			result.Details = append(result.Details, outcome)
			continue
		}

		result.Sent++
		outcome.Sent = true

		// test mode must leave lead state untouched so runs stay repeatable
		if !s.testMode {
			if _, err := s.ds.UpdatePage(ctx, lead.PageID, writeBack(body)); err != nil {
				s.log.DatastoreError("mark lead after send", err)
				outcome.Reason = "sent, but updating the lead record failed"
			}
		}

		result.Details = append(result.Details, outcome)
	}

	return result, nil
}

// TestConnection probes both external collaborators and reports each one
// independently.
func (s *Service) TestConnection(ctx context.Context) ConnectionStatus {
	var status ConnectionStatus

	if db, err := s.ds.RetrieveDatabase(ctx, s.databaseID); err != nil {
		status.Notion = ComponentStatus{OK: false, Detail: err.Error()}
	} else {
		status.Notion = ComponentStatus{OK: true, Detail: db.PlainTitle()}
	}

	if err := s.sender.Verify(ctx, s.probeEmail); err != nil {
		status.Email = ComponentStatus{OK: false, Detail: err.Error()}
	} else {
		status.Email = ComponentStatus{OK: true, Detail: "test email sent to " + s.probeEmail}
	}

	return status
}
