package outreach

import (
	"net/http"

	"outreach_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler exposes campaign operations over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads", h.ListLeads)
	rg.GET("/followups", h.ListFollowUps)
	rg.GET("/preview", h.PreviewCold)
	rg.GET("/followups/preview", h.PreviewFollowUps)
	rg.POST("/run", h.RunCold)
	rg.POST("/followups/run", h.RunFollowUps)
	rg.GET("/test-connection", h.TestConnection)
}

// ListLeads returns every lead eligible for a first cold email.
func (h *Handler) ListLeads(c *gin.Context) {
	leads, err := h.svc.LeadsToContact(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"leads": leads, "count": len(leads)})
}

// ListFollowUps returns every lead whose follow-up is due.
func (h *Handler) ListFollowUps(c *gin.Context) {
	leads, err := h.svc.LeadsForFollowUp(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"leads": leads, "count": len(leads)})
}

// PreviewCold renders cold emails without sending.
func (h *Handler) PreviewCold(c *gin.Context) {
	previews, err := h.svc.PreviewCold(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"previews": previews, "count": len(previews)})
}

// PreviewFollowUps renders follow-up emails without sending.
func (h *Handler) PreviewFollowUps(c *gin.Context) {
	previews, err := h.svc.PreviewFollowUps(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"previews": previews, "count": len(previews)})
}

// RunCold executes a cold email campaign run.
func (h *Handler) RunCold(c *gin.Context) {
	result, err := h.svc.RunCold(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RunFollowUps executes a follow-up campaign run.
func (h *Handler) RunFollowUps(c *gin.Context) {
	result, err := h.svc.RunFollowUps(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// TestConnection probes the datastore and the SMTP transport. Responds 200
// when both are healthy, 502 otherwise, with per-component detail either way.
func (h *Handler) TestConnection(c *gin.Context) {
	status := h.svc.TestConnection(c.Request.Context())
	code := http.StatusOK
	if !status.Notion.OK || !status.Email.OK {
		code = http.StatusBadGateway
	}
	httpkit.JSON(c, code, status)
}
