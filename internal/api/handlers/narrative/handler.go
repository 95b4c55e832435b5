package narrative

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ridgeline/caseflow/internal/api/middleware"
	core "github.com/ridgeline/caseflow/internal/narrative"
)

// Handler serves the narrative generation endpoints.
type Handler struct {
	svc *core.Service
}

// NewHandler creates a narrative endpoint handler over the gateway
// service.
func NewHandler(svc *core.Service) *Handler {
	return &Handler{svc: svc}
}

// SummarizeReport handles POST /v1/narrative/summarize-report.
func (h *Handler) SummarizeReport(c *gin.Context) {
	var req core.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if len(req.Data) == 0 {
		respondBadRequest(c, "data is required")
		return
	}

	resp, failure := h.svc.SummarizeReport(c.Request.Context(), middleware.ClientKey(c), req)
	if failure != nil {
		respondFailure(c, failure)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BehavioralInsights handles POST /v1/narrative/behavioral-insights.
func (h *Handler) BehavioralInsights(c *gin.Context) {
	var req core.InsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if len(req.BehaviorData) == 0 {
		respondBadRequest(c, "behaviorData is required")
		return
	}

	resp, failure := h.svc.BehavioralInsights(c.Request.Context(), middleware.ClientKey(c), req)
	if failure != nil {
		respondFailure(c, failure)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EnhanceReport handles POST /v1/narrative/enhance-report.
func (h *Handler) EnhanceReport(c *gin.Context) {
	var req core.EnhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.ReportContent) == "" {
		respondBadRequest(c, "reportContent is required")
		return
	}

	resp, failure := h.svc.EnhanceReport(c.Request.Context(), middleware.ClientKey(c), req)
	if failure != nil {
		respondFailure(c, failure)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Status handles GET /v1/narrative/status. Status reads are never
// charged against daily quotas.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Status(c.Request.Context(), middleware.ClientKey(c)))
}
