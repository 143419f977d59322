package handlers

import (
	"fmt"
	"net/http"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/insight"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	session  *service.Session
	insights *insight.Coordinator
}

func NewSessionHandler(session *service.Session, insights *insight.Coordinator) *SessionHandler {
	return &SessionHandler{session: session, insights: insights}
}

type viewRequest struct {
	View string `json:"view" binding:"required"`
}

type dateRangeRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

type deviceRequest struct {
	Device string `json:"device" binding:"required"`
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	dashboard, err := h.session.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to compute dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *SessionHandler) SetView(c *gin.Context) {
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, ok := domain.ParseViewMode(req.View)
	if !ok {
		respondError(c, fmt.Errorf("%w: %q", domain.ErrInvalidView, req.View), "invalid view")
		return
	}

	dashboard, err := h.session.SetView(c.Request.Context(), view)
	if err != nil {
		respondError(c, err, "failed to apply view")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *SessionHandler) SetDateRange(c *gin.Context) {
	var req dateRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	dashboard, err := h.session.SetDateRange(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		respondError(c, err, "failed to apply date range")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *SessionHandler) SetDevice(c *gin.Context) {
	var req deviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	dashboard, err := h.session.SetDeviceFilter(c.Request.Context(), req.Device)
	if err != nil {
		respondError(c, err, "failed to apply device filter")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Refresh recomputes the session dashboard after the underlying data changed.
func (h *SessionHandler) Refresh(c *gin.Context) {
	dashboard, err := h.session.Refresh(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to refresh dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetInsights returns the narrative for the session's latest filter.
func (h *SessionHandler) GetInsights(c *gin.Context) {
	if h.insights == nil {
		c.JSON(http.StatusOK, insight.State{Text: insight.DefaultFallback, Ready: true})
		return
	}
	c.JSON(http.StatusOK, h.insights.Current())
}
