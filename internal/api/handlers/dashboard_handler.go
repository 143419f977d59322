// backend-go/internal/api/handlers/dashboard_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type DashboardHandler struct {
	service          *service.DashboardService
	defaultStartDate string
}

func NewDashboardHandler(service *service.DashboardService, defaultStartDate string) *DashboardHandler {
	return &DashboardHandler{service: service, defaultStartDate: defaultStartDate}
}

// parseFilter starts from the default filter and applies the query params.
// Validation of dates and device happens in the service.
func (h *DashboardHandler) parseFilter(c *gin.Context) (domain.DashboardFilter, int, error) {
	filter := domain.DefaultDashboardFilter(h.service.Now())
	if h.defaultStartDate != "" {
		filter.StartDate = h.defaultStartDate
	}

	if raw := strings.TrimSpace(c.Query("view")); raw != "" {
		view, ok := domain.ParseViewMode(raw)
		if !ok {
			return filter, 0, fmt.Errorf("%w: %q", domain.ErrInvalidView, raw)
		}
		filter.View = view
	}

	if start := strings.TrimSpace(c.Query("start_date")); start != "" {
		filter.StartDate = start
	}
	if end := strings.TrimSpace(c.Query("end_date")); end != "" {
		filter.EndDate = end
	}
	if device, ok := c.GetQuery("device"); ok {
		filter.Device = service.NormalizeDevice(device)
	}

	topN := 0
	if top, err := strconv.Atoi(c.DefaultQuery("top", "0")); err == nil && top > 0 {
		topN = top
	}

	return filter, topN, nil
}

func (h *DashboardHandler) load(c *gin.Context) (*domain.Dashboard, bool) {
	filter, topN, err := h.parseFilter(c)
	if err != nil {
		respondError(c, err, "invalid dashboard filter")
		return nil, false
	}

	dashboard, err := h.service.GetDashboard(c.Request.Context(), filter, topN)
	if err != nil {
		respondError(c, err, "failed to compute dashboard")
		return nil, false
	}
	return dashboard, true
}

func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	if dashboard, ok := h.load(c); ok {
		c.JSON(http.StatusOK, dashboard)
	}
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	if dashboard, ok := h.load(c); ok {
		c.JSON(http.StatusOK, dashboard.Stats)
	}
}

func (h *DashboardHandler) GetRankings(c *gin.Context) {
	if dashboard, ok := h.load(c); ok {
		c.JSON(http.StatusOK, gin.H{
			"filter":   dashboard.Filter,
			"rankings": dashboard.Rankings,
		})
	}
}

func (h *DashboardHandler) GetStock(c *gin.Context) {
	if dashboard, ok := h.load(c); ok {
		c.JSON(http.StatusOK, gin.H{
			"stock":  dashboard.Stock,
			"alerts": dashboard.StockAlerts,
		})
	}
}

// respondError maps filter validation errors to 400 and everything else to 500.
func respondError(c *gin.Context, err error, message string) {
	if isValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()})
}

func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrInvalidView) ||
		errors.Is(err, domain.ErrInvalidDevice) ||
		errors.Is(err, domain.ErrInvalidDate)
}
