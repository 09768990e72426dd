package handler

import (
	"context"
	"net/http"
	"time"

	"movie-explorer/internal/genre"
	"movie-explorer/internal/model"
	"movie-explorer/internal/repository"

	"github.com/gin-gonic/gin"
)

// CatalogStatus reports how the catalog client is configured
type CatalogStatus interface {
	IsConfigured() bool
	KeyCount() int
}

// Analytics is the read and reset side of the request metrics
type Analytics interface {
	GetOverallStats(ctx context.Context) (*repository.OverallStats, error)
	GetRouteStats(ctx context.Context, route string) (*repository.RouteStats, error)
	ResetMetrics(ctx context.Context) error
}

// AdminHandler handles admin-related endpoints
type AdminHandler struct {
	catalog   CatalogStatus
	genres    *genre.Directory
	analytics Analytics
	started   time.Time
}

// NewAdminHandler creates a new AdminHandler. analytics may be nil when Redis is not configured.
func NewAdminHandler(catalog CatalogStatus, genres *genre.Directory, analytics Analytics) *AdminHandler {
	return &AdminHandler{
		catalog:   catalog,
		genres:    genres,
		analytics: analytics,
		started:   time.Now(),
	}
}

// GetStatus returns service status
// GET /api/v1/status
func (h *AdminHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"tmdb_enabled":      h.catalog.IsConfigured(),
		"tmdb_keys":         h.catalog.KeyCount(),
		"genres":            h.genres.Len(),
		"analytics_enabled": h.analytics != nil,
		"uptime_seconds":    int64(time.Since(h.started).Seconds()),
	})
}

func (h *AdminHandler) requireAnalytics(c *gin.Context) bool {
	if h.analytics != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, model.APIResponse{
		Code:  http.StatusServiceUnavailable,
		Error: "analytics disabled: REDIS_URL not set",
	})
	return false
}

// GetAnalytics returns request analytics
// GET /api/v1/analytics
func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	if !h.requireAnalytics(c) {
		return
	}

	stats, err := h.analytics.GetOverallStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.APIResponse{
			Code:  http.StatusInternalServerError,
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{Code: http.StatusOK, Data: stats})
}

// GetRouteStats returns stats for one route template
// GET /api/v1/analytics/route?path=/movie/:id
func (h *AdminHandler) GetRouteStats(c *gin.Context) {
	if !h.requireAnalytics(c) {
		return
	}

	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Code:  http.StatusBadRequest,
			Error: "path parameter required",
		})
		return
	}

	stats, err := h.analytics.GetRouteStats(c.Request.Context(), path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.APIResponse{
			Code:  http.StatusInternalServerError,
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{Code: http.StatusOK, Data: stats})
}

// ResetAnalytics resets all analytics data
// DELETE /api/v1/analytics
func (h *AdminHandler) ResetAnalytics(c *gin.Context) {
	if !h.requireAnalytics(c) {
		return
	}

	if err := h.analytics.ResetMetrics(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, model.APIResponse{
			Code:  http.StatusInternalServerError,
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Message: "all analytics data reset",
	})
}
