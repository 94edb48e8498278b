package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ohtopup/models"
	"ohtopup/service"
)

// AdminHandler serves the admin settings and statistics endpoints.
type AdminHandler struct {
	settingsService service.SettingsService
	statsService    service.StatsService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(settingsService service.SettingsService, statsService service.StatsService) *AdminHandler {
	return &AdminHandler{
		settingsService: settingsService,
		statsService:    statsService,
	}
}

// GetSettings handles GET /api/admin/dice/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"settings": settings,
	})
}

// UpdateSettings handles PUT /api/admin/dice/settings
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	adminID := c.GetInt64("user_id")

	var patch models.GameSettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), adminID, &patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"settings": settings,
	})
}

// ResetSettings handles POST /api/admin/dice/settings/reset
func (h *AdminHandler) ResetSettings(c *gin.Context) {
	adminID := c.GetInt64("user_id")

	settings, err := h.settingsService.Reset(c.Request.Context(), adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"settings": settings,
	})
}

// ForceResetSettings handles POST /api/admin/dice/settings/force-reset
func (h *AdminHandler) ForceResetSettings(c *gin.Context) {
	adminID := c.GetInt64("user_id")

	settings, err := h.settingsService.ForceReset(c.Request.Context(), adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"settings": settings,
	})
}

// GetSystemStats handles GET /api/admin/dice/stats
func (h *AdminHandler) GetSystemStats(c *gin.Context) {
	stats, err := h.statsService.GetSystemStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}
