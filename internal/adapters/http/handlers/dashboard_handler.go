package handlers

import (
	"natillera-miahorro/internal/core/services"
	"natillera-miahorro/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Summary returns stats and sampled lists for the home screen
// @Summary Dashboard summary
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.dashboardService.GetSummary(c.Context())
	if err != nil {
		return respondError(c, err, "Error cargando dashboard")
	}

	return response.Success(c, fiber.Map{
		"stats":     summary.Stats,
		"socios":    summary.Socios,
		"eventos":   summary.Eventos,
		"prestamos": summary.Prestamos,
	})
}
