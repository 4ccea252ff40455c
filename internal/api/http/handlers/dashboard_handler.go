package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/senelec/reclamations-api/internal/api/dto"
	"github.com/senelec/reclamations-api/internal/auth"
	"github.com/senelec/reclamations-api/internal/service"
	apperrors "github.com/senelec/reclamations-api/pkg/util"
)

// DashboardHandler serves the personalized dashboard endpoints.
type DashboardHandler struct {
	stats *service.StatsService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(stats *service.StatsService) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

// Dashboard handles GET /api/dashboard/.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	p := principal(c)
	if p == nil {
		return apperrors.NewUnauthorized(auth.MsgNotLoggedIn)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Bienvenue sur votre dashboard, " + p.Account.FullName() + "!",
		"user":    dto.NewUserSummary(p.Account, false),
	})
}

// Statistics handles GET /api/dashboard/statistiques-generales/.
func (h *DashboardHandler) Statistics(c *fiber.Ctx) error {
	p := principal(c)
	stats, err := h.stats.Statistics(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Statistiques pour " + p.Account.FullName(),
		"user_role":  p.Account.Role,
		"statistics": stats,
	})
}
