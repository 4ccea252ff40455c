package handlers

import "github.com/gofiber/fiber/v2"

// Home handles GET / with the endpoint directory.
func Home(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Bienvenue sur l'API SENELEC",
		"endpoints": fiber.Map{
			"login":            "/api/login/",
			"logout":           "/api/logout/",
			"add_user":         "/api/add-user/",
			"send_credentials": "/api/send-credentials/",
			"change_password":  "/api/change-password/",
			"dashboard":        "/api/dashboard/",
			"dashboard_stats":  "/api/dashboard/statistiques-generales/",
			"users":            "/api/users/",
			"categories":       "/api/categories/",
			"reclamations":     "/api/reclamations/",
		},
	})
}
