package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/senelec/reclamations-api/internal/domain"
	apperrors "github.com/senelec/reclamations-api/pkg/util"
)

// Messages returned when the caller lacks a role.
const (
	MsgAdminRequired   = "Accès non autorisé. Admin requis."
	MsgAccessForbidden = "Accès non autorisé."
)

// Authorize returns a forbidden error carrying message unless p holds one of roles.
// Anonymous callers get the same error.
func Authorize(p *domain.Principal, message string, roles ...domain.Role) error {
	if !p.HasRole(roles...) {
		return apperrors.NewForbidden(message)
	}
	return nil
}

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(message string, allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		if err := Authorize(principal, message, allowed...); err != nil {
			return err
		}
		return c.Next()
	}
}
