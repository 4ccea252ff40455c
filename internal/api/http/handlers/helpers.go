package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/senelec/reclamations-api/internal/auth"
	"github.com/senelec/reclamations-api/internal/domain"
	apperrors "github.com/senelec/reclamations-api/pkg/util"
)

// MsgInvalidJSON is returned for bodies that are not a JSON object.
const MsgInvalidJSON = "Format JSON invalide"

// decodeJSON reads the request body regardless of its Content-Type.
func decodeJSON(c *fiber.Ctx, out any) error {
	if err := c.App().Config().JSONDecoder(c.Body(), out); err != nil {
		return apperrors.NewValidationError(MsgInvalidJSON, nil)
	}
	return nil
}

// principal returns the caller or nil for anonymous requests.
func principal(c *fiber.Ctx) *domain.Principal {
	p, _ := auth.PrincipalFromContext(c)
	return p
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseOptionalBool(val string) *bool {
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return nil
	}
	return &parsed
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
