package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/senelec/reclamations-api/internal/api/dto"
	"github.com/senelec/reclamations-api/internal/service"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler exposes login, logout and credential endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	cookie CookieConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "sessionid"
	}
	return &AuthHandler{auth: authService, cookie: cookie}
}

// Login handles POST /api/login/.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), req.EmailOrPhone, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.Session.ExpiresAt,
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.LoginResponse{
		Success:      true,
		Message:      result.Message,
		User:         dto.NewUserSummary(result.Account, true),
		DashboardURL: result.DashboardURL,
		Token:        result.Token,
	})
}

// Logout handles POST /api/logout/. It always succeeds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.auth.Logout(c.UserContext(), principal(c))
	c.ClearCookie(h.cookie.Name)
	return c.JSON(dto.MessageResponse{Success: true, Message: "Déconnexion réussie"})
}

// SendCredentials handles POST /api/send-credentials/.
func (h *AuthHandler) SendCredentials(c *fiber.Ctx) error {
	var req dto.SendCredentialsRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	sent, err := h.auth.SendCredentials(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(dto.SendCredentialsResponse{
		Success:   true,
		Message:   "Informations de connexion envoyées à " + req.Email,
		EmailSent: sent,
	})
}

// ChangePassword handles POST /api/change-password/.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.UserContext(), principal(c), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Mot de passe modifié avec succès"})
}
