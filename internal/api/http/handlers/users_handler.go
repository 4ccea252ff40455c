package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/senelec/reclamations-api/internal/api/dto"
	"github.com/senelec/reclamations-api/internal/service"
)

// UsersHandler exposes account administration endpoints.
type UsersHandler struct {
	accounts *service.AccountService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(accounts *service.AccountService) *UsersHandler {
	return &UsersHandler{accounts: accounts}
}

// AddUser handles POST /api/add-user/.
func (h *UsersHandler) AddUser(c *fiber.Ctx) error {
	var req dto.AddUserRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}

	result, err := h.accounts.AddUser(c.UserContext(), principal(c), service.AddUserInput{
		Nom:            req.Nom,
		Prenom:         req.Prenom,
		Email:          req.Email,
		Telephone:      req.Telephone,
		Role:           req.Role,
		Adresse:        req.Adresse,
		NumeroCompteur: req.NumeroCompteur,
	})
	if err != nil {
		return err
	}

	account := result.Account
	return c.JSON(dto.AddUserResponse{
		Success: true,
		Message: "Utilisateur " + account.FullName() + " créé avec succès",
		User: dto.CreatedUser{
			ID:           account.ID,
			Nom:          account.LastName,
			Prenom:       account.FirstName,
			Email:        account.Email,
			Role:         account.Role,
			TempPassword: result.TempPassword,
			IsFirstLogin: account.IsFirstLogin,
		},
		EmailSent: result.EmailSent,
	})
}

// List handles GET /api/users/.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	accounts, err := h.accounts.List(c.UserContext(), principal(c), service.AccountListFilter{
		Role:   c.Query("role"),
		Active: parseOptionalBool(c.Query("is_active")),
		Limit:  parseInt(c.Query("limit"), 0),
		Offset: parseInt(c.Query("offset"), 0),
	})
	if err != nil {
		return err
	}
	items := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, dto.NewAccountResponse(&accounts[i]))
	}
	return c.JSON(fiber.Map{"success": true, "users": items})
}

// Update handles PATCH /api/users/:id/.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	account, err := h.accounts.Update(c.UserContext(), principal(c), c.Params("id"), service.UpdateAccountInput{
		Nom:            req.Nom,
		Prenom:         req.Prenom,
		Email:          req.Email,
		Telephone:      req.Telephone,
		Adresse:        req.Adresse,
		NumeroCompteur: req.NumeroCompteur,
		Role:           req.Role,
		IsActive:       req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Utilisateur mis à jour",
		"user":    dto.NewAccountResponse(account),
	})
}

// Delete handles DELETE /api/users/:id/.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.accounts.Delete(c.UserContext(), principal(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Utilisateur supprimé"})
}
