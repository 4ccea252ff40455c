package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/senelec/reclamations-api/internal/api/dto"
	"github.com/senelec/reclamations-api/internal/service"
)

// CategoriesHandler exposes the category catalog.
type CategoriesHandler struct {
	categories *service.CategoryService
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categories *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{categories: categories}
}

// List handles GET /api/categories/.
func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	includeInactive := c.QueryBool("include_inactive", false)
	categories, err := h.categories.List(c.UserContext(), principal(c), includeInactive)
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, dto.NewCategoryResponse(&categories[i]))
	}
	return c.JSON(fiber.Map{"success": true, "categories": items})
}

// Create handles POST /api/categories/.
func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	var name, description string
	if req.Nom != nil {
		name = *req.Nom
	}
	if req.Description != nil {
		description = *req.Description
	}
	category, err := h.categories.Create(c.UserContext(), principal(c), name, description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"message":   "Catégorie créée",
		"categorie": dto.NewCategoryResponse(category),
	})
}

// Update handles PATCH /api/categories/:id/.
func (h *CategoriesHandler) Update(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	category, err := h.categories.Update(c.UserContext(), principal(c), c.Params("id"), service.UpdateCategoryInput{
		Name:        req.Nom,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Catégorie mise à jour",
		"categorie": dto.NewCategoryResponse(category),
	})
}

// Delete handles DELETE /api/categories/:id/.
func (h *CategoriesHandler) Delete(c *fiber.Ctx) error {
	if err := h.categories.Delete(c.UserContext(), principal(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Catégorie supprimée"})
}
