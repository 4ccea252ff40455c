package service

import (
	"context"
	"strings"

	"github.com/senelec/reclamations-api/internal/auth"
	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/repository"
	apperrors "github.com/senelec/reclamations-api/pkg/util"
)

// MsgCategoryNameRequired is returned when a category has no name.
const MsgCategoryNameRequired = "Le nom de la catégorie est requis"

// CategoryService manages the category catalog.
type CategoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService constructs the service.
func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// List returns active categories. Admins may include inactive ones.
func (s *CategoryService) List(ctx context.Context, p *domain.Principal, includeInactive bool) ([]domain.Category, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	includeInactive = includeInactive && p.HasRole(domain.RoleAdmin)
	categories, err := s.categories.List(ctx, includeInactive)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return categories, nil
}

// Create adds a category.
func (s *CategoryService) Create(ctx context.Context, p *domain.Principal, name, description string) (*domain.Category, error) {
	if err := auth.Authorize(p, auth.MsgAdminRequired, domain.RoleAdmin); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError(MsgCategoryNameRequired, nil)
	}
	category := &domain.Category{
		Name:        name,
		Description: strings.TrimSpace(description),
		IsActive:    true,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, mapStoreError(err, MsgCategoryNotFound)
	}
	return category, nil
}

// UpdateCategoryInput lists editable fields; nil fields are unchanged.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// Update edits or toggles a category.
func (s *CategoryService) Update(ctx context.Context, p *domain.Principal, id string, in UpdateCategoryInput) (*domain.Category, error) {
	if err := auth.Authorize(p, auth.MsgAdminRequired, domain.RoleAdmin); err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, MsgCategoryNotFound)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.NewValidationError(MsgCategoryNameRequired, nil)
		}
		category.Name = name
	}
	if in.Description != nil {
		category.Description = strings.TrimSpace(*in.Description)
	}
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, mapStoreError(err, MsgCategoryNotFound)
	}
	return category, nil
}

// Delete removes a category together with its complaints.
func (s *CategoryService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	if err := auth.Authorize(p, auth.MsgAdminRequired, domain.RoleAdmin); err != nil {
		return err
	}
	return mapStoreError(s.categories.Delete(ctx, id), MsgCategoryNotFound)
}
