package dto

import (
	"time"

	"github.com/senelec/reclamations-api/internal/domain"
)

// CategoryRequest payload for category create and update.
type CategoryRequest struct {
	Nom         *string `json:"nom"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// CategoryResponse is the category view.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Nom         string    `json:"nom"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	DateCreated time.Time `json:"date_created"`
}

// CreateReclamationRequest payload for POST /api/reclamations/.
type CreateReclamationRequest struct {
	CategorieID string  `json:"categorie_id"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

// UpdateStatusRequest payload for PATCH /api/reclamations/:id/statut/.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AssignTechnicianRequest payload for PATCH /api/reclamations/:id/technicien/.
// A null or empty technicien_id clears the assignment.
type AssignTechnicianRequest struct {
	TechnicienID *string `json:"technicien_id"`
}

// ReclamationResponse is the complaint view.
type ReclamationResponse struct {
	ID           string              `json:"id"`
	Description  string              `json:"description"`
	Status       domain.TicketStatus `json:"status"`
	StatusLabel  string              `json:"status_label"`
	DateReponse  *time.Time          `json:"date_reponse"`
	Image        *string             `json:"image"`
	UserID       string              `json:"user_id"`
	CategorieID  string              `json:"categorie_id"`
	TechnicienID *string             `json:"technicien_id"`
	DateCreated  time.Time           `json:"date_created"`
	DateUpdated  time.Time           `json:"date_updated"`
}

// ReclamationPage is a paginated list of complaints.
type ReclamationPage struct {
	Success  bool                  `json:"success"`
	Items    []ReclamationResponse `json:"reclamations"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

// HistoryResponse is one audit trail entry.
type HistoryResponse struct {
	ID          string                  `json:"id"`
	ChangedBy   *string                 `json:"changed_by"`
	ChangeType  domain.TicketChangeType `json:"change_type"`
	OldValue    map[string]any          `json:"old_value"`
	NewValue    map[string]any          `json:"new_value"`
	DateCreated time.Time               `json:"date_created"`
}

// NewCategoryResponse builds the category view.
func NewCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Nom:         category.Name,
		Description: category.Description,
		IsActive:    category.IsActive,
		DateCreated: category.CreatedAt,
	}
}

// NewReclamationResponse builds the complaint view.
func NewReclamationResponse(ticket *domain.Ticket) ReclamationResponse {
	return ReclamationResponse{
		ID:           ticket.ID,
		Description:  ticket.Description,
		Status:       ticket.Status,
		StatusLabel:  ticket.Status.Label(),
		DateReponse:  ticket.ResponseAt,
		Image:        ticket.Image,
		UserID:       ticket.AccountID,
		CategorieID:  ticket.CategoryID,
		TechnicienID: ticket.TechnicianID,
		DateCreated:  ticket.CreatedAt,
		DateUpdated:  ticket.UpdatedAt,
	}
}

// NewHistoryResponses builds the audit trail view.
func NewHistoryResponses(entries []domain.TicketHistory) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, HistoryResponse{
			ID:          entry.ID,
			ChangedBy:   entry.ChangedByID,
			ChangeType:  entry.ChangeType,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			DateCreated: entry.CreatedAt,
		})
	}
	return out
}
