package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/senelec/reclamations-api/internal/api/dto"
	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/service"
)

// TicketsHandler manages complaint endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket handles POST /api/reclamations/.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateReclamationRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), principal(c), service.TicketCreateInput{
		CategoryID:  req.CategorieID,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ticketEnvelope("Réclamation créée avec succès", ticket))
}

// ListTickets handles GET /api/reclamations/.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	page, err := h.service.ListTickets(c.UserContext(), principal(c), service.TicketListFilter{
		Statuses: splitList(c.Query("status")),
		Page:     parseInt(c.Query("page"), 1),
		PageSize: parseInt(c.Query("page_size"), 0),
	})
	if err != nil {
		return err
	}
	items := make([]dto.ReclamationResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, dto.NewReclamationResponse(&page.Items[i]))
	}
	return c.JSON(dto.ReclamationPage{
		Success:  true,
		Items:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	})
}

// GetTicket handles GET /api/reclamations/:id/.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "reclamation": dto.NewReclamationResponse(ticket)})
}

// UpdateStatus handles PATCH /api/reclamations/:id/statut/.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), principal(c), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(ticketEnvelope("Statut mis à jour", ticket))
}

// AssignTechnician handles PATCH /api/reclamations/:id/technicien/.
func (h *TicketsHandler) AssignTechnician(c *fiber.Ctx) error {
	var req dto.AssignTechnicianRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.AssignTechnician(c.UserContext(), principal(c), c.Params("id"), req.TechnicienID)
	if err != nil {
		return err
	}
	message := "Technicien assigné"
	if ticket.TechnicianID == nil {
		message = "Technicien retiré"
	}
	return c.JSON(ticketEnvelope(message, ticket))
}

// History handles GET /api/reclamations/:id/historique/.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	entries, err := h.service.History(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "historique": dto.NewHistoryResponses(entries)})
}

func ticketEnvelope(message string, ticket *domain.Ticket) fiber.Map {
	return fiber.Map{
		"success":     true,
		"message":     message,
		"reclamation": dto.NewReclamationResponse(ticket),
	}
}
