package service

import (
	"context"
	"strings"
	"time"

	"github.com/senelec/reclamations-api/internal/auth"
	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/events"
	"github.com/senelec/reclamations-api/internal/repository"
	apperrors "github.com/senelec/reclamations-api/pkg/util"
)

// Ticket messages.
const (
	MsgClientOnly          = "Seuls les clients peuvent déposer une réclamation"
	MsgDescriptionRequired = "La description est requise"
	MsgCategoryRequired    = "La catégorie est requise"
	MsgCategoryInactive    = "Cette catégorie n'est plus active"
	MsgStatusRequired      = "Le statut est requis"

	defaultPageSize = 20
	maxPageSize     = 100
)

// TicketService coordinates complaint workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	categories repository.CategoryRepository
	history    repository.TicketHistoryRepository
	events     publisher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CategoryRepo repository.CategoryRepository
	HistoryRepo  repository.TicketHistoryRepository
	Dispatcher   events.Dispatcher
	Clock        func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		categories: deps.CategoryRepo,
		history:    deps.HistoryRepo,
		events:     publisher{dispatcher: deps.Dispatcher, now: deps.Clock},
	}
}

// TicketCreateInput describes complaint creation payload.
type TicketCreateInput struct {
	CategoryID  string
	Description string
	Image       *string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses []string
	Page     int
	PageSize int
}

// TicketPage is a page of complaints.
type TicketPage struct {
	Items    []domain.Ticket
	Total    int64
	Page     int
	PageSize int
}

// CreateTicket files a complaint for the calling client.
func (s *TicketService) CreateTicket(ctx context.Context, p *domain.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := auth.Authorize(p, MsgClientOnly, domain.RoleClient); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.NewValidationError(MsgDescriptionRequired, nil)
	}
	if strings.TrimSpace(input.CategoryID) == "" {
		return nil, apperrors.NewValidationError(MsgCategoryRequired, nil)
	}

	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, mapStoreError(err, MsgCategoryNotFound)
	}
	if !category.IsActive {
		return nil, apperrors.NewValidationError(MsgCategoryInactive, nil)
	}

	var image *string
	if input.Image != nil && strings.TrimSpace(*input.Image) != "" {
		trimmed := strings.TrimSpace(*input.Image)
		image = &trimmed
	}

	ticket := &domain.Ticket{
		Description: description,
		Status:      domain.TicketStatusPending,
		Image:       image,
		AccountID:   p.Account.ID,
		CategoryID:  category.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, mapStoreError(err, MsgCategoryNotFound)
	}

	s.events.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(p),
		Payload:  events.TicketCreatedPayload{CategoryID: ticket.CategoryID},
	})
	return ticket, nil
}

// scope restricts a filter to the complaints p may see.
func scope(p *domain.Principal, filter repository.TicketFilter) repository.TicketFilter {
	id := p.Account.ID
	switch p.Account.Role {
	case domain.RoleAdmin, domain.RoleSupervisor:
	case domain.RoleClient:
		filter.AccountID = &id
	case domain.RoleTechnician:
		filter.TechnicianID = &id
	}
	return filter
}

func canSee(p *domain.Principal, ticket *domain.Ticket) bool {
	switch p.Account.Role {
	case domain.RoleAdmin, domain.RoleSupervisor:
		return true
	case domain.RoleClient:
		return ticket.AccountID == p.Account.ID
	case domain.RoleTechnician:
		return ticket.TechnicianID != nil && *ticket.TechnicianID == p.Account.ID
	}
	return false
}

// ListTickets returns a page of the complaints visible to p.
func (s *TicketService) ListTickets(ctx context.Context, p *domain.Principal, filter TicketListFilter) (*TicketPage, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}

	statuses := make([]domain.TicketStatus, 0, len(filter.Statuses))
	for _, raw := range filter.Statuses {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		status, err := domain.ParseTicketStatus(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("Statut invalide: "+raw, nil)
		}
		statuses = append(statuses, status)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	repoFilter := scope(p, repository.TicketFilter{
		Statuses: statuses,
		Limit:    size,
		Offset:   (page - 1) * size,
	})
	items, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	counts, err := s.tickets.CountByStatus(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &TicketPage{Items: items, Total: counts.Total(), Page: page, PageSize: size}, nil
}

// GetTicket returns a complaint when visible to p. Invisible complaints are
// reported as not found.
func (s *TicketService) GetTicket(ctx context.Context, p *domain.Principal, id string) (*domain.Ticket, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, MsgTicketNotFound)
	}
	if !canSee(p, ticket) {
		return nil, apperrors.NewNotFound(MsgTicketNotFound, nil)
	}
	return ticket, nil
}

// UpdateStatus moves a complaint to a new status. Back office roles may
// update any complaint; technicians only those assigned to them.
func (s *TicketService) UpdateStatus(ctx context.Context, p *domain.Principal, id, rawStatus string) (*domain.Ticket, error) {
	if strings.TrimSpace(rawStatus) == "" {
		return nil, apperrors.NewValidationError(MsgStatusRequired, nil)
	}
	status, err := domain.ParseTicketStatus(rawStatus)
	if err != nil {
		return nil, apperrors.NewValidationError("Statut invalide: "+rawStatus, nil)
	}

	if _, err := s.GetTicket(ctx, p, id); err != nil {
		return nil, err
	}
	if err := auth.Authorize(p, auth.MsgAccessForbidden, domain.RoleAdmin, domain.RoleSupervisor, domain.RoleTechnician); err != nil {
		return nil, err
	}

	actorID := p.Account.ID
	res, err := s.tickets.Update(ctx, id, repository.TicketUpdate{Status: &status}, &actorID)
	if err != nil {
		return nil, mapStoreError(err, MsgTicketNotFound)
	}

	// Previous was read under the update's lock, so only one of several
	// concurrent identical moves reports a change.
	if res.StatusChanged() {
		s.events.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: res.Ticket.ID,
			Actor:    events.ActorFrom(p),
			Payload: events.TicketStatusChangedPayload{
				OldStatus:  res.Previous.Status,
				NewStatus:  res.Ticket.Status,
				ResponseAt: res.Ticket.ResponseAt,
			},
		})
	}
	return res.Ticket, nil
}

// AssignTechnician assigns or, with a nil technicianID, clears the technician.
func (s *TicketService) AssignTechnician(ctx context.Context, p *domain.Principal, id string, technicianID *string) (*domain.Ticket, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := auth.Authorize(p, auth.MsgAccessForbidden, domain.RoleAdmin, domain.RoleSupervisor); err != nil {
		return nil, err
	}
	if technicianID != nil && strings.TrimSpace(*technicianID) == "" {
		technicianID = nil
	}

	actorID := p.Account.ID
	res, err := s.tickets.Update(ctx, id, repository.TicketUpdate{
		Technician: &repository.TechnicianChange{ID: technicianID},
	}, &actorID)
	if err != nil {
		return nil, mapStoreError(err, MsgTicketNotFound)
	}

	if res.TechnicianChanged() {
		s.events.publish(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: res.Ticket.ID,
			Actor:    events.ActorFrom(p),
			Payload: events.TicketAssignedPayload{
				OldTechnicianID: res.Previous.TechnicianID,
				TechnicianID:    res.Ticket.TechnicianID,
			},
		})
	}
	return res.Ticket, nil
}

// History returns the audit trail of a complaint visible to p.
func (s *TicketService) History(ctx context.Context, p *domain.Principal, id string) ([]domain.TicketHistory, error) {
	if _, err := s.GetTicket(ctx, p, id); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}
