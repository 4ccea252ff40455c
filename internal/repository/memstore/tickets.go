package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/repository"
)

type ticketStore struct {
	s *Store
}

func cloneTicket(t domain.Ticket) *domain.Ticket {
	t.ResponseAt = copyPtr(t.ResponseAt)
	t.Image = copyPtr(t.Image)
	t.TechnicianID = copyPtr(t.TechnicianID)
	return &t
}

func matchTicket(row *ticketRow, filter repository.TicketFilter) bool {
	if filter.AccountID != nil && row.AccountID != *filter.AccountID {
		return false
	}
	if filter.TechnicianID != nil && (row.TechnicianID == nil || *row.TechnicianID != *filter.TechnicianID) {
		return false
	}
	if filter.CategoryID != nil && row.CategoryID != *filter.CategoryID {
		return false
	}
	if len(filter.Statuses) > 0 {
		for _, status := range filter.Statuses {
			if row.Status == status {
				return true
			}
		}
		return false
	}
	return true
}

func (s *Store) checkTechnicianLocked(id string) error {
	row, ok := s.accounts[id]
	if !ok || row.Role != domain.RoleTechnician {
		return repository.ErrInvalidTechnician
	}
	return nil
}

func (r *ticketStore) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[ticket.AccountID]; !ok {
		return fmt.Errorf("%w: account %s", repository.ErrNotFound, ticket.AccountID)
	}
	if _, ok := r.s.categories[ticket.CategoryID]; !ok {
		return fmt.Errorf("%w: category %s", repository.ErrNotFound, ticket.CategoryID)
	}
	if ticket.TechnicianID != nil {
		if _, ok := r.s.accounts[*ticket.TechnicianID]; !ok {
			return fmt.Errorf("%w: technician %s", repository.ErrNotFound, *ticket.TechnicianID)
		}
	}

	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusPending
	}
	now := r.s.now()
	if ticket.Status.RequiresResponse() {
		ticket.RecordResponse(now)
	}
	ticket.ID = newID()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.s.tickets[ticket.ID] = &ticketRow{Ticket: *cloneTicket(*ticket), seq: r.s.nextSeq()}
	return nil
}

func (r *ticketStore) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneTicket(row.Ticket), nil
}

func (r *ticketStore) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]*ticketRow, 0, len(r.s.tickets))
	for _, row := range r.s.tickets {
		if matchTicket(row, filter) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	start, end := paginate(len(rows), filter.Limit, filter.Offset, 20)
	result := make([]domain.Ticket, 0, end-start)
	for _, row := range rows[start:end] {
		result = append(result, *cloneTicket(row.Ticket))
	}
	return result, nil
}

func (r *ticketStore) CountByStatus(_ context.Context, filter repository.TicketFilter) (domain.StatusCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := domain.StatusCounts{}
	for _, row := range r.s.tickets {
		if matchTicket(row, filter) {
			counts[row.Status]++
		}
	}
	return counts, nil
}

func (r *ticketStore) Update(_ context.Context, id string, upd repository.TicketUpdate, actorID *string) (*repository.TicketUpdateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.Technician != nil && upd.Technician.ID != nil {
		if err := r.s.checkTechnicianLocked(*upd.Technician.ID); err != nil {
			return nil, err
		}
	}

	previous := cloneTicket(row.Ticket)
	ticket := cloneTicket(row.Ticket)
	entries := repository.ApplyTicketUpdate(ticket, upd, copyPtr(actorID), r.s.now())
	row.Ticket = *cloneTicket(*ticket)
	for i := range entries {
		entries[i].ID = newID()
		r.s.history = append(r.s.history, entries[i])
	}
	return &repository.TicketUpdateResult{Ticket: ticket, Previous: *previous, Changes: entries}, nil
}

type historyStore struct {
	s *Store
}

func (r *historyStore) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []domain.TicketHistory
	for _, entry := range r.s.history {
		if entry.TicketID == ticketID {
			entry.ChangedByID = copyPtr(entry.ChangedByID)
			result = append(result, entry)
		}
	}
	return result, nil
}
