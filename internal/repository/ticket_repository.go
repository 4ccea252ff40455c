package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/senelec/reclamations-api/internal/domain"
)

// TicketFilter captures listing and counting parameters.
type TicketFilter struct {
	AccountID    *string
	TechnicianID *string
	CategoryID   *string
	Statuses     []domain.TicketStatus
	Limit        int
	Offset       int
}

// TechnicianChange assigns a technician; a nil ID clears the assignment.
type TechnicianChange struct {
	ID *string
}

// TicketUpdate lists the fields to change; nil fields are left untouched.
type TicketUpdate struct {
	Status      *domain.TicketStatus
	Technician  *TechnicianChange
	ResponseAt  *time.Time
	Description *string
}

// TicketUpdateResult is the outcome of TicketRepository.Update.
type TicketUpdateResult struct {
	Ticket *domain.Ticket
	// Previous is the row as read under the update's lock.
	Previous domain.Ticket
	Changes  []domain.TicketHistory
}

// StatusChanged reports whether the update moved the ticket to a new status.
func (r *TicketUpdateResult) StatusChanged() bool {
	return r.Previous.Status != r.Ticket.Status
}

// TechnicianChanged reports whether the update changed the assignment.
func (r *TicketUpdateResult) TechnicianChanged() bool {
	return !sameRef(r.Previous.TechnicianID, r.Ticket.TechnicianID)
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountByStatus(ctx context.Context, filter TicketFilter) (domain.StatusCounts, error)
	// Update applies upd atomically, including the response time rule, and
	// records history entries attributed to actorID.
	Update(ctx context.Context, id string, upd TicketUpdate, actorID *string) (*TicketUpdateResult, error)
}

type ticketRepository struct {
	pool TxBeginner
	now  Clock
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool TxBeginner, clock Clock) TicketRepository {
	return &ticketRepository{pool: pool, now: clockOrDefault(clock)}
}

const ticketColumns = `id, description, status, response_at, image, account_id, category_id, technician_id, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO reclamations (description, status, response_at, image, account_id, category_id, technician_id, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)
        RETURNING id, created_at, updated_at`
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusPending
	}
	now := r.now()
	if ticket.Status.RequiresResponse() {
		ticket.RecordResponse(now)
	}
	err := r.pool.QueryRow(ctx, query,
		ticket.Description,
		ticket.Status,
		ticket.ResponseAt,
		ticket.Image,
		ticket.AccountID,
		ticket.CategoryID,
		ticket.TechnicianID,
		now,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	return mapPgError(err)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM reclamations WHERE id=$1`, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where, args := ticketWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM reclamations WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) CountByStatus(ctx context.Context, filter TicketFilter) (domain.StatusCounts, error) {
	where, args := ticketWhere(filter)
	query := fmt.Sprintf(`SELECT status, COUNT(*) FROM reclamations WHERE %s GROUP BY status`, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	counts := domain.StatusCounts{}
	for rows.Next() {
		var (
			status domain.TicketStatus
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *ticketRepository) Update(ctx context.Context, id string, upd TicketUpdate, actorID *string) (*TicketUpdateResult, error) {
	var result *TicketUpdateResult
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		ticket, err := scanTicket(tx.QueryRow(ctx,
			`SELECT `+ticketColumns+` FROM reclamations WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return err
		}

		if upd.Technician != nil && upd.Technician.ID != nil {
			var role domain.Role
			err := tx.QueryRow(ctx, `SELECT role FROM accounts WHERE id=$1 FOR SHARE`, *upd.Technician.ID).Scan(&role)
			if err != nil {
				if errors.Is(mapPgError(err), ErrNotFound) {
					return ErrInvalidTechnician
				}
				return err
			}
			if role != domain.RoleTechnician {
				return ErrInvalidTechnician
			}
		}

		previous := *ticket
		entries := ApplyTicketUpdate(ticket, upd, actorID, r.now())

		const query = `
            UPDATE reclamations SET description=$1, status=$2, response_at=$3, technician_id=$4, updated_at=$5
            WHERE id=$6`
		if _, err := tx.Exec(ctx, query,
			ticket.Description,
			ticket.Status,
			ticket.ResponseAt,
			ticket.TechnicianID,
			ticket.UpdatedAt,
			ticket.ID,
		); err != nil {
			return err
		}
		for i := range entries {
			if err := insertHistory(ctx, tx, &entries[i]); err != nil {
				return err
			}
		}
		result = &TicketUpdateResult{Ticket: ticket, Previous: previous, Changes: entries}
		return nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return result, nil
}

// ApplyTicketUpdate mutates ticket according to upd and returns the history
// entries describing the change. Every store backend calls it at write time.
func ApplyTicketUpdate(ticket *domain.Ticket, upd TicketUpdate, actorID *string, now time.Time) []domain.TicketHistory {
	var entries []domain.TicketHistory
	record := func(change domain.TicketChangeType, oldValue, newValue map[string]any) {
		entries = append(entries, domain.TicketHistory{
			TicketID:    ticket.ID,
			ChangedByID: actorID,
			ChangeType:  change,
			OldValue:    oldValue,
			NewValue:    newValue,
			CreatedAt:   now,
		})
	}

	if upd.Description != nil {
		ticket.Description = strings.TrimSpace(*upd.Description)
	}

	if upd.ResponseAt != nil && ticket.RecordResponse(*upd.ResponseAt) {
		record(domain.ChangeTypeResponse,
			map[string]any{"date_reponse": nil},
			map[string]any{"date_reponse": ticket.ResponseAt.Format(time.RFC3339)})
	}

	if upd.Status != nil && *upd.Status != ticket.Status {
		oldStatus := ticket.Status
		hadResponse := ticket.ResponseAt != nil
		ticket.SetStatus(*upd.Status, now)
		newValue := map[string]any{"status": ticket.Status}
		if !hadResponse && ticket.ResponseAt != nil {
			newValue["date_reponse"] = ticket.ResponseAt.Format(time.RFC3339)
		}
		record(domain.ChangeTypeStatus, map[string]any{"status": oldStatus}, newValue)
	}

	if upd.Technician != nil && !sameRef(ticket.TechnicianID, upd.Technician.ID) {
		oldTech := ticket.TechnicianID
		ticket.TechnicianID = copyRef(upd.Technician.ID)
		record(domain.ChangeTypeTechnician,
			map[string]any{"technicien_id": refValue(oldTech)},
			map[string]any{"technicien_id": refValue(ticket.TechnicianID)})
	}

	ticket.UpdatedAt = now
	return entries
}

func ticketWhere(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		clauses = append(clauses, fmt.Sprintf("account_id=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	return strings.Join(clauses, " AND "), args
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Description,
		&ticket.Status,
		&ticket.ResponseAt,
		&ticket.Image,
		&ticket.AccountID,
		&ticket.CategoryID,
		&ticket.TechnicianID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyRef(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}

func refValue(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
