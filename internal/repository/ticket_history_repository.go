package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/senelec/reclamations-api/internal/domain"
)

// TicketHistoryRepository reads audit entries. Entries are written by
// TicketRepository.Update inside its transaction.
type TicketHistoryRepository interface {
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	pool DBTX
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(pool DBTX) TicketHistoryRepository {
	return &ticketHistoryRepository{pool: pool}
}

func insertHistory(ctx context.Context, db DBTX, history *domain.TicketHistory) error {
	const query = `
        INSERT INTO reclamation_history (ticket_id, changed_by_id, change_type, old_value, new_value, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return db.QueryRow(ctx, query,
		history.TicketID,
		history.ChangedByID,
		history.ChangeType,
		history.OldValue,
		history.NewValue,
		history.CreatedAt,
	).Scan(&history.ID)
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	const query = `
        SELECT id, ticket_id, changed_by_id, change_type, old_value, new_value, created_at
        FROM reclamation_history
        WHERE ticket_id = $1
        ORDER BY created_at ASC, seq ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, mapPgError(err)
	}
	entries, err := pgx.CollectRows(rows, scanHistory)
	if err != nil {
		return nil, mapPgError(err)
	}
	return entries, nil
}

func scanHistory(row pgx.CollectableRow) (domain.TicketHistory, error) {
	var h domain.TicketHistory
	err := row.Scan(&h.ID, &h.TicketID, &h.ChangedByID, &h.ChangeType, &h.OldValue, &h.NewValue, &h.CreatedAt)
	return h, err
}
