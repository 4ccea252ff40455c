// Package memstore keeps every repository in process memory. It backs the
// test suites and local runs without POSTGRES_DSN.
package memstore

import (
	"sync"

	"github.com/google/uuid"

	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/repository"
)

// Store holds all tables behind a single lock so that multi-table writes
// (cascades, uniqueness checks) are atomic.
type Store struct {
	mu  sync.RWMutex
	now repository.Clock
	seq uint64

	accounts   map[string]*accountRow
	categories map[string]*categoryRow
	tickets    map[string]*ticketRow
	history    []domain.TicketHistory
}

type accountRow struct {
	domain.Account
	seq uint64
}

type categoryRow struct {
	domain.Category
	seq uint64
}

type ticketRow struct {
	domain.Ticket
	seq uint64
}

// New creates an empty store. A nil clock falls back to repository.SystemClock.
func New(clock repository.Clock) *Store {
	if clock == nil {
		clock = repository.SystemClock
	}
	return &Store{
		now:        clock,
		accounts:   make(map[string]*accountRow),
		categories: make(map[string]*categoryRow),
		tickets:    make(map[string]*ticketRow),
	}
}

// Accounts exposes the account table.
func (s *Store) Accounts() repository.AccountRepository { return &accountStore{s} }

// Categories exposes the category table.
func (s *Store) Categories() repository.CategoryRepository { return &categoryStore{s} }

// Tickets exposes the complaint table.
func (s *Store) Tickets() repository.TicketRepository { return &ticketStore{s} }

// History exposes the complaint audit trail.
func (s *Store) History() repository.TicketHistoryRepository { return &historyStore{s} }

// nextSeq must be called with mu held.
func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// deleteTicketsLocked removes the tickets selected by match and their history.
func (s *Store) deleteTicketsLocked(match func(*ticketRow) bool) {
	removed := make(map[string]struct{})
	for id, row := range s.tickets {
		if match(row) {
			delete(s.tickets, id)
			removed[id] = struct{}{}
		}
	}
	if len(removed) == 0 {
		return
	}
	kept := s.history[:0]
	for _, h := range s.history {
		if _, gone := removed[h.TicketID]; !gone {
			kept = append(kept, h)
		}
	}
	s.history = kept
}

func newID() string {
	return uuid.NewString()
}

func paginate(n, limit, offset, defaultLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}

func copyPtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
