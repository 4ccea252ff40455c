package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for complaints.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "en_attente"
	TicketStatusInProgress TicketStatus = "en_cours"
	TicketStatusResolved   TicketStatus = "resolu"
	TicketStatusClosed     TicketStatus = "ferme"
	TicketStatusCancelled  TicketStatus = "annule"
)

// TicketStatuses lists statuses in their typical progression.
var TicketStatuses = []TicketStatus{
	TicketStatusPending,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
	TicketStatusCancelled,
}

// ParseTicketStatus accepts the wire value or its English alias.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "en_attente", "pending":
		return TicketStatusPending, nil
	case "en_cours", "in_progress":
		return TicketStatusInProgress, nil
	case "resolu", "resolved":
		return TicketStatusResolved, nil
	case "ferme", "closed":
		return TicketStatusClosed, nil
	case "annule", "cancelled", "canceled":
		return TicketStatusCancelled, nil
	default:
		return "", fmt.Errorf("statut invalide: %q", raw)
	}
}

// RequiresResponse reports whether reaching this status stamps a response time.
func (s TicketStatus) RequiresResponse() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// Label is the display name of the status.
func (s TicketStatus) Label() string {
	switch s {
	case TicketStatusPending:
		return "En Attente"
	case TicketStatusInProgress:
		return "En Cours"
	case TicketStatusResolved:
		return "Résolu"
	case TicketStatusClosed:
		return "Fermé"
	case TicketStatusCancelled:
		return "Annulé"
	}
	return string(s)
}

// Ticket is a customer complaint.
type Ticket struct {
	ID           string
	Description  string
	Status       TicketStatus
	ResponseAt   *time.Time
	Image        *string
	AccountID    string
	CategoryID   string
	TechnicianID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SetStatus moves the ticket to status. Reaching resolu or ferme without a
// response time stamps it with now; an existing response time is kept.
func (t *Ticket) SetStatus(status TicketStatus, now time.Time) {
	t.Status = status
	if status.RequiresResponse() && t.ResponseAt == nil {
		at := now
		t.ResponseAt = &at
	}
}

// RecordResponse sets the response time unless one is already present.
func (t *Ticket) RecordResponse(at time.Time) bool {
	if t.ResponseAt != nil {
		return false
	}
	t.ResponseAt = &at
	return true
}

// StatusCounts holds ticket counts per status.
type StatusCounts map[TicketStatus]int64

// Total sums every status.
func (c StatusCounts) Total() int64 {
	var total int64
	for _, n := range c {
		total += n
	}
	return total
}

// Of returns the count for status, zero when absent.
func (c StatusCounts) Of(status TicketStatus) int64 {
	return c[status]
}
