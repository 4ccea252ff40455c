package events

import (
	"time"

	"github.com/senelec/reclamations-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "reclamation_created"
	EventTicketStatusChanged EventType = "reclamation_status_changed"
	EventTicketAssigned      EventType = "reclamation_assigned"
	EventCredentialsIssued   EventType = "credentials_issued"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	AccountID *string     `json:"account_id,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
}

// ActorFrom builds the actor of an event from the authenticated caller.
func ActorFrom(p *domain.Principal) Actor {
	if p == nil || p.Account == nil {
		return Actor{}
	}
	id := p.Account.ID
	return Actor{AccountID: &id, Role: p.Account.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	AccountID string      `json:"account_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CategoryID string `json:"category_id"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus  domain.TicketStatus `json:"old_status"`
	NewStatus  domain.TicketStatus `json:"new_status"`
	ResponseAt *time.Time          `json:"date_reponse,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldTechnicianID *string `json:"old_technicien_id,omitempty"`
	TechnicianID    *string `json:"technicien_id,omitempty"`
}

// CredentialsIssuedPayload payload.
type CredentialsIssuedPayload struct {
	Email     string `json:"email"`
	EmailSent bool   `json:"email_sent"`
}
