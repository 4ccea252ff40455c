package repository

import (
	"testing"
	"time"

	"github.com/senelec/reclamations-api/internal/domain"
)

func statusPtr(s domain.TicketStatus) *domain.TicketStatus { return &s }

func strPtr(s string) *string { return &s }

func TestApplyTicketUpdateStatus(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	actor := strPtr("actor-1")

	ticket := &domain.Ticket{ID: "t-1", Status: domain.TicketStatusInProgress}
	entries := ApplyTicketUpdate(ticket, TicketUpdate{Status: statusPtr(domain.TicketStatusResolved)}, actor, now)

	if ticket.Status != domain.TicketStatusResolved {
		t.Fatalf("Status = %s", ticket.Status)
	}
	if ticket.ResponseAt == nil || !ticket.ResponseAt.Equal(now) {
		t.Fatalf("ResponseAt = %v, want %v", ticket.ResponseAt, now)
	}
	if !ticket.UpdatedAt.Equal(now) {
		t.Fatalf("UpdatedAt = %v, want %v", ticket.UpdatedAt, now)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.ChangeType != domain.ChangeTypeStatus || entry.TicketID != "t-1" || entry.ChangedByID != actor {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.OldValue["status"] != domain.TicketStatusInProgress {
		t.Errorf("old status = %v", entry.OldValue["status"])
	}
	if _, ok := entry.NewValue["date_reponse"]; !ok {
		t.Error("new value should carry the stamped response time")
	}
}

func TestApplyTicketUpdateNeverClearsResponse(t *testing.T) {
	first := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	ticket := &domain.Ticket{ID: "t-1", Status: domain.TicketStatusPending}
	ApplyTicketUpdate(ticket, TicketUpdate{Status: statusPtr(domain.TicketStatusClosed)}, nil, first)
	ApplyTicketUpdate(ticket, TicketUpdate{
		Status:      statusPtr(domain.TicketStatusInProgress),
		Description: strPtr("  compteur bloqué  "),
		ResponseAt:  &later,
	}, nil, later)

	if ticket.ResponseAt == nil || !ticket.ResponseAt.Equal(first) {
		t.Fatalf("ResponseAt = %v, want %v", ticket.ResponseAt, first)
	}
	if ticket.Description != "compteur bloqué" {
		t.Fatalf("Description = %q", ticket.Description)
	}
}

func TestApplyTicketUpdateExplicitResponse(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	explicit := now.Add(-24 * time.Hour)

	ticket := &domain.Ticket{ID: "t-1", Status: domain.TicketStatusInProgress}
	entries := ApplyTicketUpdate(ticket, TicketUpdate{
		Status:     statusPtr(domain.TicketStatusResolved),
		ResponseAt: &explicit,
	}, nil, now)

	if ticket.ResponseAt == nil || !ticket.ResponseAt.Equal(explicit) {
		t.Fatalf("ResponseAt = %v, want %v", ticket.ResponseAt, explicit)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].ChangeType != domain.ChangeTypeResponse || entries[1].ChangeType != domain.ChangeTypeStatus {
		t.Fatalf("unexpected change types %s, %s", entries[0].ChangeType, entries[1].ChangeType)
	}
}

func TestApplyTicketUpdateTechnician(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	ticket := &domain.Ticket{ID: "t-1", Status: domain.TicketStatusPending}

	entries := ApplyTicketUpdate(ticket, TicketUpdate{Technician: &TechnicianChange{ID: strPtr("tech-1")}}, nil, now)
	if ticket.TechnicianID == nil || *ticket.TechnicianID != "tech-1" {
		t.Fatalf("TechnicianID = %v", ticket.TechnicianID)
	}
	if len(entries) != 1 || entries[0].ChangeType != domain.ChangeTypeTechnician {
		t.Fatalf("unexpected entries %+v", entries)
	}

	entries = ApplyTicketUpdate(ticket, TicketUpdate{Technician: &TechnicianChange{ID: strPtr("tech-1")}}, nil, now)
	if len(entries) != 0 {
		t.Fatalf("same technician should not record history, got %d", len(entries))
	}

	entries = ApplyTicketUpdate(ticket, TicketUpdate{Technician: &TechnicianChange{}}, nil, now)
	if ticket.TechnicianID != nil {
		t.Fatalf("TechnicianID = %v, want nil", *ticket.TechnicianID)
	}
	if len(entries) != 1 || entries[0].NewValue["technicien_id"] != nil {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestTicketWhere(t *testing.T) {
	where, args := ticketWhere(TicketFilter{
		AccountID: strPtr("acc"),
		Statuses:  []domain.TicketStatus{domain.TicketStatusPending, domain.TicketStatusInProgress},
	})
	want := "1=1 AND account_id=$1 AND status IN ($2,$3)"
	if where != want {
		t.Fatalf("where = %q, want %q", where, want)
	}
	if len(args) != 3 {
		t.Fatalf("len(args) = %d, want 3", len(args))
	}
}
