package domain

import (
	"testing"
	"time"
)

func TestTicketSetStatusStampsResponse(t *testing.T) {
	now := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		status    TicketStatus
		wantStamp bool
	}{
		{name: "pending", status: TicketStatusPending, wantStamp: false},
		{name: "in progress", status: TicketStatusInProgress, wantStamp: false},
		{name: "resolved", status: TicketStatusResolved, wantStamp: true},
		{name: "closed", status: TicketStatusClosed, wantStamp: true},
		{name: "cancelled", status: TicketStatusCancelled, wantStamp: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := &Ticket{Status: TicketStatusPending}
			ticket.SetStatus(tt.status, now)
			if ticket.Status != tt.status {
				t.Fatalf("Status = %s, want %s", ticket.Status, tt.status)
			}
			if tt.wantStamp {
				if ticket.ResponseAt == nil || !ticket.ResponseAt.Equal(now) {
					t.Fatalf("ResponseAt = %v, want %v", ticket.ResponseAt, now)
				}
			} else if ticket.ResponseAt != nil {
				t.Fatalf("ResponseAt = %v, want nil", ticket.ResponseAt)
			}
		})
	}
}

func TestTicketSetStatusKeepsExistingResponse(t *testing.T) {
	first := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	ticket := &Ticket{Status: TicketStatusInProgress}
	ticket.SetStatus(TicketStatusResolved, first)
	ticket.SetStatus(TicketStatusInProgress, later)
	ticket.SetStatus(TicketStatusClosed, later)

	if ticket.ResponseAt == nil || !ticket.ResponseAt.Equal(first) {
		t.Fatalf("ResponseAt = %v, want %v", ticket.ResponseAt, first)
	}
	if ticket.RecordResponse(later) {
		t.Fatal("RecordResponse should not overwrite an existing response time")
	}
}

func TestParseTicketStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    TicketStatus
		wantErr bool
	}{
		{in: "en_attente", want: TicketStatusPending},
		{in: "pending", want: TicketStatusPending},
		{in: " EN_COURS ", want: TicketStatusInProgress},
		{in: "resolved", want: TicketStatusResolved},
		{in: "ferme", want: TicketStatusClosed},
		{in: "canceled", want: TicketStatusCancelled},
		{in: "archived", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTicketStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTicketStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTicketStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusCounts(t *testing.T) {
	counts := StatusCounts{
		TicketStatusPending:  2,
		TicketStatusResolved: 3,
	}
	if got := counts.Total(); got != 5 {
		t.Errorf("Total() = %d, want 5", got)
	}
	if got := counts.Of(TicketStatusClosed); got != 0 {
		t.Errorf("Of(closed) = %d, want 0", got)
	}
}
