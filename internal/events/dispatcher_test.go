package events

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestDispatcherInvokesAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string

	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.TicketID)
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		calls = append(calls, "assigned")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t1"})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("Publish error = %v, want boom", err)
	}
	if len(calls) != 2 || calls[0] != "first:t1" || calls[1] != "second:t1" {
		t.Fatalf("calls = %v", calls)
	}

	if err := d.Publish(context.Background(), Event{Type: EventCredentialsIssued}); err != nil {
		t.Fatalf("publish without listeners: %v", err)
	}
}

func TestDispatcherWildcardAndPanics(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []EventType

	d.SubscribeAll(func(_ context.Context, e Event) error {
		seen = append(seen, e.Type)
		return nil
	})
	d.Subscribe(EventTicketStatusChanged, func(context.Context, Event) error {
		panic("mail server exploded")
	})
	d.Subscribe(EventTicketStatusChanged, func(_ context.Context, e Event) error {
		seen = append(seen, "after-panic")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketStatusChanged})
	if err == nil || !strings.Contains(err.Error(), "mail server exploded") {
		t.Fatalf("Publish error = %v, want recovered panic", err)
	}
	if err := d.Publish(context.Background(), Event{Type: EventCredentialsIssued}); err != nil {
		t.Fatalf("Publish error = %v", err)
	}

	want := []EventType{EventTicketStatusChanged, "after-panic", EventCredentialsIssued}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
}
