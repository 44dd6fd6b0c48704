package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []string
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, e.TicketID+"-again")
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t-1"}); err != nil {
		t.Fatalf("Publish returned %v", err)
	}
	if len(seen) != 2 || seen[0] != "t-1" || seen[1] != "t-1-again" {
		t.Fatalf("handlers saw %v", seen)
	}
}

func TestDispatcherHandlerErrorDoesNotStopDelivery(t *testing.T) {
	d := NewInMemoryDispatcher()
	called := false
	d.Subscribe(EventTicketExpired, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventTicketExpired, func(context.Context, Event) error {
		called = true
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketExpired}); err != nil {
		t.Fatalf("Publish returned %v", err)
	}
	if !called {
		t.Fatal("second handler skipped after error")
	}
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventTicketDeleted}); err != nil {
		t.Fatalf("Publish returned %v", err)
	}
}
