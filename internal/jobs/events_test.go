package jobs

import "testing"

// TestEventBusSince verifies incremental event reads by sequence.
func TestEventBusSince(t *testing.T) {
	bus := NewEventBus(3)
	bus.Publish(Event{Type: EventTypeStatus, Message: "1"})
	bus.Publish(Event{Type: EventTypeStatus, Message: "2"})
	bus.Publish(Event{Type: EventTypeStatus, Message: "3"})

	events := bus.Since(1)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Seq != 2 || events[1].Seq != 3 {
		t.Fatalf("unexpected seqs: %+v", events)
	}
}

// TestEventBusCapsHistory verifies buffer limit trimming behavior.
func TestEventBusCapsHistory(t *testing.T) {
	bus := NewEventBus(2)
	bus.Publish(Event{Message: "1"})
	bus.Publish(Event{Message: "2"})
	bus.Publish(Event{Message: "3"})

	events := bus.Since(0)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Message != "2" || events[1].Message != "3" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

// TestEventBusNotifiesSubscribers verifies listeners receive sequenced events.
func TestEventBusNotifiesSubscribers(t *testing.T) {
	bus := NewEventBus(10)
	var got []Event
	bus.Subscribe(func(e Event) { got = append(got, e) })

	bus.Publish(Event{Type: EventTypeInfo, Message: "hello"})
	bus.Publish(Event{Type: EventTypeError, Message: "boom"})

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[1].Seq != 2 || got[1].Timestamp.IsZero() {
		t.Fatalf("event not stamped: %+v", got[1])
	}
	if errs := eventsOfType(bus, EventTypeError); len(errs) != 1 || errs[0].Message != "boom" {
		t.Fatalf("errors = %+v, want one boom", errs)
	}
}

// eventsOfType returns the buffered events of one kind.
func eventsOfType(bus *EventBus, kind EventType) []Event {
	var out []Event
	for _, e := range bus.Since(0) {
		if e.Type == kind {
			out = append(out, e)
		}
	}
	return out
}
