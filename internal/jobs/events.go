package jobs

import (
	"sync"
	"time"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
)

// EventType classifies notifications raised by orchestration.
type EventType string

const (
	EventTypeInfo    EventType = "info"
	EventTypeSuccess EventType = "success"
	EventTypeError   EventType = "error"
	EventTypeStatus  EventType = "status"
)

// Event is a sequenced payload consumed by UI subscribers.
type Event struct {
	Seq         int64              `json:"seq"`
	Timestamp   time.Time          `json:"timestamp"`
	Type        EventType          `json:"type"`
	Message     string             `json:"message,omitempty"`
	VideoID     string             `json:"videoId,omitempty"`
	JobID       string             `json:"jobId,omitempty"`
	BatchStatus domain.BatchStatus `json:"batchStatus,omitempty"`
	Epoch       uint64             `json:"epoch,omitempty"`
}

// Publisher receives notifications. EventBus is the in-memory implementation.
type Publisher interface {
	Publish(event Event) Event
}

// EventBus stores recent events and provides incremental reads.
type EventBus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
	listeners []func(Event)
}

// NewEventBus creates a bounded in-memory event buffer.
func NewEventBus(maxEvents int) *EventBus {
	if maxEvents <= 0 {
		maxEvents = 500
	}

	return &EventBus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// Publish appends one event, assigns sequence and timestamp, then forwards it
// to listeners.
func (b *EventBus) Publish(event Event) Event {
	b.mu.Lock()
	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}
	listeners := b.listeners
	b.mu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
	return event
}

// Subscribe registers fn for every event published after the call.
func (b *EventBus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Since returns events with sequence strictly greater than seq.
func (b *EventBus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.events) == 0 {
		return nil
	}

	out := make([]Event, 0, len(b.events))
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}
