// Package events provides the in-process signal bus that decouples the turn
// pipeline from observers such as the MCP resource notifier and persistence
// bookkeeping.
package events

import (
	"sync"
	"time"
)

// Topic identifies a signal category on the bus.
type Topic string

const (
	// TopicNPCAdded fires when detection inserts a new roster NPC.
	TopicNPCAdded Topic = "npc.added"
	// TopicNPCUpdated fires when detection merges into an existing NPC.
	TopicNPCUpdated Topic = "npc.updated"
	// TopicNPCRemoved fires when an NPC leaves the roster.
	TopicNPCRemoved Topic = "npc.removed"
	// TopicGenerationEnded fires when a text generation completes or is cancelled.
	TopicGenerationEnded Topic = "generation.ended"
	// TopicDataSynced fires after a successful authoritative-store sync.
	TopicDataSynced Topic = "data.synced"
)

// Event is one signal on the bus.
type Event struct {
	Topic     Topic
	SessionID string
	// Subject is the affected entity: an NPC name, generation id, or empty.
	Subject   string
	Timestamp time.Time
}

// Handler receives published events.
type Handler func(Event)

// Bus is a minimal synchronous publish/subscribe hub. Handlers run inline on
// the publisher's goroutine; the single-writer turn model makes that safe.
type Bus struct {
	mu       sync.Mutex
	handlers map[Topic][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Topic][]Handler)}
}

// Subscribe registers a handler for a topic and returns an unsubscribe func.
func (b *Bus) Subscribe(topic Topic, handler Handler) func() {
	if b == nil || handler == nil {
		return func() {}
	}
	b.mu.Lock()
	b.handlers[topic] = append(b.handlers[topic], handler)
	index := len(b.handlers[topic]) - 1
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		handlers := b.handlers[topic]
		if index < len(handlers) && handlers[index] != nil {
			handlers[index] = nil
		}
	}
}

// Publish delivers the event to every live subscriber of its topic.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	b.mu.Lock()
	handlers := make([]Handler, len(b.handlers[evt.Topic]))
	copy(handlers, b.handlers[evt.Topic])
	b.mu.Unlock()

	for _, handler := range handlers {
		if handler != nil {
			handler(evt)
		}
	}
}
