// Package events provides the in-process event bus over which the decision
// core announces state changes to interested collaborators (recommendation
// tracker, dashboards, persistence).
package events

import (
	"sync"
	"time"
)

// EventType represents different types of events in the core.
type EventType string

const (
	EventParametersAdjusted EventType = "PARAMETERS_ADJUSTED"
	EventParametersReset    EventType = "PARAMETERS_RESET"
	EventModelTrained       EventType = "MODEL_TRAINED"
	EventWeightsUpdated     EventType = "WEIGHTS_UPDATED"
	EventDecisionEmitted    EventType = "DECISION_EMITTED"
	EventPersistenceError   EventType = "PERSISTENCE_ERROR"
)

// Event represents one announcement.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Subscriber is a function that handles events. Subscribers run on the
// publisher's goroutine and must not block.
type Subscriber func(Event)

// Bus manages event publishing and subscriptions.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	allSubs     []Subscriber
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[EventType][]Subscriber),
	}
}

// Subscribe registers a subscriber for a specific event type.
func (b *Bus) Subscribe(eventType EventType, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], sub)
}

// SubscribeAll registers a subscriber for every event type.
func (b *Bus) SubscribeAll(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allSubs = append(b.allSubs, sub)
}

// Publish delivers an event to all matching subscribers.
func (b *Bus) Publish(eventType EventType, data map[string]interface{}) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	b.mu.RLock()
	subs := make([]Subscriber, 0, len(b.subscribers[eventType])+len(b.allSubs))
	subs = append(subs, b.subscribers[eventType]...)
	subs = append(subs, b.allSubs...)
	b.mu.RUnlock()

	for _, sub := range subs {
		sub(event)
	}
}
