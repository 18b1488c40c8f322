package events

import (
	"time"
)

// Event is the base interface for all tactical events
type Event interface {
	// Type returns the event type as a string for filtering and logging
	Type() string
	// Timestamp returns when the event occurred
	Timestamp() time.Time
	// SessionID returns the engine session the event belongs to
	SessionID() string
	// Tick returns the simulation frame the event was raised on
	Tick() int
}

// BaseEvent provides common fields for all events
type BaseEvent struct {
	EventType string    `json:"type"`
	Time      time.Time `json:"timestamp"`
	Session   string    `json:"session_id"`
	Frame     int       `json:"tick"`
}

func newBase(eventType, session string, tick int) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Time:      time.Now(),
		Session:   session,
		Frame:     tick,
	}
}

// Type implements Event interface
func (e BaseEvent) Type() string {
	return e.EventType
}

// Timestamp implements Event interface
func (e BaseEvent) Timestamp() time.Time {
	return e.Time
}

// SessionID implements Event interface
func (e BaseEvent) SessionID() string {
	return e.Session
}

// Tick implements Event interface
func (e BaseEvent) Tick() int {
	return e.Frame
}

// EventHandler is a function that processes events
type EventHandler func(Event)

// Subscriber represents an entity that can receive events
type Subscriber interface {
	// ID returns a unique identifier for this subscriber
	ID() string
	// HandleEvent processes an event
	HandleEvent(Event)
	// InterestedIn returns true if the subscriber wants to receive this event type
	InterestedIn(eventType string) bool
}

// Publisher is the interface for publishing events
type Publisher interface {
	// Publish sends an event to all interested subscribers
	Publish(Event)
}

// Bus is the main event bus interface
type Bus interface {
	Publisher
	// Subscribe adds a new subscriber to the event bus
	Subscribe(Subscriber)
	// Unsubscribe removes a subscriber from the event bus
	Unsubscribe(subscriberID string)
	// SubscribeFunc adds a function handler for specific event types
	SubscribeFunc(eventType string, handler EventHandler) string
	// UnsubscribeFunc removes a handler by the id SubscribeFunc returned
	UnsubscribeFunc(handlerID string) bool
}

// Discard is a Publisher that drops every event
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}
