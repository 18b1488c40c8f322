package events

import (
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

type funcEntry struct {
	id      string
	handler EventHandler
}

// EventBus delivers events synchronously on the publishing goroutine.
// Subscribers and handlers run in the order they were added, so a tick
// produces the same log and history output every run.
type EventBus struct {
	mu           sync.RWMutex
	subscribers  []Subscriber
	funcHandlers map[string][]funcEntry
	nextFuncID   map[string]int
	published    map[string]int
	logger       zerolog.Logger
}

func NewEventBus(logger zerolog.Logger) *EventBus {
	return &EventBus{
		funcHandlers: make(map[string][]funcEntry),
		nextFuncID:   make(map[string]int),
		published:    make(map[string]int),
		logger:       logger.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe adds a subscriber. A subscriber with the same ID is replaced in
// place.
func (eb *EventBus) Subscribe(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if i := eb.indexOf(subscriber.ID()); i >= 0 {
		eb.subscribers[i] = subscriber
	} else {
		eb.subscribers = append(eb.subscribers, subscriber)
	}
	eb.logger.Debug().
		Str("subscriber_id", subscriber.ID()).
		Msg("Subscriber added to event bus")
}

func (eb *EventBus) Unsubscribe(subscriberID string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if i := eb.indexOf(subscriberID); i >= 0 {
		eb.subscribers = append(eb.subscribers[:i], eb.subscribers[i+1:]...)
		eb.logger.Debug().
			Str("subscriber_id", subscriberID).
			Msg("Subscriber removed from event bus")
	}
}

func (eb *EventBus) indexOf(id string) int {
	for i, s := range eb.subscribers {
		if s.ID() == id {
			return i
		}
	}
	return -1
}

// SubscribeFunc adds a handler for one event type and returns its id.
// Ids are never reused for a type, even after UnsubscribeFunc.
func (eb *EventBus) SubscribeFunc(eventType string, handler EventHandler) string {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextFuncID[eventType]++
	id := eventType + "_func_" + strconv.Itoa(eb.nextFuncID[eventType])
	eb.funcHandlers[eventType] = append(eb.funcHandlers[eventType], funcEntry{id: id, handler: handler})

	eb.logger.Debug().
		Str("event_type", eventType).
		Str("handler_id", id).
		Msg("Function handler added to event bus")
	return id
}

// UnsubscribeFunc removes a handler added by SubscribeFunc. It reports
// whether the id was found.
func (eb *EventBus) UnsubscribeFunc(handlerID string) bool {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for eventType, entries := range eb.funcHandlers {
		for i, e := range entries {
			if e.id != handlerID {
				continue
			}
			eb.funcHandlers[eventType] = append(entries[:i], entries[i+1:]...)
			eb.logger.Debug().Str("handler_id", handlerID).Msg("Function handler removed from event bus")
			return true
		}
	}
	return false
}

// Publish delivers event to every interested subscriber, then to the
// handlers registered for its type. A panicking receiver is logged and
// skipped; the rest still run.
func (eb *EventBus) Publish(event Event) {
	eventType := event.Type()

	eb.mu.Lock()
	eb.published[eventType]++
	subscribers := append([]Subscriber(nil), eb.subscribers...)
	handlers := append([]funcEntry(nil), eb.funcHandlers[eventType]...)
	eb.mu.Unlock()

	if e := eb.logger.Trace(); e.Enabled() {
		e.Str("event_type", eventType).
			Str("session_id", event.SessionID()).
			Int("tick", event.Tick()).
			Msg("Publishing event")
	}

	for _, s := range subscribers {
		if s.InterestedIn(eventType) {
			eb.deliver(eventType, s.ID(), func() { s.HandleEvent(event) })
		}
	}
	for _, h := range handlers {
		eb.deliver(eventType, h.id, func() { h.handler(event) })
	}
}

func (eb *EventBus) deliver(eventType, receiver string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			eb.logger.Error().
				Str("receiver", receiver).
				Str("event_type", eventType).
				Interface("panic", r).
				Msg("Event receiver panicked")
		}
	}()
	fn()
}

// SubscriberCount returns the number of subscribers for debugging
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// FuncHandlerCount returns the number of function handlers for a specific event type
func (eb *EventBus) FuncHandlerCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.funcHandlers[eventType])
}

// Published returns how many events of a type have been published
func (eb *EventBus) Published(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return eb.published[eventType]
}
