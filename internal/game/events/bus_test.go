package events

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	received := false
	var receivedEvent Event

	id := bus.SubscribeFunc(TypeSquadCreated, func(e Event) {
		received = true
		receivedEvent = e
	})
	assert.Equal(t, "squad.created_func_1", id)

	bus.Publish(NewSquadCreatedEvent("session-1", 12, "main", 5, "attack"))

	require.True(t, received, "Event handler should have been called")
	assert.Equal(t, TypeSquadCreated, receivedEvent.Type())
	assert.Equal(t, "session-1", receivedEvent.SessionID())
	assert.Equal(t, 12, receivedEvent.Tick())
	assert.WithinDuration(t, time.Now(), receivedEvent.Timestamp(), time.Second)

	created, ok := receivedEvent.(*SquadCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "main", created.Squad)
	assert.Equal(t, 5, created.Priority)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	handler1Called := false
	handler2Called := false

	bus.SubscribeFunc(TypeUnitReleased, func(e Event) {
		handler1Called = true
	})
	bus.SubscribeFunc(TypeUnitReleased, func(e Event) {
		handler2Called = true
	})
	assert.Equal(t, 2, bus.FuncHandlerCount(TypeUnitReleased))

	bus.Publish(NewUnitReleasedEvent("s", 1, 7, "main"))

	assert.True(t, handler1Called, "Handler 1 should have been called")
	assert.True(t, handler2Called, "Handler 2 should have been called")
}

// TestSubscriber is a test implementation of Subscriber
type TestSubscriber struct {
	id              string
	interestedTypes map[string]bool
	receivedEvents  []Event
}

func (ts *TestSubscriber) ID() string {
	return ts.id
}

func (ts *TestSubscriber) HandleEvent(e Event) {
	ts.receivedEvents = append(ts.receivedEvents, e)
}

func (ts *TestSubscriber) InterestedIn(eventType string) bool {
	if ts.interestedTypes == nil {
		return true
	}
	return ts.interestedTypes[eventType]
}

func TestEventBusSubscriber(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	subscriber := &TestSubscriber{
		id: "test-subscriber",
		interestedTypes: map[string]bool{
			TypeSquadCreated: true,
			TypeSquadRemoved: true,
		},
	}

	bus.Subscribe(subscriber)
	assert.Equal(t, 1, bus.SubscriberCount())

	bus.Publish(NewSquadCreatedEvent("s", 0, "main", 1, "idle"))
	bus.Publish(NewUnitAssignedEvent("s", 0, 3, "main", ""))
	bus.Publish(NewSquadRemovedEvent("s", 0, "main", 1))

	require.Len(t, subscriber.receivedEvents, 2)
	assert.Equal(t, TypeSquadCreated, subscriber.receivedEvents[0].Type())
	assert.Equal(t, TypeSquadRemoved, subscriber.receivedEvents[1].Type())

	bus.Unsubscribe(subscriber.ID())
	bus.Publish(NewSquadCreatedEvent("s", 0, "other", 1, "idle"))

	assert.Len(t, subscriber.receivedEvents, 2)
	assert.Equal(t, 0, bus.SubscriberCount())
}

type panickingSubscriber struct{}

func (panickingSubscriber) ID() string               { return "boom" }
func (panickingSubscriber) HandleEvent(Event)        { panic("boom") }
func (panickingSubscriber) InterestedIn(string) bool { return true }

func TestEventBusRecoversFromPanics(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())
	bus.Subscribe(panickingSubscriber{})

	called := false
	bus.SubscribeFunc(TypeMembershipViolation, func(Event) { panic("handler") })
	bus.SubscribeFunc(TypeMembershipViolation, func(Event) { called = true })

	assert.NotPanics(t, func() {
		bus.Publish(NewMembershipViolationEvent("s", 3, 9, []string{"a", "b"}))
	})
	assert.True(t, called, "later handlers still run")
}

func TestEventConstructors(t *testing.T) {
	decision := NewRegroupDecisionEvent("s", 40, "main", true, -0.5, "losing", false, core.Position{X: 10, Y: 20})
	assert.Equal(t, TypeRegroupDecision, decision.Type())
	assert.True(t, decision.Retreat)
	assert.Equal(t, core.Position{X: 10, Y: 20}, decision.RegroupPoint)

	state := NewSquadStateChangedEvent("s", 41, "main", "attacking", "regrouping")
	assert.Equal(t, TypeSquadStateChanged, state.Type())
	assert.Equal(t, 41, state.Tick())

	budget := NewTickOverBudgetEvent("s", 42, 60*time.Millisecond, 42*time.Millisecond)
	assert.Equal(t, TypeTickOverBudget, budget.Type())
	assert.Greater(t, budget.Duration, budget.Budget)

	started := NewSessionStartedEvent("s", 64, 48, 3)
	assert.Equal(t, 0, started.Tick())
	assert.Equal(t, 3, started.Sectors)

	assert.NotPanics(t, func() { Discard.Publish(started) })
}

func TestEventBusDeliveryOrder(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	var order []string
	for _, id := range []string{"c", "a", "b"} {
		bus.Subscribe(&recordingSubscriber{id: id, log: &order})
	}
	bus.SubscribeFunc(TypeSquadCreated, func(Event) { order = append(order, "func") })

	bus.Publish(NewSquadCreatedEvent("s", 0, "main", 1, "attack"))
	assert.Equal(t, []string{"c", "a", "b", "func"}, order)

	// Re-subscribing an id keeps its slot
	bus.Subscribe(&recordingSubscriber{id: "a", log: &order})
	order = nil
	bus.Publish(NewSquadCreatedEvent("s", 1, "main", 1, "attack"))
	assert.Equal(t, []string{"c", "a", "b", "func"}, order)
	assert.Equal(t, 3, bus.SubscriberCount())
}

type recordingSubscriber struct {
	id  string
	log *[]string
}

func (r *recordingSubscriber) ID() string               { return r.id }
func (r *recordingSubscriber) HandleEvent(Event)        { *r.log = append(*r.log, r.id) }
func (r *recordingSubscriber) InterestedIn(string) bool { return true }

func TestEventBusUnsubscribeFunc(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	calls := 0
	first := bus.SubscribeFunc(TypeTickOverBudget, func(Event) { calls++ })
	bus.SubscribeFunc(TypeTickOverBudget, func(Event) { calls += 10 })

	assert.True(t, bus.UnsubscribeFunc(first))
	assert.False(t, bus.UnsubscribeFunc(first))
	assert.Equal(t, 1, bus.FuncHandlerCount(TypeTickOverBudget))

	bus.Publish(NewTickOverBudgetEvent("s", 1, time.Second, time.Millisecond))
	assert.Equal(t, 10, calls)

	// Ids are not reused
	assert.Equal(t, TypeTickOverBudget+"_func_3", bus.SubscribeFunc(TypeTickOverBudget, func(Event) {}))
}

func TestEventBusHandlersMaySubscribeWhilePublishing(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	late := 0
	bus.SubscribeFunc(TypeSquadRemoved, func(Event) {
		bus.SubscribeFunc(TypeSquadRemoved, func(Event) { late++ })
	})

	assert.NotPanics(t, func() { bus.Publish(NewSquadRemovedEvent("s", 0, "main", 0)) })
	assert.Equal(t, 0, late, "handlers added during a publish see the next event")

	bus.Publish(NewSquadRemovedEvent("s", 1, "main", 0))
	assert.Equal(t, 1, late)
}

func TestEventBusPublishedCounts(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())
	bus.Publish(NewUnitReleasedEvent("s", 1, 7, "main"))
	bus.Publish(NewUnitReleasedEvent("s", 2, 8, "main"))

	assert.Equal(t, 2, bus.Published(TypeUnitReleased))
	assert.Equal(t, 0, bus.Published(TypeSquadCreated))
}
