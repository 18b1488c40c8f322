package subscribers_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/tactician/internal/game/core"
	"github.com/mitchelldurbincs/tactician/internal/game/events"
	"github.com/mitchelldurbincs/tactician/internal/game/events/subscribers"
)

func TestLoggerSubscriber(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Timestamp().Logger()

	logSub := subscribers.NewLoggerSubscriber("test-logger", logger, zerolog.InfoLevel)

	assert.Equal(t, "test-logger", logSub.ID())
	assert.True(t, logSub.InterestedIn(events.TypeSquadCreated))
	assert.True(t, logSub.InterestedIn(events.TypeRegroupDecision))
	assert.True(t, logSub.InterestedIn("any.event.type"))
}

func TestLoggerSubscriberEventLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logSub := subscribers.NewLoggerSubscriber("event-logger", logger, zerolog.InfoLevel)

	testCases := []struct {
		name  string
		event events.Event
		check func(t *testing.T, logLine map[string]interface{})
	}{
		{
			name:  "SquadCreatedEvent",
			event: events.NewSquadCreatedEvent("session-1", 3, "main", 5, "attack"),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "main", logLine["squad"])
				assert.Equal(t, float64(5), logLine["priority"])
				assert.Equal(t, "attack", logLine["order"])
			},
		},
		{
			name:  "RegroupDecisionEvent retreat",
			event: events.NewRegroupDecisionEvent("session-1", 3, "main", true, -0.25, "simulation lost", false, core.Position{X: 64, Y: 96}),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, true, logLine["retreat"])
				assert.Equal(t, -0.25, logLine["score"])
				assert.Equal(t, "simulation lost", logLine["reason"])
				assert.Equal(t, float64(64), logLine["regroup_x"])
				assert.Equal(t, float64(96), logLine["regroup_y"])
			},
		},
		{
			name:  "RegroupDecisionEvent attack",
			event: events.NewRegroupDecisionEvent("session-1", 3, "main", false, 0.5, "simulation won", true, core.Position{}),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, false, logLine["retreat"])
				assert.Equal(t, true, logLine["held"])
				assert.NotContains(t, logLine, "regroup_x")
			},
		},
		{
			name:  "MembershipViolationEvent",
			event: events.NewMembershipViolationEvent("session-1", 3, 42, []string{"alpha", "beta"}),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, float64(42), logLine["unit_id"])
				assert.Equal(t, []interface{}{"alpha", "beta"}, logLine["squads"])
			},
		},
		{
			name:  "SquadStateChangedEvent",
			event: events.NewSquadStateChangedEvent("session-1", 3, "main", "attacking", "regrouping"),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "attacking", logLine["from"])
				assert.Equal(t, "regrouping", logLine["to"])
			},
		},
		{
			name:  "TickOverBudgetEvent",
			event: events.NewTickOverBudgetEvent("session-1", 3, 50*time.Millisecond, 40*time.Millisecond),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, float64(50), logLine["duration"])
				assert.Equal(t, float64(40), logLine["budget"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf.Reset()
			logSub.HandleEvent(tc.event)

			var logLine map[string]interface{}
			err := json.Unmarshal(buf.Bytes(), &logLine)
			require.NoError(t, err, "Should be able to parse log output as JSON")

			assert.Equal(t, "info", logLine["level"])
			assert.Equal(t, "Tactical event", logLine["message"])
			assert.Equal(t, tc.event.Type(), logLine["event_type"])
			assert.Equal(t, "session-1", logLine["session_id"])
			assert.Equal(t, float64(3), logLine["tick"])

			tc.check(t, logLine)
		})
	}
}

func TestLoggerSubscriberWithFilter(t *testing.T) {
	var buf bytes.Buffer
	logSub := subscribers.NewLoggerSubscriber("filtered-logger", zerolog.New(&buf), zerolog.InfoLevel)
	logSub.SetEventFilter([]string{events.TypeMembershipViolation, events.TypeRegroupDecision})

	assert.True(t, logSub.InterestedIn(events.TypeMembershipViolation))
	assert.True(t, logSub.InterestedIn(events.TypeRegroupDecision))
	assert.False(t, logSub.InterestedIn(events.TypeUnitAssigned))

	logSub.SetEventFilter(nil)
	assert.True(t, logSub.InterestedIn(events.TypeUnitAssigned))
}

func TestLoggerSubscriberThroughBus(t *testing.T) {
	var buf bytes.Buffer
	logSub := subscribers.NewLoggerSubscriber("bus-logger", zerolog.New(&buf), zerolog.WarnLevel)
	logSub.SetEventFilter([]string{events.TypeMembershipViolation})

	bus := events.NewEventBus(zerolog.Nop())
	bus.Subscribe(logSub)

	bus.Publish(events.NewUnitAssignedEvent("s", 1, 4, "main", ""))
	assert.Empty(t, buf.String())

	bus.Publish(events.NewMembershipViolationEvent("s", 1, 4, []string{"a", "b"}))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), events.TypeMembershipViolation)
}

func TestLoggerSubscriberLogLevels(t *testing.T) {
	testCases := []struct {
		name     string
		logLevel zerolog.Level
		expected string
	}{
		{"Debug", zerolog.DebugLevel, "debug"},
		{"Info", zerolog.InfoLevel, "info"},
		{"Warn", zerolog.WarnLevel, "warn"},
		{"Error", zerolog.ErrorLevel, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf).Level(tc.logLevel)

			logSub := subscribers.NewLoggerSubscriber("level-logger", logger, tc.logLevel)
			logSub.HandleEvent(events.NewSessionStartedEvent("s", 64, 64, 2))

			var logLine map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &logLine))
			assert.Equal(t, tc.expected, logLine["level"])
		})
	}
}

func TestLoggerSubscriberDevelopmentMode(t *testing.T) {
	var buf bytes.Buffer
	logSub := subscribers.NewLoggerSubscriber("dev-logger", zerolog.New(&buf), zerolog.InfoLevel)
	logSub.SetDevMode(true)

	logSub.HandleEvent(events.NewUnitAssignedEvent("dev-session", 8, 17, "harass", "main"))

	var logLine map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logLine))

	eventData, ok := logLine["event_data"]
	require.True(t, ok, "event_data should be present")

	eventDataBytes, err := json.Marshal(eventData)
	require.NoError(t, err)
	assert.Contains(t, string(eventDataBytes), "unit.assigned")
	assert.Contains(t, string(eventDataBytes), "harass")
}
