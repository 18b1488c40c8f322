package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/tactician/internal/game/events"
)

// LoggerSubscriber writes tactical events to a structured log
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	// If no filter is set, interested in all events
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("session_id", event.SessionID()).
		Int("tick", event.Tick()).
		Logger()

	// Create the base event log
	var logEvent *zerolog.Event
	switch ls.logLevel {
	case zerolog.DebugLevel:
		logEvent = eventLogger.Debug()
	case zerolog.InfoLevel:
		logEvent = eventLogger.Info()
	case zerolog.WarnLevel:
		logEvent = eventLogger.Warn()
	case zerolog.ErrorLevel:
		logEvent = eventLogger.Error()
	default:
		logEvent = eventLogger.Info()
	}

	switch e := event.(type) {
	case *events.SessionStartedEvent:
		logEvent.
			Int("map_width", e.MapWidth).
			Int("map_height", e.MapHeight).
			Int("sectors", e.Sectors)

	case *events.SquadCreatedEvent:
		logEvent.
			Str("squad", e.Squad).
			Int("priority", e.Priority).
			Str("order", e.Order)

	case *events.SquadRemovedEvent:
		logEvent.
			Str("squad", e.Squad).
			Int("released", e.Released)

	case *events.UnitAssignedEvent:
		logEvent.
			Int("unit_id", e.UnitID).
			Str("squad", e.Squad).
			Str("from", e.From)

	case *events.UnitReleasedEvent:
		logEvent.
			Int("unit_id", e.UnitID).
			Str("squad", e.Squad)

	case *events.RegroupDecisionEvent:
		logEvent.
			Str("squad", e.Squad).
			Bool("retreat", e.Retreat).
			Float64("score", e.Score).
			Str("reason", e.Reason).
			Bool("held", e.Held)
		if e.Retreat {
			logEvent.
				Int("regroup_x", e.RegroupPoint.X).
				Int("regroup_y", e.RegroupPoint.Y)
		}

	case *events.SquadStateChangedEvent:
		logEvent.
			Str("squad", e.Squad).
			Str("from", e.From).
			Str("to", e.To)

	case *events.MembershipViolationEvent:
		logEvent.
			Int("unit_id", e.UnitID).
			Strs("squads", e.Squads)

	case *events.TickOverBudgetEvent:
		logEvent.
			Dur("duration", e.Duration).
			Dur("budget", e.Budget)
	case *events.PhaseChangedEvent:
		logEvent.
			Str("from", e.From).
			Str("to", e.To).
			Str("reason", e.Reason)
	}

	// In dev mode, also log the full event as JSON
	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	// Send the log
	logEvent.Msg("Tactical event")
}
