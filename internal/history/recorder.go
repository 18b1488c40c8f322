package history

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/tactician/internal/game/events"
)

// Recorder is an event bus subscriber that keeps recent squad decisions and
// state changes in a Buffer
type Recorder struct {
	id     string
	buffer *Buffer
	logger zerolog.Logger
}

func NewRecorder(id string, buffer *Buffer, logger zerolog.Logger) *Recorder {
	return &Recorder{
		id:     id,
		buffer: buffer,
		logger: logger.With().Str("component", "history_recorder").Logger(),
	}
}

func (r *Recorder) ID() string { return r.id }

func (r *Recorder) InterestedIn(eventType string) bool {
	return eventType == events.TypeRegroupDecision || eventType == events.TypeSquadStateChanged
}

func (r *Recorder) HandleEvent(e events.Event) {
	rec, ok := FromEvent(e)
	if !ok {
		return
	}
	if err := r.buffer.Add(rec); err != nil {
		r.logger.Debug().Err(err).Str("event_type", e.Type()).Msg("Record not kept")
	}
}

// Buffer returns the buffer records are kept in
func (r *Recorder) Buffer() *Buffer { return r.buffer }
