package events

import (
	"github.com/rs/zerolog"
)

// LogSink writes each event as one structured log line.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Publish(ev Event) {
	entry := s.Logger.Info()
	if ev.Type == SessionCancelled {
		entry = s.Logger.Debug()
	}
	entry = entry.
		Str("event", string(ev.Type)).
		Str("session_id", ev.SessionID).
		Str("kind", ev.KindName)
	if ev.Packets > 0 {
		entry = entry.Uint32("packets", ev.Packets)
	}
	entry.Msg("session event")
}
