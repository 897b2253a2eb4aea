// Package events carries session lifecycle notifications from the session
// controller to observers (logs, metrics, MQTT).
package events

import (
	"time"

	"github.com/danmuck/radiotest/internal/radio"
)

// Type names one session transition.
type Type string

const (
	SessionStarted   Type = "session.started"
	SessionCancelled Type = "session.cancelled"
	SessionCompleted Type = "session.completed"
)

// Event is one session transition.
type Event struct {
	Type      Type       `json:"type"`
	SessionID string     `json:"session_id"`
	Kind      radio.Kind `json:"-"`
	KindName  string     `json:"kind"`
	Packets   uint32     `json:"packets,omitempty"`
	At        time.Time  `json:"at"`
}

// Sink consumes events. Publish is called from the worker goroutine and must not block.
type Sink interface {
	Publish(ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev Event)

func (f SinkFunc) Publish(ev Event) {
	f(ev)
}

// Fanout publishes to every sink in order.
type Fanout []Sink

func (f Fanout) Publish(ev Event) {
	for _, s := range f {
		if s == nil {
			continue
		}
		s.Publish(ev)
	}
}
