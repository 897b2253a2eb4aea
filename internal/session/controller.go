package session

import (
	"time"

	"github.com/danmuck/radiotest/internal/events"
	"github.com/danmuck/radiotest/internal/protocol"
	"github.com/danmuck/radiotest/internal/radio"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CompletionFunc hands a finished session id back to the owning worker.
// It is called from engine goroutines and must only enqueue.
type CompletionFunc func(sessionID string)

// StartOptions carries per-start parameters that are not part of radio.Config.
type StartOptions struct {
	Packets uint32
}

// State is a copy of the session slot.
type State struct {
	Active     bool      `json:"active"`
	Kind       string    `json:"kind,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	Packets    uint32    `json:"packets,omitempty"`
	Descriptor any       `json:"descriptor,omitempty"`
}

type Controller struct {
	engine   radio.Engine
	complete CompletionFunc
	sink     events.Sink
	now      func() time.Time
	newID    func() string

	active     bool
	descriptor radio.Descriptor
	id         string
	startedAt  time.Time
	packets    uint32
}

// NewController builds an idle controller. complete and sink may be nil.
func NewController(engine radio.Engine, complete CompletionFunc, sink events.Sink) *Controller {
	if sink == nil {
		sink = events.Fanout(nil)
	}
	return &Controller{
		engine:   engine,
		complete: complete,
		sink:     sink,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Start replaces whatever is running with a new session of kind built from cfg.
// The engine always sees Cancel before Start.
func (c *Controller) Start(kind radio.Kind, cfg radio.Config, opts StartOptions) protocol.Status {
	id := c.newID()
	build := radio.BuildOptions{Packets: opts.Packets}
	if opts.Packets > 0 && c.complete != nil {
		notify := c.complete
		build.OnComplete = func() { notify(id) }
	}
	d := radio.BuildDescriptor(kind, cfg, build)
	if d == nil {
		log.Warn().Int("kind", int(kind)).Msg("session start: unknown kind")
		return protocol.StatusMalformedMessage
	}

	c.Cancel()
	c.engine.Start(d)

	c.active = true
	c.descriptor = d
	c.id = id
	c.startedAt = c.now()
	c.packets = 0
	if mtx, ok := d.(radio.ModulatedTX); ok && mtx.Bounded() {
		c.packets = mtx.Packets
	}

	log.Info().
		Str("session_id", id).
		Stringer("kind", kind).
		Int32("mode", int32(d.RadioMode())).
		Uint32("packets", c.packets).
		Msg("session started")
	c.publish(events.SessionStarted)
	return protocol.StatusOK
}

// Cancel stops the engine and clears the slot. Safe to call when idle.
func (c *Controller) Cancel() {
	c.engine.Cancel()
	if !c.active {
		return
	}
	log.Info().Str("session_id", c.id).Stringer("kind", c.descriptor.Kind()).Msg("session cancelled")
	c.publish(events.SessionCancelled)
	c.clear()
}

// Complete marks the session idle when sessionID is still the active one.
// Completions for sessions that were cancelled or replaced are dropped.
func (c *Controller) Complete(sessionID string) bool {
	if !c.active || sessionID != c.id {
		log.Debug().
			Str("session_id", sessionID).
			Str("active_id", c.id).
			Msg("session completion ignored")
		return false
	}
	log.Info().
		Str("session_id", c.id).
		Uint32("packets", c.packets).
		Dur("elapsed", c.now().Sub(c.startedAt)).
		Msg("session completed")
	c.publish(events.SessionCompleted)
	c.clear()
	return true
}

func (c *Controller) Snapshot() State {
	if !c.active {
		return State{}
	}
	return State{
		Active:     true,
		Kind:       c.descriptor.Kind().String(),
		SessionID:  c.id,
		StartedAt:  c.startedAt,
		Packets:    c.packets,
		Descriptor: c.descriptor,
	}
}

func (c *Controller) publish(typ events.Type) {
	kind := c.descriptor.Kind()
	c.sink.Publish(events.Event{
		Type:      typ,
		SessionID: c.id,
		Kind:      kind,
		KindName:  kind.String(),
		Packets:   c.packets,
		At:        c.now(),
	})
}

func (c *Controller) clear() {
	c.active = false
	c.descriptor = nil
	c.id = ""
	c.startedAt = time.Time{}
	c.packets = 0
}
