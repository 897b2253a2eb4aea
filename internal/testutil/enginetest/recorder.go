// Package enginetest provides a recording radio.Engine for tests.
package enginetest

import (
	"sync"

	"github.com/danmuck/radiotest/internal/radio"
)

const (
	OpStart  = "start"
	OpCancel = "cancel"
)

// Recorder records every engine call in order.
type Recorder struct {
	mu      sync.Mutex
	ops     []string
	started []radio.Descriptor
}

func (r *Recorder) Start(d radio.Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, OpStart)
	r.started = append(r.started, d)
}

func (r *Recorder) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, OpCancel)
}

// Ops returns a copy of the call sequence.
func (r *Recorder) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

// Started returns a copy of every started descriptor.
func (r *Recorder) Started() []radio.Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]radio.Descriptor(nil), r.started...)
}

// Last returns the most recently started descriptor.
func (r *Recorder) Last() (radio.Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.started) == 0 {
		return nil, false
	}
	return r.started[len(r.started)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
	r.started = nil
}
