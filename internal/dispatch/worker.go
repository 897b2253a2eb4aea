package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/danmuck/radiotest/internal/events"
	"github.com/danmuck/radiotest/internal/observability"
	"github.com/danmuck/radiotest/internal/protocol"
	"github.com/danmuck/radiotest/internal/protocol/wire"
	"github.com/danmuck/radiotest/internal/radio"
	"github.com/danmuck/radiotest/internal/session"
	"github.com/rs/zerolog/log"
)

const DefaultQueueDepth = 64

var ErrWorkerStopped = errors.New("dispatch: worker stopped")

// Snapshot is the worker-owned state at one point in the queue.
type Snapshot struct {
	Config  radio.Config  `json:"config"`
	Session session.State `json:"session"`
}

type itemKind int

const (
	itemCommand itemKind = iota + 1
	itemCompletion
	itemSnapshot
)

type item struct {
	kind      itemKind
	req       wire.Request
	enqueued  time.Time
	reply     chan protocol.Status
	sessionID string
	snapshot  chan Snapshot
}

// Worker drains commands and engine completions from one queue in arrival order.
type Worker struct {
	dispatcher *Dispatcher
	queue      chan item
	done       chan struct{}
}

// NewWorker builds the dispatcher and session controller around engine.
// Run must be called for any submitted work to be processed.
func NewWorker(engine radio.Engine, cfg radio.Config, sink events.Sink, depth int) *Worker {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	w := &Worker{
		queue: make(chan item, depth),
		done:  make(chan struct{}),
	}
	ctrl := session.NewController(engine, w.enqueueCompletion, sink)
	w.dispatcher = NewDispatcher(cfg, ctrl)
	return w
}

// Run processes items until ctx is done. The active session is cancelled on exit.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.done)
	log.Info().Int("queue_depth", cap(w.queue)).Msg("dispatch worker started")
	for {
		select {
		case <-ctx.Done():
			w.dispatcher.session.Cancel()
			log.Info().Msg("dispatch worker stopped")
			return ctx.Err()
		case it := <-w.queue:
			w.process(it)
		}
	}
}

// Submit enqueues req and waits for its status.
func (w *Worker) Submit(ctx context.Context, req wire.Request) (protocol.Status, error) {
	reply := make(chan protocol.Status, 1)
	if err := w.enqueue(ctx, item{kind: itemCommand, req: req, enqueued: time.Now(), reply: reply}); err != nil {
		return 0, err
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-w.done:
		return 0, ErrWorkerStopped
	}
}

// Snapshot returns config and session state as seen after every item queued before it.
func (w *Worker) Snapshot(ctx context.Context) (Snapshot, error) {
	out := make(chan Snapshot, 1)
	if err := w.enqueue(ctx, item{kind: itemSnapshot, snapshot: out}); err != nil {
		return Snapshot{}, err
	}
	select {
	case s := <-out:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-w.done:
		return Snapshot{}, ErrWorkerStopped
	}
}

// Done is closed once Run returns.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) enqueue(ctx context.Context, it item) error {
	select {
	case w.queue <- it:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return ErrWorkerStopped
	}
}

// enqueueCompletion runs on engine goroutines. It never blocks the engine: a
// full queue hands the item to a goroutine that waits for room.
func (w *Worker) enqueueCompletion(sessionID string) {
	it := item{kind: itemCompletion, sessionID: sessionID}
	select {
	case w.queue <- it:
		return
	case <-w.done:
		return
	default:
	}
	go func() {
		select {
		case w.queue <- it:
		case <-w.done:
		}
	}()
}

func (w *Worker) process(it item) {
	switch it.kind {
	case itemCommand:
		status, _ := w.dispatcher.Handle(it.req.Command, it.req.Payload)
		observability.RecordCommand(it.req.Command.String(), status.String(), time.Since(it.enqueued))
		log.Debug().
			Uint32("seq", it.req.Sequence).
			Stringer("command", it.req.Command).
			Int32("status", int32(status)).
			Msg("command handled")
		it.reply <- status
	case itemCompletion:
		w.dispatcher.Complete(it.sessionID)
	case itemSnapshot:
		it.snapshot <- Snapshot{
			Config:  w.dispatcher.Config(),
			Session: w.dispatcher.Session(),
		}
	}
}
