// Package transport carries command frames between a controller and the
// dispatch worker over TCP or a serial line.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/danmuck/radiotest/internal/observability"
	"github.com/danmuck/radiotest/internal/protocol"
	"github.com/danmuck/radiotest/internal/protocol/frame"
	"github.com/danmuck/radiotest/internal/protocol/wire"
	"github.com/rs/zerolog/log"
)

// Submitter runs one request through the serialized command flow.
type Submitter interface {
	Submit(ctx context.Context, req wire.Request) (protocol.Status, error)
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// ServeConn reads request frames from rw and writes one response frame per
// request until the peer closes, a frame is malformed, or ctx is done.
// A clean close on a frame boundary returns nil.
func ServeConn(ctx context.Context, rw io.ReadWriter, sub Submitter, cfg Config, carrier string) error {
	for {
		if d, ok := rw.(readDeadliner); ok && cfg.ReadTimeout > 0 {
			_ = d.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		}
		f, err := frame.ReadFrame(rw, cfg.Limits)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			observability.RecordFrameError(carrier)
			return fmt.Errorf("transport: %s read: %w", carrier, err)
		}

		req, err := wire.DecodeRequestFrame(f)
		if err != nil {
			observability.RecordFrameError(carrier)
			log.Warn().Err(err).Str("carrier", carrier).Msg("transport: dropping frame")
			continue
		}

		status, err := sub.Submit(ctx, req)
		if err != nil {
			return err
		}

		out, err := wire.EncodeResponseFrame(req.Sequence, req.Command, status)
		if err != nil {
			return err
		}
		if d, ok := rw.(writeDeadliner); ok && cfg.WriteTimeout > 0 {
			_ = d.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
		}
		if _, err := rw.Write(out); err != nil {
			return fmt.Errorf("transport: %s write: %w", carrier, err)
		}
	}
}
