// Package dispatch maps protocol commands onto the radio configuration and
// the session controller, and serializes them through a single worker.
package dispatch

import (
	"github.com/danmuck/radiotest/internal/protocol"
	"github.com/danmuck/radiotest/internal/protocol/wire"
	"github.com/danmuck/radiotest/internal/radio"
	"github.com/danmuck/radiotest/internal/session"
	"github.com/rs/zerolog/log"
)

type handlerFunc func(payload []byte) protocol.Status

// Dispatcher owns the radio configuration. Not safe for concurrent use.
type Dispatcher struct {
	cfg      radio.Config
	session  *session.Controller
	handlers map[protocol.Command]handlerFunc
}

func NewDispatcher(cfg radio.Config, ctrl *session.Controller) *Dispatcher {
	d := &Dispatcher{cfg: cfg, session: ctrl}
	d.handlers = map[protocol.Command]handlerFunc{
		protocol.CmdSetTxPower:          d.setter(protocol.CmdSetTxPower, (*radio.Config).SetTxPower),
		protocol.CmdSetTxPattern:        d.setter(protocol.CmdSetTxPattern, (*radio.Config).SetPattern),
		protocol.CmdSetStartChannel:     d.setter(protocol.CmdSetStartChannel, (*radio.Config).SetChannelStart),
		protocol.CmdSetEndChannel:       d.setter(protocol.CmdSetEndChannel, (*radio.Config).SetChannelEnd),
		protocol.CmdSetTimeOnChannel:    d.setter(protocol.CmdSetTimeOnChannel, (*radio.Config).SetDelayMS),
		protocol.CmdSetDataRate:         d.setter(protocol.CmdSetDataRate, setMode),
		protocol.CmdCancel:              d.cancel,
		protocol.CmdStartTxCarrier:      d.start(radio.KindUnmodulatedTX),
		protocol.CmdStartTxModCarrier:   d.startModCarrier,
		protocol.CmdStartTxDCModCarrier: d.startDCModCarrier,
		protocol.CmdStartRxSweep:        d.start(radio.KindRXSweep),
		protocol.CmdStartTxSweep:        d.start(radio.KindTXSweep),
		protocol.CmdStartRx:             d.start(radio.KindRX),
	}
	return d
}

// Handle runs one command and returns its status and the encoded status payload.
func (d *Dispatcher) Handle(cmd protocol.Command, payload []byte) (protocol.Status, []byte) {
	status := protocol.StatusUnknownCommand
	if h, ok := d.handlers[cmd]; ok {
		status = h(payload)
	} else {
		log.Warn().Uint16("command", uint16(cmd)).Msg("dispatch: unknown command")
	}
	return status, wire.EncodeStatus(status)
}

// Config returns a copy of the held configuration.
func (d *Dispatcher) Config() radio.Config {
	return d.cfg
}

func (d *Dispatcher) Session() session.State {
	return d.session.Snapshot()
}

// Complete relays an engine completion to the session controller.
func (d *Dispatcher) Complete(sessionID string) bool {
	return d.session.Complete(sessionID)
}

func (d *Dispatcher) setter(cmd protocol.Command, set func(*radio.Config, int32) error) handlerFunc {
	return func(payload []byte) protocol.Status {
		v, ok := d.requireValue(cmd, payload)
		if !ok {
			return protocol.StatusMalformedMessage
		}
		if err := set(&d.cfg, v); err != nil {
			log.Debug().Err(err).Stringer("command", cmd).Msg("dispatch: rejected value")
			return protocol.StatusMalformedMessage
		}
		log.Debug().Stringer("command", cmd).Int32("value", v).Msg("dispatch: config updated")
		return protocol.StatusOK
	}
}

func (d *Dispatcher) cancel([]byte) protocol.Status {
	d.session.Cancel()
	return protocol.StatusOK
}

func (d *Dispatcher) start(kind radio.Kind) handlerFunc {
	return func([]byte) protocol.Status {
		return d.session.Start(kind, d.cfg, session.StartOptions{})
	}
}

// A packet count that is absent, undecodable or not positive runs the carrier
// until cancelled.
func (d *Dispatcher) startModCarrier(payload []byte) protocol.Status {
	opts := session.StartOptions{}
	v, ok, err := wire.DecodeValue(protocol.CmdStartTxModCarrier, payload)
	switch {
	case err != nil:
		log.Debug().Err(err).Msg("dispatch: packet count not decodable, running unbounded")
	case ok && v > 0:
		opts.Packets = uint32(v)
	}
	return d.session.Start(radio.KindModulatedTX, d.cfg, opts)
}

func (d *Dispatcher) startDCModCarrier(payload []byte) protocol.Status {
	v, ok := d.requireValue(protocol.CmdStartTxDCModCarrier, payload)
	if !ok {
		return protocol.StatusMalformedMessage
	}
	if err := d.cfg.SetDutyCycle(v); err != nil {
		log.Debug().Err(err).Msg("dispatch: rejected duty cycle")
		return protocol.StatusMalformedMessage
	}
	return d.session.Start(radio.KindModulatedTXDutyCycle, d.cfg, session.StartOptions{})
}

func (d *Dispatcher) requireValue(cmd protocol.Command, payload []byte) (int32, bool) {
	v, ok, err := wire.DecodeValue(cmd, payload)
	if err != nil {
		log.Debug().Err(err).Stringer("command", cmd).Msg("dispatch: malformed payload")
		return 0, false
	}
	if !ok {
		log.Debug().Stringer("command", cmd).Msg("dispatch: missing value")
		return 0, false
	}
	return v, true
}

func setMode(c *radio.Config, v int32) error {
	c.SetMode(v)
	return nil
}
