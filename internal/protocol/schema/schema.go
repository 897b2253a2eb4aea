package schema

import (
	"fmt"

	"github.com/danmuck/radiotest/internal/protocol"
	"github.com/danmuck/radiotest/internal/protocol/tlv"
	"github.com/rs/zerolog/log"
)

// Param describes whether a command carries the value field.
type Param int

const (
	ParamNone Param = iota
	ParamRequired
	ParamOptional
)

func (p Param) String() string {
	switch p {
	case ParamRequired:
		return "required"
	case ParamOptional:
		return "optional"
	default:
		return "none"
	}
}

type ValidationError struct {
	Command protocol.Command
	FieldID uint16
	Reason  string
}

func (e ValidationError) Error() string {
	if e.FieldID == 0 {
		return fmt.Sprintf("schema: command=%s: %s", e.Command, e.Reason)
	}
	return fmt.Sprintf("schema: command=%s field=%d: %s", e.Command, e.FieldID, e.Reason)
}

var requirements = map[protocol.Command]Param{
	protocol.CmdSetTxPower:          ParamRequired,
	protocol.CmdSetTxPattern:        ParamRequired,
	protocol.CmdSetStartChannel:     ParamRequired,
	protocol.CmdSetEndChannel:       ParamRequired,
	protocol.CmdSetTimeOnChannel:    ParamRequired,
	protocol.CmdCancel:              ParamNone,
	protocol.CmdSetDataRate:         ParamRequired,
	protocol.CmdStartTxCarrier:      ParamNone,
	protocol.CmdStartTxModCarrier:   ParamOptional,
	protocol.CmdStartTxDCModCarrier: ParamRequired,
	protocol.CmdStartRxSweep:        ParamNone,
	protocol.CmdStartTxSweep:        ParamNone,
	protocol.CmdStartRx:             ParamNone,
}

// ParamFor returns the value-field requirement for cmd.
func ParamFor(cmd protocol.Command) (Param, bool) {
	p, ok := requirements[cmd]
	return p, ok
}

// Validate enforces the value-field requirement for a command.
// Unknown fields are ignored, and so is a value on commands that take none.
func Validate(cmd protocol.Command, fields []tlv.Field) error {
	param, ok := requirements[cmd]
	if !ok {
		log.Debug().Uint16("command", uint16(cmd)).Msg("schema.Validate unknown command")
		return ValidationError{Command: cmd, Reason: "unknown command"}
	}
	if param == ParamNone {
		return nil
	}
	f, found := tlv.GetField(fields, protocol.FieldValue)
	if !found {
		if param == ParamOptional {
			return nil
		}
		log.Debug().Stringer("command", cmd).Msg("schema.Validate missing value field")
		return ValidationError{Command: cmd, FieldID: protocol.FieldValue, Reason: "missing required field"}
	}
	if !tlv.IsInteger(f.Type) {
		log.Debug().
			Stringer("command", cmd).
			Uint8("type", f.Type).
			Msg("schema.Validate type mismatch")
		return ValidationError{Command: cmd, FieldID: protocol.FieldValue, Reason: "type mismatch"}
	}
	return nil
}
