package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Command identifies one request kind on the wire.
type Command uint16

const (
	CmdSetTxPower          Command = 0x01
	CmdSetTxPattern        Command = 0x02
	CmdSetStartChannel     Command = 0x03
	CmdSetEndChannel       Command = 0x04
	CmdSetTimeOnChannel    Command = 0x05
	CmdCancel              Command = 0x06
	CmdSetDataRate         Command = 0x07
	CmdStartTxCarrier      Command = 0x08
	CmdStartTxModCarrier   Command = 0x09
	CmdStartTxDCModCarrier Command = 0x0A
	CmdStartRxSweep        Command = 0x0B
	CmdStartTxSweep        Command = 0x0C
	CmdStartRx             Command = 0x0D
)

var commandNames = map[Command]string{
	CmdSetTxPower:          "set_tx_power",
	CmdSetTxPattern:        "set_tx_pattern",
	CmdSetStartChannel:     "set_start_channel",
	CmdSetEndChannel:       "set_end_channel",
	CmdSetTimeOnChannel:    "set_time_on_channel",
	CmdCancel:              "cancel",
	CmdSetDataRate:         "set_data_rate",
	CmdStartTxCarrier:      "start_tx_carrier",
	CmdStartTxModCarrier:   "start_tx_mod_carrier",
	CmdStartTxDCModCarrier: "start_tx_dc_mod_carrier",
	CmdStartRxSweep:        "start_rx_sweep",
	CmdStartTxSweep:        "start_tx_sweep",
	CmdStartRx:             "start_rx",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(0x%02x)", uint16(c))
}

// Known reports whether c is part of the command set.
func (c Command) Known() bool {
	_, ok := commandNames[c]
	return ok
}

// ParseCommand accepts a command name ("start_rx") or a numeric id ("0x0d", "13").
func ParseCommand(raw string) (Command, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for cmd, name := range commandNames {
		if name == s {
			return cmd, nil
		}
	}
	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, raw)
	}
	cmd := Command(n)
	if !cmd.Known() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, raw)
	}
	return cmd, nil
}

// Status is the signed response code. Zero is success, negative values are errors.
type Status int32

const (
	StatusOK               Status = 0
	StatusUnknownCommand   Status = -45
	StatusMalformedMessage Status = -77
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMalformedMessage:
		return "malformed_message"
	case StatusUnknownCommand:
		return "unknown_command"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Payload field ids.
const (
	FieldValue  uint16 = 1
	FieldStatus uint16 = 2
)
