package protocol

import (
	"errors"
	"testing"
)

func TestParseCommandByNameAndID(t *testing.T) {
	cmd, err := ParseCommand("start_rx_sweep")
	if err != nil || cmd != CmdStartRxSweep {
		t.Fatalf("parse by name: cmd=%s err=%v", cmd, err)
	}
	cmd, err = ParseCommand("0x0a")
	if err != nil || cmd != CmdStartTxDCModCarrier {
		t.Fatalf("parse by hex id: cmd=%s err=%v", cmd, err)
	}
	cmd, err = ParseCommand("6")
	if err != nil || cmd != CmdCancel {
		t.Fatalf("parse by decimal id: cmd=%s err=%v", cmd, err)
	}
}

func TestParseCommandUnknown(t *testing.T) {
	for _, raw := range []string{"", "reboot", "0x0e", "0"} {
		if _, err := ParseCommand(raw); !errors.Is(err, ErrUnknownCommand) {
			t.Fatalf("expected ErrUnknownCommand for %q, got %v", raw, err)
		}
	}
}

func TestStatusString(t *testing.T) {
	if StatusOK.String() != "ok" || StatusMalformedMessage.String() != "malformed_message" {
		t.Fatalf("unexpected status names")
	}
	if Status(-5).String() != "status(-5)" {
		t.Fatalf("unexpected fallback: %s", Status(-5))
	}
}
