package main

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/radiotest/internal/protocol"
	"github.com/danmuck/radiotest/internal/protocol/frame"
	"github.com/danmuck/radiotest/internal/protocol/wire"
)

func TestParseArgs(t *testing.T) {
	opts, err := parseArgs([]string{"-cmd", "set_start_channel", "-value", "40", "-seq", "9"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.command != protocol.CmdSetStartChannel || opts.value == nil || *opts.value != 40 || opts.seq != 9 {
		t.Fatalf("unexpected options: %+v", opts)
	}

	opts, err = parseArgs([]string{"-cmd", "0x0b"})
	if err != nil || opts.command != protocol.CmdStartRxSweep || opts.value != nil {
		t.Fatalf("unexpected numeric parse: %+v err=%v", opts, err)
	}

	if _, err := parseArgs(nil); err == nil {
		t.Fatalf("expected -cmd required")
	}
	if _, err := parseArgs([]string{"-cmd", "warp"}); !errors.Is(err, protocol.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
	if _, err := parseArgs([]string{"-cmd", "cancel", "-value", "x"}); err == nil {
		t.Fatalf("expected bad value rejected")
	}
}

func TestRoundTripAgainstPeer(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	_ = client.SetDeadline(time.Now().Add(2 * time.Second))

	go func() {
		defer server.Close()
		f, err := frame.ReadFrame(server, frame.DefaultLimits())
		if err != nil {
			return
		}
		req, err := wire.DecodeRequestFrame(f)
		if err != nil {
			return
		}
		out, _ := wire.EncodeResponseFrame(req.Sequence, req.Command, protocol.StatusMalformedMessage)
		_, _ = server.Write(out)
	}()

	v := int32(90)
	resp, err := roundTrip(client, options{command: protocol.CmdSetStartChannel, value: &v, seq: 4})
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if resp.Status != protocol.StatusMalformedMessage || resp.Sequence != 4 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	var buf bytes.Buffer
	printResponse(&buf, resp)
	if !strings.Contains(buf.String(), "status=-77 (malformed_message)") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
