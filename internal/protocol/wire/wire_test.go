package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/radiotest/internal/protocol"
	"github.com/danmuck/radiotest/internal/protocol/frame"
	"github.com/danmuck/radiotest/internal/protocol/schema"
	"github.com/danmuck/radiotest/internal/protocol/tlv"
	"github.com/danmuck/radiotest/internal/testutil/testlog"
)

func TestRequestFrameRoundTrip(t *testing.T) {
	testlog.Start(t)

	value := int32(40)
	raw, err := EncodeRequestFrame(7, protocol.CmdSetStartChannel, &value)
	if err != nil {
		t.Fatalf("encode request: %v", err)
	}
	fr, err := frame.ReadFrame(bytes.NewReader(raw), frame.DefaultLimits())
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	req, err := DecodeRequestFrame(fr)
	if err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if req.Sequence != 7 || req.Command != protocol.CmdSetStartChannel {
		t.Fatalf("unexpected request: %+v", req)
	}
	got, ok, err := DecodeValue(req.Command, req.Payload)
	if err != nil || !ok || got != 40 {
		t.Fatalf("decode value: got=%d ok=%v err=%v", got, ok, err)
	}
}

func TestResponseFrameRoundTrip(t *testing.T) {
	testlog.Start(t)

	raw, err := EncodeResponseFrame(9, protocol.CmdSetEndChannel, protocol.StatusMalformedMessage)
	if err != nil {
		t.Fatalf("encode response: %v", err)
	}
	fr, err := frame.ReadFrame(bytes.NewReader(raw), frame.DefaultLimits())
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	resp, err := DecodeResponseFrame(fr)
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Sequence != 9 || resp.Command != protocol.CmdSetEndChannel || resp.Status != protocol.StatusMalformedMessage {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDecodeRequestFrameRejectsResponse(t *testing.T) {
	testlog.Start(t)

	fr := frame.Frame{Header: frame.Header{Flags: frame.FlagIsResponse}}
	if _, err := DecodeRequestFrame(fr); err == nil {
		t.Fatalf("expected response frame rejection")
	}
	if _, err := DecodeResponseFrame(frame.Frame{}); err == nil {
		t.Fatalf("expected request frame rejection")
	}
}

func TestDecodeValueMissingRequired(t *testing.T) {
	testlog.Start(t)

	_, _, err := DecodeValue(protocol.CmdSetTxPower, nil)
	var verr schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestDecodeValueOptionalAbsent(t *testing.T) {
	testlog.Start(t)

	_, ok, err := DecodeValue(protocol.CmdStartTxModCarrier, nil)
	if err != nil || ok {
		t.Fatalf("expected absent optional value: ok=%v err=%v", ok, err)
	}
}

func TestDecodeValueTruncatedPayload(t *testing.T) {
	testlog.Start(t)

	_, _, err := DecodeValue(protocol.CmdSetDataRate, []byte{0, 1, tlv.TypeI32})
	if !errors.Is(err, tlv.ErrShortFieldHeader) {
		t.Fatalf("expected ErrShortFieldHeader, got %v", err)
	}
}

func TestDecodeStatusMissing(t *testing.T) {
	testlog.Start(t)

	if _, err := DecodeStatus(nil); !errors.Is(err, protocol.ErrMissingStatus) {
		t.Fatalf("expected ErrMissingStatus, got %v", err)
	}
}
