// Package wire encodes and decodes request/response frames for the radio
// test command set.
package wire

import (
	"bytes"
	"fmt"

	"github.com/danmuck/radiotest/internal/protocol"
	"github.com/danmuck/radiotest/internal/protocol/frame"
	"github.com/danmuck/radiotest/internal/protocol/schema"
	"github.com/danmuck/radiotest/internal/protocol/tlv"
)

// Request is one decoded command frame. Payload stays raw so the dispatcher
// owns parameter decoding and its error mapping.
type Request struct {
	Sequence uint32
	Command  protocol.Command
	Payload  []byte
}

// Response is one decoded response frame.
type Response struct {
	Sequence uint32
	Command  protocol.Command
	Status   protocol.Status
}

// EncodeValue builds the payload for a command carrying one integer.
func EncodeValue(v int32) []byte {
	return tlv.EncodeFields([]tlv.Field{tlv.NewInt32(protocol.FieldValue, v)})
}

// DecodeValue extracts the integer parameter for cmd from payload.
// ok is false when the command takes no value or an optional value is absent.
func DecodeValue(cmd protocol.Command, payload []byte) (v int32, ok bool, err error) {
	fields, err := tlv.DecodeFields(payload)
	if err != nil {
		return 0, false, err
	}
	if err := schema.Validate(cmd, fields); err != nil {
		return 0, false, err
	}
	param, _ := schema.ParamFor(cmd)
	if param == schema.ParamNone {
		return 0, false, nil
	}
	f, found := tlv.GetField(fields, protocol.FieldValue)
	if !found {
		return 0, false, nil
	}
	v, err = f.Int()
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// EncodeStatus builds the response payload.
func EncodeStatus(status protocol.Status) []byte {
	return tlv.EncodeFields([]tlv.Field{tlv.NewInt32(protocol.FieldStatus, int32(status))})
}

// DecodeStatus extracts the status from a response payload.
func DecodeStatus(payload []byte) (protocol.Status, error) {
	fields, err := tlv.DecodeFields(payload)
	if err != nil {
		return 0, err
	}
	f, ok := tlv.GetField(fields, protocol.FieldStatus)
	if !ok {
		return 0, protocol.ErrMissingStatus
	}
	v, err := f.Int()
	if err != nil {
		return 0, err
	}
	return protocol.Status(v), nil
}

// EncodeRequestFrame frames one command. value may be nil for commands without a parameter.
func EncodeRequestFrame(seq uint32, cmd protocol.Command, value *int32) ([]byte, error) {
	var payload []byte
	if value != nil {
		payload = EncodeValue(*value)
	}
	return encode(frame.Frame{
		Header:  frame.Header{Sequence: seq, Command: uint16(cmd)},
		Payload: payload,
	})
}

// DecodeRequestFrame turns a read frame into a Request.
func DecodeRequestFrame(f frame.Frame) (Request, error) {
	if f.Header.IsResponse() {
		return Request{}, fmt.Errorf("wire: frame seq=%d is a response", f.Header.Sequence)
	}
	return Request{
		Sequence: f.Header.Sequence,
		Command:  protocol.Command(f.Header.Command),
		Payload:  f.Payload,
	}, nil
}

// EncodeResponseFrame frames one status response echoing seq and cmd.
func EncodeResponseFrame(seq uint32, cmd protocol.Command, status protocol.Status) ([]byte, error) {
	return encode(frame.Frame{
		Header: frame.Header{
			Sequence: seq,
			Command:  uint16(cmd),
			Flags:    frame.FlagIsResponse,
		},
		Payload: EncodeStatus(status),
	})
}

// DecodeResponseFrame turns a read frame into a Response.
func DecodeResponseFrame(f frame.Frame) (Response, error) {
	if !f.Header.IsResponse() {
		return Response{}, fmt.Errorf("wire: frame seq=%d is not a response", f.Header.Sequence)
	}
	status, err := DecodeStatus(f.Payload)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Sequence: f.Header.Sequence,
		Command:  protocol.Command(f.Header.Command),
		Status:   status,
	}, nil
}

func encode(f frame.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := frame.WriteFrame(&buf, f, frame.DefaultLimits()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
