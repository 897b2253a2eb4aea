package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/radiotest/internal/protocol"
	"github.com/danmuck/radiotest/internal/protocol/frame"
	"github.com/danmuck/radiotest/internal/protocol/wire"
)

var ErrSequenceMismatch = errors.New("radiotestctl: response sequence mismatch")

type options struct {
	addr    string
	command protocol.Command
	value   *int32
	seq     uint32
	timeout time.Duration
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "radiotestctl: %v\n", err)
		os.Exit(2)
	}
	resp, err := send(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "radiotestctl: %v\n", err)
		os.Exit(1)
	}
	printResponse(os.Stdout, resp)
	if resp.Status != protocol.StatusOK {
		os.Exit(3)
	}
}

func parseArgs(args []string) (options, error) {
	fs := flag.NewFlagSet("radiotestctl", flag.ContinueOnError)
	addr := fs.String("addr", "127.0.0.1:7400", "radiotestd frame listener")
	cmd := fs.String("cmd", "", "command name (start_rx) or id (0x0d)")
	value := fs.String("value", "", "optional integer parameter")
	seq := fs.Uint("seq", 1, "request sequence number")
	timeout := fs.Duration("timeout", 3*time.Second, "round-trip timeout")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if strings.TrimSpace(*cmd) == "" {
		return options{}, fmt.Errorf("-cmd is required")
	}
	command, err := protocol.ParseCommand(*cmd)
	if err != nil {
		return options{}, err
	}
	out := options{
		addr:    strings.TrimSpace(*addr),
		command: command,
		seq:     uint32(*seq),
		timeout: *timeout,
	}
	if raw := strings.TrimSpace(*value); raw != "" {
		n, err := strconv.ParseInt(raw, 0, 32)
		if err != nil {
			return options{}, fmt.Errorf("-value: %w", err)
		}
		v := int32(n)
		out.value = &v
	}
	return out, nil
}

func send(opts options) (wire.Response, error) {
	conn, err := net.DialTimeout("tcp", opts.addr, opts.timeout)
	if err != nil {
		return wire.Response{}, err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(opts.timeout))
	return roundTrip(conn, opts)
}

func roundTrip(rw io.ReadWriter, opts options) (wire.Response, error) {
	out, err := wire.EncodeRequestFrame(opts.seq, opts.command, opts.value)
	if err != nil {
		return wire.Response{}, err
	}
	if _, err := rw.Write(out); err != nil {
		return wire.Response{}, err
	}
	f, err := frame.ReadFrame(rw, frame.DefaultLimits())
	if err != nil {
		return wire.Response{}, err
	}
	resp, err := wire.DecodeResponseFrame(f)
	if err != nil {
		return wire.Response{}, err
	}
	if resp.Sequence != opts.seq {
		return wire.Response{}, fmt.Errorf("%w: sent %d got %d", ErrSequenceMismatch, opts.seq, resp.Sequence)
	}
	return resp, nil
}

func printResponse(w io.Writer, resp wire.Response) {
	fmt.Fprintf(w, "seq=%d command=%s status=%d (%s)\n", resp.Sequence, resp.Command, int32(resp.Status), resp.Status)
}
