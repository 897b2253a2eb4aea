package transport

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

const carrierSerial = "serial"

// SerialConfig selects the device port carrying frames.
type SerialConfig struct {
	Port      string
	BaudRate  int
	Reconnect bool
}

type openFunc func(path string, mode *serial.Mode) (io.ReadWriteCloser, error)

func openSerial(path string, mode *serial.Mode) (io.ReadWriteCloser, error) {
	return serial.Open(path, mode)
}

// SerialServer serves frames over one serial port, reopening it after errors
// when Reconnect is set.
type SerialServer struct {
	sub    Submitter
	cfg    Config
	serial SerialConfig
	open   openFunc
	rng    *rand.Rand
}

func NewSerialServer(sub Submitter, cfg Config, sc SerialConfig) *SerialServer {
	if sc.BaudRate <= 0 {
		sc.BaudRate = 115200
	}
	return &SerialServer{
		sub:    sub,
		cfg:    cfg,
		serial: sc,
		open:   openSerial,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run serves until ctx is done, or until the first failure when Reconnect is off.
func (s *SerialServer) Run(ctx context.Context) error {
	path := strings.TrimSpace(s.serial.Port)
	if path == "" {
		return fmt.Errorf("transport: serial port required")
	}
	attempt := 0
	for {
		err := s.serveOnce(ctx, path)
		if ctx.Err() != nil {
			return nil
		}
		if !s.serial.Reconnect {
			return err
		}
		attempt++
		if err == nil {
			attempt = 1
		}
		delay := NextBackoffDelay(s.cfg.Backoff, attempt, s.rng)
		log.Warn().
			Err(err).
			Str("port", path).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("transport.serial reconnecting")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

func (s *SerialServer) serveOnce(ctx context.Context, path string) error {
	mode := &serial.Mode{
		BaudRate: s.serial.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := s.open(path, mode)
	if err != nil {
		return fmt.Errorf("transport: open %s: %w", path, err)
	}
	log.Info().Str("port", path).Int("baud", s.serial.BaudRate).Msg("transport.serial opened")

	portCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-portCtx.Done()
		_ = port.Close()
	}()

	return ServeConn(portCtx, port, s.sub, s.cfg, carrierSerial)
}
