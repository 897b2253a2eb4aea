// Package service wires the radiotest daemon: engine, dispatch worker,
// frame carriers, HTTP surface and event sinks.
package service

import (
	"context"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/danmuck/radiotest/internal/auth"
	"github.com/danmuck/radiotest/internal/config"
	"github.com/danmuck/radiotest/internal/dispatch"
	"github.com/danmuck/radiotest/internal/engine"
	"github.com/danmuck/radiotest/internal/events"
	"github.com/danmuck/radiotest/internal/keystore"
	"github.com/danmuck/radiotest/internal/observability"
	"github.com/danmuck/radiotest/internal/protocol/frame"
	"github.com/danmuck/radiotest/internal/radio"
	"github.com/danmuck/radiotest/internal/server"
	"github.com/danmuck/radiotest/internal/transport"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const heartbeatInterval = 30 * time.Second

// Service runs the daemon until its context is cancelled.
type Service struct {
	cfg    config.ServiceConfig
	engine *engine.Simulator
	worker *dispatch.Worker
	http   *server.Server
	tcp    *transport.TCPServer
	serial *transport.SerialServer
	keys   *keystore.Store
	mqtt   mqtt.Client
}

// New builds every component from cfg without starting any of them.
func New(cfg config.ServiceConfig) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	observability.RegisterMetrics()
	s := &Service{cfg: cfg}

	sinks := events.Fanout{
		events.LogSink{Logger: observability.ComponentLogger(cfg.DeviceID, "session")},
		events.MetricsSink{},
	}
	if strings.TrimSpace(cfg.MQTTBroker) != "" {
		sink, client, err := events.DialMQTT(events.MQTTConfig{
			Broker:   cfg.MQTTBroker,
			Topic:    strings.TrimRight(cfg.MQTTTopic, "/") + "/" + cfg.DeviceID,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
		s.mqtt = client
	}

	if strings.TrimSpace(cfg.KeystoreRoot) != "" {
		keys, err := keystore.Open(cfg.KeystoreRoot)
		if err != nil {
			return nil, err
		}
		s.keys = keys
	}

	s.engine = engine.NewSimulator(cfg.PacketInterval)
	s.worker = dispatch.NewWorker(s.engine, radio.DefaultConfig(), sinks, cfg.QueueDepth)

	tcfg := transport.DefaultConfig()
	tcfg.ReadTimeout = cfg.ReadTimeout
	tcfg.Limits = frame.Limits{MaxPayloadBytes: uint16(cfg.MaxPayloadBytes)}
	if cfg.ListenAddr != "" {
		s.tcp = transport.NewTCPServer(s.worker, tcfg)
	}
	if cfg.SerialPort != "" {
		s.serial = transport.NewSerialServer(s.worker, tcfg, transport.SerialConfig{
			Port:      cfg.SerialPort,
			BaudRate:  cfg.SerialBaud,
			Reconnect: cfg.SerialReconnect,
		})
	}
	if cfg.HTTPAddr != "" {
		var validator auth.Validator
		if cfg.HTTPToken != "" {
			validator = auth.StaticToken{Token: cfg.HTTPToken}
		}
		s.http = server.New(server.Options{
			DeviceID:    cfg.DeviceID,
			Addr:        cfg.HTTPAddr,
			CorsOrigins: cfg.CorsOrigins,
			Worker:      s.worker,
			Keys:        s.keys,
			Auth:        validator,
		})
	}
	return s, nil
}

// Run blocks until SIGINT or SIGTERM.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Serve starts every configured component and returns when ctx is done or
// any component fails.
func (s *Service) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 4)
	start := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Str("component", name).Msg("component failed")
				errCh <- err
			}
		}()
	}

	start("worker", s.worker.Run)
	if s.tcp != nil {
		start("tcp", func(ctx context.Context) error { return s.tcp.ListenAndServe(ctx, s.cfg.ListenAddr) })
	}
	if s.serial != nil {
		start("serial", s.serial.Run)
	}
	if s.http != nil {
		start("http", s.http.Run)
		s.http.SetReady(true)
	}
	log.Info().
		Str("device", s.cfg.DeviceID).
		Str("listen_addr", s.cfg.ListenAddr).
		Str("serial_port", s.cfg.SerialPort).
		Str("http_addr", s.cfg.HTTPAddr).
		Bool("mqtt", s.mqtt != nil).
		Bool("keystore", s.keys != nil).
		Msg("radiotestd ready")

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("radiotestd shutdown")
			break loop
		case err := <-errCh:
			runErr = err
			break loop
		case <-ticker.C:
			s.heartbeat(ctx)
		}
	}

	if s.http != nil {
		s.http.SetReady(false)
	}
	cancel()
	wg.Wait()
	s.engine.Close()
	if s.mqtt != nil {
		s.mqtt.Disconnect(250)
	}
	return runErr
}

func (s *Service) heartbeat(ctx context.Context) {
	hbCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	snap, err := s.worker.Snapshot(hbCtx)
	if err != nil {
		log.Warn().Err(err).Msg("radiotestd heartbeat snapshot failed")
		return
	}
	var clients int64
	if s.tcp != nil {
		clients = s.tcp.Clients()
	}
	engineKind := "idle"
	if d, running := s.engine.Running(); running {
		engineKind = d.Kind().String()
	}
	log.Info().
		Str("device", s.cfg.DeviceID).
		Bool("session_active", snap.Session.Active).
		Str("session_kind", snap.Session.Kind).
		Str("engine_kind", engineKind).
		Int64("tcp_clients", clients).
		Uint64("packets_sent", s.engine.PacketsSent()).
		Msg("radiotestd heartbeat")
}

// Worker exposes the dispatch worker for in-process callers.
func (s *Service) Worker() *dispatch.Worker {
	return s.worker
}
