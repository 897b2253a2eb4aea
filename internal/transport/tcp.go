package transport

import (
	"context"
	"net"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

const carrierTCP = "tcp"

// TCPServer accepts controller connections and serves frames on each one.
type TCPServer struct {
	sub     Submitter
	cfg     Config
	clients atomic.Int64
}

func NewTCPServer(sub Submitter, cfg Config) *TCPServer {
	return &TCPServer{sub: sub, cfg: cfg}
}

// ListenAndServe listens on addr until ctx is done.
func (s *TCPServer) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", strings.TrimSpace(addr))
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts on ln until ctx is done. ln is closed on return.
func (s *TCPServer) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	log.Info().Str("addr", ln.Addr().String()).Msg("transport.tcp listening")

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *TCPServer) Clients() int64 {
	return s.clients.Load()
}

func (s *TCPServer) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	active := s.clients.Add(1)
	log.Info().Str("remote", remote).Int64("active_clients", active).Msg("transport.tcp client connected")
	defer func() {
		remaining := s.clients.Add(-1)
		log.Info().Str("remote", remote).Int64("active_clients", remaining).Msg("transport.tcp client disconnected")
	}()

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-connCtx.Done()
		_ = conn.Close()
	}()

	if err := ServeConn(connCtx, conn, s.sub, s.cfg, carrierTCP); err != nil {
		log.Warn().Err(err).Str("remote", remote).Msg("transport.tcp connection closed")
	}
}
