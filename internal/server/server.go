// Package server exposes health, status, metrics and bench controls over HTTP.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/danmuck/radiotest/internal/auth"
	"github.com/danmuck/radiotest/internal/dispatch"
	"github.com/danmuck/radiotest/internal/keystore"
	"github.com/danmuck/radiotest/internal/observability"
	"github.com/danmuck/radiotest/internal/protocol"
	"github.com/danmuck/radiotest/internal/protocol/wire"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const version = "0.1.0"

// Worker is the part of the dispatch worker the HTTP surface needs.
type Worker interface {
	Submit(ctx context.Context, req wire.Request) (protocol.Status, error)
	Snapshot(ctx context.Context) (dispatch.Snapshot, error)
}

type Options struct {
	DeviceID       string
	Addr           string
	CorsOrigins    []string
	Worker         Worker
	Keys           *keystore.Store
	Auth           auth.Validator
	RequestTimeout time.Duration
}

type Server struct {
	opts     Options
	router   *gin.Engine
	started  time.Time
	ready    atomic.Bool
	sequence atomic.Uint32
}

func New(opts Options) *Server {
	observability.RegisterMetrics()
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 2 * time.Second
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger, opts.DeviceID))
	r.Use(observability.RequestMetricsMiddleware(opts.DeviceID))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(opts.CorsOrigins),
		AllowMethods: []string{"GET", "POST", "PUT"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{opts: opts, router: r, started: time.Now()}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// SetReady flips the /ready probe.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.opts.Addr).Msg("http listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"device":  s.opts.DeviceID,
			"version": version,
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		ready := s.ready.Load()
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"ready": ready, "device": s.opts.DeviceID})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/status", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
		defer cancel()
		snap, err := s.opts.Worker.Snapshot(ctx)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snap)
	})

	guarded := s.router.Group("/", auth.RequireBearer(s.opts.Auth))
	guarded.POST("/commands", s.handleCommand)
	guarded.GET("/keys", s.handleListKeys)
	guarded.GET("/keys/:id", s.handleGetKey)
	guarded.PUT("/keys/:id", s.handlePutKey)
}

type commandRequest struct {
	Command string `json:"command"`
	Value   *int32 `json:"value,omitempty"`
}

func (s *Server) handleCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd, err := protocol.ParseCommand(req.Command)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var payload []byte
	if req.Value != nil {
		payload = wire.EncodeValue(*req.Value)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
	defer cancel()
	status, err := s.opts.Worker.Submit(ctx, wire.Request{
		Sequence: s.sequence.Add(1),
		Command:  cmd,
		Payload:  payload,
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	observability.SetCommandResult(c, cmd.String(), status.String())
	c.JSON(http.StatusOK, gin.H{
		"command": cmd.String(),
		"status":  int32(status),
		"result":  status.String(),
	})
}

func (s *Server) handleListKeys(c *gin.Context) {
	if s.opts.Keys == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "keystore disabled"})
		return
	}
	ids, err := s.opts.Keys.IDs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		out = append(out, int(id))
	}
	c.JSON(http.StatusOK, gin.H{"ids": out})
}

// handleGetKey reports whether a key is provisioned without returning its material.
func (s *Server) handleGetKey(c *gin.Context) {
	if s.opts.Keys == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "keystore disabled"})
		return
	}
	id, ok := keyID(c)
	if !ok {
		return
	}
	k, err := s.opts.Keys.Load(id)
	switch {
	case errors.Is(err, keystore.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"id": id, "present": false})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sum := sha256.Sum256(k.Value[:])
	c.JSON(http.StatusOK, gin.H{
		"id":          id,
		"present":     true,
		"fingerprint": hex.EncodeToString(sum[:4]),
	})
}

func keyID(c *gin.Context) (uint8, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 8)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be 0..255"})
		return 0, false
	}
	return uint8(id), true
}

type keyRequest struct {
	Value  string `json:"value"`
	Random string `json:"random"`
}

func (s *Server) handlePutKey(c *gin.Context) {
	if s.opts.Keys == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "keystore disabled"})
		return
	}
	id, ok := keyID(c)
	if !ok {
		return
	}
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var k keystore.Key
	if err := decodeHexInto(k.Value[:], req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value: " + err.Error()})
		return
	}
	if err := decodeHexInto(k.Random[:], req.Random); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "random: " + err.Error()})
		return
	}
	if err := s.opts.Keys.Save(id, k); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": id})
}

func decodeHexInto(dst []byte, raw string) error {
	b, err := hex.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return errors.New("want " + strconv.Itoa(len(dst)) + " bytes, got " + strconv.Itoa(len(b)))
	}
	copy(dst, b)
	return nil
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
