// Package server hosts one authoritative five-in-a-row game behind a
// WebSocket endpoint. Every connection gets its own read/write pumps; all
// of them share a single mutex-guarded game, so commands are applied in
// the order they acquire the lock and no other cross-client ordering is
// promised.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/gomoku/internal/game"
	"github.com/lox/gomoku/internal/protocol"
)

// Server owns the shared game, the peer registry and the listener.
type Server struct {
	cfg      Config
	upgrader websocket.Upgrader
	registry *Registry
	logger   *log.Logger
	clock    quartz.Clock

	mu   sync.Mutex
	game *game.Game

	httpSrv *http.Server
}

// Option customizes a Server.
type Option func(*Server)

// WithClock injects a clock; tests pass a quartz mock to drive the
// keepalive tickers.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// NewServer creates a server hosting a single game sized per cfg.
func NewServer(cfg Config, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.WithPrefix("server"),
		clock:  quartz.NewReal(),
		game:   game.NewSized(cfg.Rows, cfg.Cols, cfg.WinLength),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry = NewRegistry(logger)
	return s
}

// Handler returns the HTTP handler serving the /ws and /health endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{Addr: s.cfg.Addr, Handler: s.Handler()}
	s.logger.Info("listening",
		"addr", s.cfg.Addr,
		"rows", s.cfg.Rows,
		"cols", s.cfg.Cols,
		"win_length", s.cfg.WinLength)
	return s.httpSrv.ListenAndServe()
}

// Shutdown severs every connection and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.registry.CloseAll()
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "error", err)
		return
	}

	c := newConn(ws, s)
	c.start()
	s.logger.Info("connection accepted", "peer", c.addr)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// dispatch applies one decoded command to the shared game and routes the
// results: Ok/Fail go back to the originating peer only, committed moves
// and resets are broadcast to everyone.
func (s *Server) dispatch(cmd protocol.Command, addr string) {
	switch cmd := cmd.(type) {
	case *protocol.Connect:
		s.mu.Lock()
		s.game.Connect(cmd.Name, addr)
		s.mu.Unlock()

		s.logger.Info("player joined", "name", cmd.Name, "peer", addr)
		s.reply(&protocol.Ok{Addr: addr}, addr)

	case *protocol.Move:
		s.mu.Lock()
		res, err := s.game.Move(int(cmd.Cell), cmd.Name)
		s.mu.Unlock()

		if err != nil {
			s.logger.Debug("move rejected", "name", cmd.Name, "cell", cmd.Cell, "reason", err)
			s.reply(&protocol.Fail{Message: err.Error(), Addr: addr}, addr)
			return
		}

		if res.Winner != "" {
			s.logger.Info("game decided", "winner", res.Winner)
		}
		s.broadcast(&protocol.MoveMade{
			Cell:   uint32(res.Cell),
			Color:  res.Color,
			Winner: res.Winner,
		})

	case *protocol.Reset:
		s.mu.Lock()
		s.game.Reset()
		s.mu.Unlock()

		s.logger.Info("game reset", "peer", addr)
		s.broadcast(&protocol.ResetDone{})
	}
}

func (s *Server) reply(resp protocol.Response, addr string) {
	payload, err := protocol.EncodeResponse(resp)
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		return
	}
	if err := s.registry.Send(payload, addr); err != nil {
		// A reply only ever targets the peer whose command produced it,
		// so a miss here is a lifecycle bug worth shouting about.
		s.logger.Error("failed to deliver direct response", "peer", addr, "error", err)
	}
}

func (s *Server) broadcast(resp protocol.Response) {
	payload, err := protocol.EncodeResponse(resp)
	if err != nil {
		s.logger.Error("failed to encode broadcast", "error", err)
		return
	}
	s.registry.Broadcast(payload)
}

// Game exposes the shared game for tests; callers must not mutate it
// outside the server's lock.
func (s *Server) Game() *game.Game {
	return s.game
}
