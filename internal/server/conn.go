package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/gomoku/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024
)

// Conn bridges one WebSocket peer to the shared game. The read pump
// decodes inbound commands and submits them to the server; the write pump
// drains this peer's outbound channel. The two directions run on separate
// goroutines and never block each other.
type Conn struct {
	addr      string
	ws        *websocket.Conn
	send      chan []byte
	server    *Server
	logger    *log.Logger
	clock     quartz.Clock
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newConn(ws *websocket.Conn, s *Server) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	addr := ws.RemoteAddr().String()

	return &Conn{
		addr:   addr,
		ws:     ws,
		send:   make(chan []byte, s.cfg.SendBuffer),
		server: s,
		logger: s.logger.WithPrefix("conn").With("peer", addr),
		clock:  s.clock,
		ctx:    ctx,
		cancel: cancel,
	}
}

// start registers the peer and launches both pumps.
func (c *Conn) start() {
	c.server.registry.Register(c.addr, c.send, func() { _ = c.Close() })
	go c.writePump()
	go c.readPump()
}

// Close severs the connection. Safe to call from any goroutine, any number
// of times.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.ws.Close()
	})
	return err
}

// Done is closed once the connection is torn down.
func (c *Conn) Done() <-chan struct{} {
	return c.ctx.Done()
}

// readPump reads binary frames, decodes them and submits commands to the
// shared game. Any read or decode failure ends only this connection: the
// peer is deregistered and sibling connections keep running.
func (c *Conn) readPump() {
	defer func() {
		c.server.registry.Unregister(c.addr)
		_ = c.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("read failed", "error", err)
			}
			return
		}

		cmd, err := protocol.DecodeCommand(payload)
		if err != nil {
			c.logger.Error("closing connection on undecodable payload", "error", err)
			return
		}

		c.server.dispatch(cmd, c.addr)
	}
}

// writePump drains the outbound channel onto the socket and keeps the
// connection alive with pings. The ticker comes from the injected clock so
// tests can drive it.
func (c *Conn) writePump() {
	ticker := c.clock.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.BinaryMessage, payload); err != nil {
				c.logger.Error("write failed", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
