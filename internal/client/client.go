// Package client implements the interactive terminal client: it dials the
// server, registers a participant, mirrors the shared board from Move and
// Reset broadcasts and accepts moves on stdin.
package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/gomoku/internal/game"
	"github.com/lox/gomoku/internal/protocol"
)

// Config holds the client settings.
type Config struct {
	Server string
	Name   string
}

// Client talks to one gomoku server over a WebSocket connection.
type Client struct {
	cfg    Config
	ws     *websocket.Conn
	board  *game.Board
	out    io.Writer
	logger *log.Logger
}

// New creates a client; Dial must be called before Run.
func New(cfg Config, logger *log.Logger) *Client {
	return &Client{
		cfg:    cfg,
		board:  game.NewBoard(game.DefaultRows, game.DefaultCols),
		out:    os.Stdout,
		logger: logger.WithPrefix("client"),
	}
}

// Dial connects to the server and registers under the configured name.
func (c *Client) Dial() error {
	u, err := url.Parse(c.cfg.Server)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	c.logger.Info("connecting", "url", u.String())
	ws, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	c.ws = ws

	payload, err := protocol.EncodeCommand(&protocol.Connect{Name: c.cfg.Name})
	if err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.BinaryMessage, payload)
}

// Run services the connection until ctx is cancelled, the server goes
// away or the user quits. The socket reader and the stdin reader run
// concurrently so broadcasts arrive while a command is being typed.
func (c *Client) Run(ctx context.Context) error {
	defer func() { _ = c.ws.Close() }()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.readLoop()
	})
	g.Go(func() error {
		return c.inputLoop(ctx, os.Stdin)
	})
	g.Go(func() error {
		<-ctx.Done()
		_ = c.ws.Close()
		return nil
	})

	fmt.Fprintf(c.out, "Connected as %s. Commands: move <cell>, reset, quit\n", c.cfg.Name)
	c.render("")

	err := g.Wait()
	if err == errQuit {
		return nil
	}
	return err
}

// readLoop decodes server responses and keeps the local board mirror in
// sync with the authoritative state.
func (c *Client) readLoop() error {
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return fmt.Errorf("server connection lost: %w", err)
		}

		resp, err := protocol.DecodeResponse(payload)
		if err != nil {
			return err
		}

		switch resp := resp.(type) {
		case *protocol.Ok:
			c.logger.Debug("server ack", "addr", resp.Addr)
		case *protocol.Fail:
			fmt.Fprintf(c.out, "rejected: %s\n", resp.Message)
		case *protocol.MoveMade:
			if c.board.InBounds(int(resp.Cell)) {
				c.board.Set(int(resp.Cell), resp.Color)
			}
			c.render(resp.Winner)
		case *protocol.ResetDone:
			c.board.Reset()
			fmt.Fprintln(c.out, "game reset")
			c.render("")
		}
	}
}

var errQuit = fmt.Errorf("quit")

// parseInput turns one line of user input into a command. A nil command
// with a non-empty hint means the line was not actionable; errQuit asks
// the caller to stop.
func parseInput(line, name string) (protocol.Command, string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, "", nil
	}

	switch fields[0] {
	case "move", "m":
		if len(fields) != 2 {
			return nil, "usage: move <cell>", nil
		}
		cell, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Sprintf("not a cell index: %q", fields[1]), nil
		}
		return &protocol.Move{Cell: uint32(cell), Name: name}, "", nil
	case "reset", "r":
		return &protocol.Reset{}, "", nil
	case "quit", "q":
		return nil, "", errQuit
	default:
		return nil, fmt.Sprintf("unknown command %q", fields[0]), nil
	}
}

// inputLoop parses stdin commands and writes them to the socket.
func (c *Client) inputLoop(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		cmd, hint, err := parseInput(scanner.Text(), c.cfg.Name)
		if err != nil {
			return err
		}
		if hint != "" {
			fmt.Fprintln(c.out, hint)
		}
		if cmd == nil {
			continue
		}

		payload, err := protocol.EncodeCommand(cmd)
		if err != nil {
			return err
		}
		if err := c.ws.WriteMessage(websocket.BinaryMessage, payload); err != nil {
			return fmt.Errorf("failed to send command: %w", err)
		}
	}
	return scanner.Err()
}

func (c *Client) render(winner string) {
	fmt.Fprintln(c.out, RenderBoard(c.board, winner))
}
