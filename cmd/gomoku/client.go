package main

import (
	"os"
	"strings"

	"github.com/lox/gomoku/cmd/gomoku/shared"
	"github.com/lox/gomoku/internal/client"
)

type ClientCmd struct {
	Server string `kong:"default='ws://localhost:3333/ws',help='WebSocket server URL'"`
	Name   string `kong:"default='',help='Display name (defaults to $USER or \"Player\")'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

func (c *ClientCmd) Run() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		name = "Player"
	}

	logger := shared.SetupLogger(c.Debug)
	cl := client.New(client.Config{
		Server: strings.TrimSpace(c.Server),
		Name:   name,
	}, logger)

	if err := cl.Dial(); err != nil {
		return err
	}

	ctx := shared.SetupSignalHandler(logger)
	return cl.Run(ctx)
}
