package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/lox/gomoku/cmd/gomoku/shared"
	"github.com/lox/gomoku/internal/server"
)

// ServerCmd contains core server configuration
type ServerCmd struct {
	Addr   string `kong:"default='',help='Listen address (overrides the config file)'"`
	Config string `kong:"default='gomoku.hcl',help='Path to HCL config file'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	if c.Debug {
		cfg.Debug = true
	}

	logger := shared.SetupLogger(cfg.Debug)
	s := server.NewServer(cfg, logger)

	logger.Info("starting gomoku server",
		"addr", cfg.Addr,
		"rows", cfg.Rows,
		"cols", cfg.Cols,
		"win_length", cfg.WinLength)

	ctx := shared.SetupSignalHandler(logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
