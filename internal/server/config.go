package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/gomoku/internal/game"
)

// Config is the resolved runtime configuration.
type Config struct {
	Addr       string
	Rows       int
	Cols       int
	WinLength  int
	SendBuffer int
	Debug      bool
}

// DefaultConfig returns the stock configuration: the historical 255-cell
// board with 15-wide rows, five in a row to win.
func DefaultConfig() Config {
	return Config{
		Addr:       ":3333",
		Rows:       game.DefaultRows,
		Cols:       game.DefaultCols,
		WinLength:  game.DefaultWinLength,
		SendBuffer: 256,
	}
}

// fileConfig is the HCL shape of a config file.
type fileConfig struct {
	Server *serverBlock `hcl:"server,block"`
	Game   *gameBlock   `hcl:"game,block"`
}

type serverBlock struct {
	Address    string `hcl:"address,optional"`
	Port       int    `hcl:"port,optional"`
	Debug      bool   `hcl:"debug,optional"`
	SendBuffer int    `hcl:"send_buffer,optional"`
}

type gameBlock struct {
	Rows      int `hcl:"rows,optional"`
	Cols      int `hcl:"cols,optional"`
	WinLength int `hcl:"win_length,optional"`
}

// LoadConfig reads an HCL config file and overlays it on the defaults. A
// missing file yields the defaults; board geometry is fixed for the
// process lifetime once loaded.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("failed to parse config file: %s", diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return cfg, fmt.Errorf("failed to decode config file: %s", diags.Error())
	}

	if fc.Server != nil {
		if fc.Server.Address != "" || fc.Server.Port != 0 {
			host := fc.Server.Address
			port := fc.Server.Port
			if port == 0 {
				port = 3333
			}
			cfg.Addr = fmt.Sprintf("%s:%d", host, port)
		}
		if fc.Server.SendBuffer > 0 {
			cfg.SendBuffer = fc.Server.SendBuffer
		}
		cfg.Debug = fc.Server.Debug
	}

	if fc.Game != nil {
		if fc.Game.Rows > 0 {
			cfg.Rows = fc.Game.Rows
		}
		if fc.Game.Cols > 0 {
			cfg.Cols = fc.Game.Cols
		}
		if fc.Game.WinLength > 0 {
			cfg.WinLength = fc.Game.WinLength
		}
	}

	return cfg, nil
}
