package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lox/loveletter/cmd/loveletter/shared"
	"github.com/lox/loveletter/internal/match"
	"github.com/lox/loveletter/internal/server"
	"github.com/lox/loveletter/internal/store"
)

// ServerCmd runs the HTTP and WebSocket match server. Flags override the
// config file and the environment.
type ServerCmd struct {
	Config        string `kong:"default='loveletter.hcl',help='HCL config file (missing file means defaults)'"`
	Addr          string `kong:"help='Server address'"`
	Debug         bool   `kong:"help='Enable debug logging'"`
	StorageDriver string `kong:"help='Storage backend (memory, file, sqlite)'"`
	StoragePath   string `kong:"help='Storage directory (file) or database (sqlite)'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Debug {
		cfg.Server.LogLevel = "debug"
	}
	if c.StorageDriver != "" {
		cfg.Storage.Driver = c.StorageDriver
	}
	if c.StoragePath != "" {
		cfg.Storage.Path = c.StoragePath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(level)

	st, err := store.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()

	manager := match.NewManager(logger, st,
		match.WithIdleTimeout(cfg.IdleTimeout()),
		match.WithTurnHistory(cfg.Server.TurnHistory),
	)

	logger.Info("Starting Love Letter server",
		"address", cfg.Server.Address,
		"storage", cfg.Storage.Driver,
		"idle_timeout", cfg.IdleTimeout(),
		"turn_history", cfg.Server.TurnHistory,
	)

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	srv := server.NewServer(cfg.Server.Address, manager, logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
