// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/punchlist-io/punchlist/api"
	"github.com/punchlist-io/punchlist/lib/clock"
	"github.com/punchlist-io/punchlist/lib/config"
	"github.com/punchlist-io/punchlist/lib/identity"
	"github.com/punchlist-io/punchlist/lib/itemstore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath    string
		listenAddress string
		seedPath      string
	)

	flagSet := pflag.NewFlagSet("punchlist-server", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to punchlist.yaml (overrides PUNCHLIST_CONFIG)")
	flagSet.StringVar(&listenAddress, "listen", "", "listen address (overrides the config file)")
	flagSet.StringVar(&seedPath, "seed", "", "JSONC item fixture loaded at startup (development only)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if listenAddress != "" {
		cfg.ListenAddress = listenAddress
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	publicKey, err := identity.LoadPublicKey(cfg.PublicKeyPath)
	if err != nil {
		return fmt.Errorf("loading verification key: %w", err)
	}
	logger.Info("verification key loaded", "path", cfg.PublicKeyPath)

	clk := clock.Real()

	store, err := itemstore.Open(itemstore.Config{
		Path:     cfg.DatabasePath,
		PoolSize: cfg.PoolSize,
		Clock:    clk,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("opening item store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing item store", "error", err)
		}
	}()

	if seedPath != "" {
		if err := loadSeed(ctx, store, clk, logger, seedPath); err != nil {
			return fmt.Errorf("loading seed: %w", err)
		}
	}

	server := api.NewServer(api.ServerConfig{
		Address: cfg.ListenAddress,
		Store:   store,
		Verifier: &identity.Verifier{
			PublicKey: publicKey,
			Audience:  cfg.Audience,
		},
		Clock:           clk,
		ShutdownTimeout: cfg.ShutdownDuration(),
		Logger:          logger,
	})

	logger.Info("punchlist server starting",
		"listen", cfg.ListenAddress,
		"database", cfg.DatabasePath,
		"audience", cfg.Audience,
	)

	return server.Serve(ctx)
}
