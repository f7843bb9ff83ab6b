// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-notevault.
//
// go-notevault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jeremyhahn/go-notevault/internal/config"
	"github.com/jeremyhahn/go-notevault/internal/note"
	"github.com/jeremyhahn/go-notevault/internal/rest"
	"github.com/jeremyhahn/go-notevault/internal/storage"
	"github.com/jeremyhahn/go-notevault/internal/storage/memory"
	"github.com/jeremyhahn/go-notevault/internal/storage/sqlite"
	"github.com/jeremyhahn/go-notevault/pkg/metrics"
	"github.com/jeremyhahn/go-notevault/pkg/passkey"
)

var (
	// Version information (set during build)
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	configPath := flag.String("config", "/etc/notevault/config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("go-notevault server\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Git Commit: %s\n", commit)
		fmt.Printf("  Built:      %s\n", date)
		os.Exit(0)
	}

	if envConfig := os.Getenv("NOTEVAULT_CONFIG"); envConfig != "" {
		*configPath = envConfig
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("Starting notevault server",
		"config", *configPath,
		"version", version,
		"rp_id", cfg.Passkey.RPID,
		"storage", cfg.Storage.Backend)

	store, err := openStore(cfg)
	if err != nil {
		logger.Error("Failed to open storage", slog.Any("error", err))
		os.Exit(1)
	}

	key, err := cfg.SessionKey()
	if err != nil {
		logger.Error("Failed to derive session key", slog.Any("error", err))
		os.Exit(1)
	}
	codec, err := passkey.NewCodec(key)
	if err != nil {
		logger.Error("Failed to create codec", slog.Any("error", err))
		os.Exit(1)
	}

	passkeys, err := passkey.NewService(passkey.ServiceParams{
		Config:          cfg.ToPasskeyConfig(),
		Codec:           codec,
		UserStore:       store,
		CredentialStore: store,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("Failed to create passkey service", slog.Any("error", err))
		os.Exit(1)
	}

	notes, err := note.NewService(store)
	if err != nil {
		logger.Error("Failed to create note service", slog.Any("error", err))
		os.Exit(1)
	}

	serverConfig := rest.DefaultConfig()
	serverConfig.Port = cfg.Server.Port
	serverConfig.SecureCookies = !cfg.Server.InsecureCookies

	server, err := rest.NewServer(rest.ServerParams{
		Config:   serverConfig,
		Passkeys: passkeys,
		Notes:    notes,
		Store:    store,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("Failed to create server", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownCtx := setupSignalHandler()

	collector := metrics.StartResourceCollector(shutdownCtx, 30*time.Second)
	defer collector.Stop()

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	logger.Info("Server started", "port", cfg.Server.Port)

	select {
	case <-shutdownCtx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		logger.Error("Server error", slog.Any("error", err))
	}

	shutdownTimeout, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownTimeout); err != nil {
		logger.Error("Error during server shutdown", slog.Any("error", err))
	}

	if err := store.Close(); err != nil {
		logger.Error("Error closing storage", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("Server stopped successfully")
}

// newLogger builds a slog logger from the logging configuration.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// openStore opens the configured storage backend.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return memory.New(), nil
	default:
		return sqlite.Open(cfg.Storage.Path)
	}
}

// setupSignalHandler sets up signal handling for graceful shutdown
func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signalCh
		cancel()
	}()

	return ctx
}
