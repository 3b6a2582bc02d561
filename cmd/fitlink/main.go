package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/fitlink/internal/coach"
	"github.com/claude/fitlink/internal/config"
	"github.com/claude/fitlink/internal/ingest"
	"github.com/claude/fitlink/internal/server"
	"github.com/claude/fitlink/internal/session"
	"github.com/claude/fitlink/internal/snapshot"
	"github.com/claude/fitlink/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("FitLink starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	userID, err := db.GetOrCreateUser(ctx, "local", "FitLink User")
	if err != nil {
		log.Error("failed to resolve user", "error", err)
		os.Exit(1)
	}

	// Widget snapshot store + refresher
	snapStore, err := snapshot.Open(cfg.Snapshot.Path)
	if err != nil {
		log.Error("failed to open snapshot store", "error", err)
		os.Exit(1)
	}
	defer snapStore.Close()

	refresher := snapshot.NewRefresher(db, snapStore, log, userID,
		cfg.Snapshot.WaterGoalOz,
		time.Duration(cfg.Snapshot.RefreshIntervalSec)*time.Second)
	go refresher.Run(ctx)

	// Workout session hub, ticking at 1 Hz
	hub := session.NewHub(db, userID, log)
	go hub.Run(ctx)

	// AI coach proxy client (optional)
	var coachClient *coach.Client
	if cfg.Coach.BaseURL != "" {
		coachClient = coach.New(cfg.Coach.BaseURL, cfg.Coach.Provider)
		log.Info("coach proxy configured", "url", cfg.Coach.BaseURL)
	}

	ingestProvider := ingest.NewProvider(db, log)

	srv := server.New(db, ingestProvider, hub, snapStore, refresher, coachClient,
		cfg.Auth.APIKey, userID, log)

	// Start server on tsnet or a plain listener
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
