package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/fitlink/internal/config"
	"github.com/claude/fitlink/internal/mcp"
	"github.com/claude/fitlink/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	apiURL := flag.String("url", "", "FitLink API base URL (omit to connect to the database directly)")
	apiKey := flag.String("api-key", "", "API key for the FitLink API")
	configPath := flag.String("config", "config.yaml", "path to config file (direct database mode)")
	flag.Parse()

	// Logs go to stderr; stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource

	if *apiURL != "" {
		key := *apiKey
		if key == "" {
			key = os.Getenv("FITLINK_API_KEY")
		}
		ds = mcp.NewHTTPClient(*apiURL, key)
		log.Info("connecting through FitLink API", "url", *apiURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		log.Info("connecting to database directly")
	}

	srv := mcp.New(ds, Version, log)
	if err := server.ServeStdio(srv); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
