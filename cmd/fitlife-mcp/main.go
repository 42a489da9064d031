package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/fitlife/internal/config"
	fitmcp "github.com/claude/fitlife/internal/mcp"
	"github.com/claude/fitlife/internal/service"
	"github.com/claude/fitlife/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remote := flag.String("remote", "", "FitLife server URL; read data over REST instead of opening the store")
	user := flag.Int("user", 0, "default user ID for tools that take user_id")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("fitlife-mcp", Version)
		return
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds fitmcp.DataSource
	if *remote != "" {
		ds = fitmcp.NewHTTPClient(*remote)
		log.Info("remote mode", "server", *remote)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		backend, err := storage.OpenBackend(context.Background(), cfg.StoreOptions())
		if err != nil {
			log.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		repo := storage.NewRepository(backend)
		defer repo.Close()
		ds = service.New(repo, log, service.Options{
			CacheSizeMB: cfg.Cache.SizeMB,
			CacheTTL:    cfg.Cache.CacheTTL(),
		})
		log.Info("local mode", "store", cfg.Store.Driver)
	}

	s := fitmcp.New(ds, Version, log)
	err := mcpserver.ServeStdio(s, mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
		if *user > 0 {
			return fitmcp.WithUserID(ctx, *user)
		}
		return ctx
	}))
	if err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
