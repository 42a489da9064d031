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
	"strconv"
	"syscall"
	"time"

	"github.com/claude/fitlife/internal/config"
	fitmcp "github.com/claude/fitlife/internal/mcp"
	"github.com/claude/fitlife/internal/server"
	"github.com/claude/fitlife/internal/service"
	"github.com/claude/fitlife/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run postgres migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	log.Info("FitLife starting", "version", Version, "store", cfg.Store.Driver)

	if *migrateOnly {
		if cfg.Store.Driver != storage.DriverPostgres {
			log.Error("migrate-only requires the postgres store driver", "driver", cfg.Store.Driver)
			os.Exit(1)
		}
		if err := storage.RunMigrations(cfg.Database.DSN()); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrate-only: exiting")
		return
	}

	// Open store
	ctx := context.Background()
	backend, err := storage.OpenBackend(ctx, cfg.StoreOptions())
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(backend)
	defer repo.Close()
	log.Info("store opened", "driver", cfg.Store.Driver)

	svc := service.New(repo, log, service.Options{
		CacheSizeMB: cfg.Cache.SizeMB,
		CacheTTL:    cfg.Cache.CacheTTL(),
	})

	// Create server
	srv := server.New(svc, log)
	mcpSrv := fitmcp.New(svc, Version, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithHTTPContextFunc(mcpUserFromHeader),
	))

	// Start server on tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
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
		log.Info("server starting", "addr", addr)
	}

	httpSrv := &http.Server{
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// mcpUserFromHeader lets MCP clients pick the default user for tools that
// take a user_id.
func mcpUserFromHeader(ctx context.Context, r *http.Request) context.Context {
	if id, err := strconv.Atoi(r.Header.Get("X-FitLife-User")); err == nil && id > 0 {
		return fitmcp.WithUserID(ctx, id)
	}
	return ctx
}
