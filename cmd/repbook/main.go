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

	"github.com/claude/repbook/internal/catalog"
	"github.com/claude/repbook/internal/config"
	repmcp "github.com/claude/repbook/internal/mcp"
	"github.com/claude/repbook/internal/server"
	"github.com/claude/repbook/internal/source"
	"github.com/claude/repbook/internal/state"
	"github.com/claude/repbook/internal/storage"
	"github.com/claude/repbook/internal/tracker"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("Repbook starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *migrateOnly {
		if !cfg.Database.Enabled() {
			log.Error("migrate-only requires a database host")
			os.Exit(1)
		}
		if err := storage.RunMigrations(cfg.Database.DSN()); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrate-only: exiting")
		return
	}

	ctx := context.Background()

	// Open device state
	store, err := state.OpenStore(cfg.State.Dir)
	if err != nil {
		log.Error("failed to open state store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	tr, err := tracker.Open(ctx, store, tracker.Defaults{
		Units:   cfg.Defaults.Units,
		RestSec: cfg.Defaults.RestSeconds,
		Split:   cfg.Defaults.Split,
	}, log)
	if err != nil {
		log.Error("failed to load state", "error", err)
		os.Exit(1)
	}

	// Build the catalog from configured sources
	loader := catalog.NewLoader(source.NewFetcher(cfg.Sources.FetchTimeout), catalog.Sources{
		Programs:  cfg.Sources.Programs,
		Library:   cfg.Sources.Library,
		Workbooks: cfg.Sources.Workbooks,
	}, log)
	cat, _ := loader.Load(ctx, tr.Library())
	if err := tr.SetLibrary(ctx, cat.Library()); err != nil {
		log.Warn("failed to save library", "error", err)
	}

	srv := server.New(cat, tr, log)
	local := &repmcp.Local{Catalog: cat, Tracker: tr}

	// Optional Postgres
	if cfg.Database.Enabled() {
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		log.Info("database connected")

		shared, err := db.ListPrograms(ctx)
		if err != nil {
			log.Warn("failed to load shared programs", "error", err)
		}
		for _, p := range shared {
			cat.Put(p)
		}
		if len(shared) > 0 {
			log.Info("shared programs loaded", "count", len(shared))
			if lib, changed := cat.RefreshLibrary(); changed {
				if err := tr.SetLibrary(ctx, lib); err != nil {
					log.Warn("failed to save library", "error", err)
				}
			}
		}

		srv.SetDatabase(db)
		local.Archive = db
	}

	// MCP over streamable HTTP, next to the REST API
	mcpSrv := repmcp.New(local, Version, log)
	srv.MountMCP(mcpserver.NewStreamableHTTPServer(mcpSrv))

	// Start server: tsnet or plain HTTP
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

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
