package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/repbook/internal/catalog"
	"github.com/claude/repbook/internal/config"
	repmcp "github.com/claude/repbook/internal/mcp"
	"github.com/claude/repbook/internal/source"
	"github.com/claude/repbook/internal/state"
	"github.com/claude/repbook/internal/tracker"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remoteURL := flag.String("url", "", "repbook server URL for remote mode (e.g. http://repbook.tail1234.ts.net)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repbook-mcp", Version)
		return
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds repmcp.DataSource
	if *remoteURL != "" {
		log.Info("remote mode", "url", *remoteURL)
		ds = repmcp.NewHTTPClient(*remoteURL)
	} else {
		local, closeFn, err := openLocal(*configPath, log)
		if err != nil {
			log.Error("local mode failed", "error", err)
			os.Exit(1)
		}
		defer closeFn()
		ds = local
	}

	if err := server.ServeStdio(repmcp.New(ds, Version, log)); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

// openLocal reads the same config, state and sources as the server binary.
func openLocal(configPath string, log *slog.Logger) (*repmcp.Local, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := state.OpenStore(cfg.State.Dir)
	if err != nil {
		return nil, nil, err
	}

	ctx := context.Background()
	tr, err := tracker.Open(ctx, store, tracker.Defaults{
		Units:   cfg.Defaults.Units,
		RestSec: cfg.Defaults.RestSeconds,
		Split:   cfg.Defaults.Split,
	}, log)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	loader := catalog.NewLoader(source.NewFetcher(cfg.Sources.FetchTimeout), catalog.Sources{
		Programs:  cfg.Sources.Programs,
		Library:   cfg.Sources.Library,
		Workbooks: cfg.Sources.Workbooks,
	}, log)
	cat, _ := loader.Load(ctx, tr.Library())

	return &repmcp.Local{Catalog: cat, Tracker: tr}, func() { _ = store.Close() }, nil
}
