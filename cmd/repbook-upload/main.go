package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/claude/repbook/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "repbook server URL (e.g. https://repbook.tail1234.ts.net)")
	presetPath := flag.String("path", "", "directory of preset files to upload")
	dryRun := flag.Bool("dry-run", false, "parse locally but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repbook-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *presetPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: repbook-upload -server <URL> -path <preset dir> [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}

	info, err := os.Stat(*presetPath)
	if err != nil || !info.IsDir() {
		log.Error("preset directory not found", "path", *presetPath)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		client *upload.Client
		ledger *upload.Ledger
	)
	if *dryRun {
		log.Info("DRY RUN mode, files will be parsed but not sent")
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		ledger, err = upload.OpenLedger(filepath.Join(homeDir, ".repbook-upload"))
		if err != nil {
			log.Error("failed to open upload ledger", "error", err)
			os.Exit(1)
		}
		defer ledger.Close()
		client = upload.NewClient(*serverURL)
	}

	stats, err := upload.New(client, ledger, *presetPath, *dryRun, log).Run(ctx)
	printStats(stats)
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}
	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:    %d (unchanged)\n", stats.FilesSkipped)
	fmt.Printf("  Files rejected:   %d\n", stats.FilesRejected)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Printf("  Programs:         %d\n", stats.ProgramsSent)

	if len(stats.Rejected) > 0 {
		fmt.Printf("\n  Rejected files:\n")
		for _, f := range stats.Rejected {
			fmt.Printf("    - %s\n", f)
		}
	}
	fmt.Println()
}
