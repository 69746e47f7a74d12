package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/repbook/internal/config"
	"github.com/claude/repbook/internal/importer"
	"github.com/claude/repbook/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	presetPath := flag.String("path", "", "directory of preset files: .json, .xlsx, .xlsm, .csv (required)")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing to the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *presetPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: repbook-import -config config.yaml -path /path/to/presets [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*presetPath)
	if err != nil || !info.IsDir() {
		log.Error("preset path does not exist or is not a directory", "path", *presetPath)
		os.Exit(1)
	}

	ctx := context.Background()

	var db importer.Store
	if *dryRun {
		log.Info("DRY RUN mode, nothing will be written to the database")
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		if !cfg.Database.Enabled() {
			log.Error("import requires a database host in config (or use -dry-run)")
			os.Exit(1)
		}

		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		pg, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		log.Info("database connected")
		db = pg
	}

	imp := importer.New(db, log, *dryRun)
	stats, err := imp.Import(ctx, *presetPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	if stats == nil {
		return
	}
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"programs_parsed", stats.ProgramsParsed,
		"programs_upserted", stats.ProgramsUpserted,
	)
	for _, r := range stats.Results {
		log.Info("file", "path", r.File, "format", r.Format, "schema", r.Schema, "programs", r.Programs, "days", r.Days, "exercises", r.Exercises)
	}
	for _, e := range stats.Errors {
		log.Warn("file error", "error", e)
	}
}
