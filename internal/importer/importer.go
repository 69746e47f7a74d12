package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/claude/repbook/internal/ingest"
	"github.com/claude/repbook/internal/ingest/preset"
	"github.com/claude/repbook/internal/ingest/sheet"
	"github.com/claude/repbook/internal/models"
	"github.com/claude/repbook/internal/storage"
)

// Store is the subset of storage the importer writes to.
type Store interface {
	UpsertProgram(ctx context.Context, p models.Program) error
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
}

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	ProgramsParsed   int
	ProgramsUpserted int

	Results []ingest.Result
	Errors  []string
}

// Importer reads preset files from a directory tree and upserts the programs
// they describe.
type Importer struct {
	db      Store
	log     *slog.Logger
	dryRun  bool
	columns sheet.Columns
	stats   Stats
}

// New creates a new Importer. db may be nil in dry-run mode.
func New(db Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, log: log, dryRun: dryRun, columns: sheet.DefaultColumns}
}

// Import processes every .json, .xlsx, .xlsm and .csv file under dir. Files
// that do not describe programs are skipped; files that fail to parse are
// counted as errored and the walk continues. A failed upsert aborts.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	start := time.Now()

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || ingest.Format(path) == "" {
			imp.stats.FilesSkipped++
			return nil
		}
		return imp.importFile(ctx, path)
	})

	if !imp.dryRun {
		imp.writeLog(ctx, dir, time.Since(start), err)
	}
	if err != nil {
		return &imp.stats, fmt.Errorf("importing %s: %w", dir, err)
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		imp.log.Warn("read failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		imp.stats.Errors = append(imp.stats.Errors, fmt.Sprintf("%s: %v", path, err))
		return nil
	}

	programs, res, err := ingest.File(path, "", data, imp.columns)
	switch {
	case errors.Is(err, preset.ErrUnknownSchema), errors.Is(err, sheet.ErrNoExercises):
		imp.log.Info("skipping file (no programs)", "file", path, "error", err)
		imp.stats.FilesSkipped++
		return nil
	case err != nil:
		imp.log.Warn("parse failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		imp.stats.Errors = append(imp.stats.Errors, fmt.Sprintf("%s: %v", path, err))
		return nil
	}

	imp.stats.FilesProcessed++
	imp.stats.ProgramsParsed += len(programs)
	imp.stats.Results = append(imp.stats.Results, res)
	if imp.dryRun {
		return nil
	}

	for _, p := range programs {
		if err := imp.db.UpsertProgram(ctx, p); err != nil {
			return err
		}
		imp.stats.ProgramsUpserted++
	}
	return nil
}

func (imp *Importer) writeLog(ctx context.Context, dir string, elapsed time.Duration, runErr error) {
	status := storage.ImportStatusSuccess
	switch {
	case runErr != nil:
		status = storage.ImportStatusError
	case imp.stats.FilesErrored > 0:
		status = storage.ImportStatusPartial
	}

	ms := int(elapsed.Milliseconds())
	entry := storage.ImportLog{
		Source:           "import:" + dir,
		Status:           status,
		FilesProcessed:   imp.stats.FilesProcessed,
		FilesSkipped:     imp.stats.FilesSkipped,
		FilesErrored:     imp.stats.FilesErrored,
		ProgramsUpserted: imp.stats.ProgramsUpserted,
		DurationMs:       &ms,
	}
	if runErr != nil {
		msg := runErr.Error()
		entry.ErrorMessage = &msg
	}
	if len(imp.stats.Errors) > 0 {
		if b, err := json.Marshal(map[string]any{"errors": imp.stats.Errors}); err == nil {
			raw := json.RawMessage(b)
			entry.Metadata = &raw
		}
	}

	if _, err := imp.db.InsertImportLog(ctx, entry); err != nil {
		imp.log.Warn("writing import log failed", "error", err)
	}
}
