package catalog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"github.com/claude/repbook/internal/fallback"
	"github.com/claude/repbook/internal/ingest/preset"
	"github.com/claude/repbook/internal/ingest/sheet"
	"github.com/claude/repbook/internal/library"
	"github.com/claude/repbook/internal/models"
	"github.com/claude/repbook/internal/observability"
	"golang.org/x/sync/errgroup"
)

// Library origins reported by the loader.
const (
	LibraryFromFile    = "file"
	LibraryFromState   = "state"
	LibraryFromDerived = "derived"
)

// Fetcher loads the raw bytes at a source location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Sources names where presets come from. Empty locations are skipped.
type Sources struct {
	Programs  string
	Library   string
	Workbooks []string
}

// Report summarizes what a Load used.
type Report struct {
	ProgramsFallback bool
	ProgramsSchema   string
	WorkbooksLoaded  int
	WorkbooksSkipped int
	LibraryOrigin    string
}

// Loader builds a Catalog from configured sources.
type Loader struct {
	fetch   Fetcher
	sources Sources
	columns sheet.Columns
	log     *slog.Logger
}

// NewLoader creates a Loader reading sources through fetch.
func NewLoader(fetch Fetcher, sources Sources, log *slog.Logger) *Loader {
	return &Loader{fetch: fetch, sources: sources, columns: sheet.DefaultColumns, log: log}
}

// Load fetches all sources concurrently and assembles the catalog. It never
// fails: the programs file falls back to the builtin presets, a bad workbook
// is skipped, and a missing library is taken from current or derived from the
// programs. current is the library the device already has.
func (l *Loader) Load(ctx context.Context, current []models.LibraryEntry) (*Catalog, Report) {
	var (
		report    Report
		presets   []models.Program
		workbooks = make([]*models.Program, len(l.sources.Workbooks))
		explicit  []models.LibraryEntry
	)

	var g errgroup.Group
	g.Go(func() error {
		var schema preset.Schema
		programs, reason := fallback.Load(ctx, func(ctx context.Context) ([]models.Program, error) {
			data, err := l.fetch.Fetch(ctx, l.sources.Programs)
			if err != nil {
				return nil, err
			}
			programs, s, err := preset.Parse(data)
			if err != nil {
				return nil, err
			}
			if len(programs) == 0 {
				return nil, errors.New("catalog has no programs")
			}
			schema = s
			return programs, nil
		}, preset.Builtin())
		presets = programs
		report.ProgramsFallback = reason != nil
		report.ProgramsSchema = schema.String()
		l.record("programs", l.sources.Programs, reason)
		return nil
	})

	for i, location := range l.sources.Workbooks {
		g.Go(func() error {
			p, reason := fallback.Load(ctx, func(ctx context.Context) (*models.Program, error) {
				data, err := l.fetch.Fetch(ctx, location)
				if err != nil {
					return nil, err
				}
				sheets, err := sheet.ReadFile(bytes.NewReader(data), location)
				if err != nil {
					return nil, err
				}
				p, err := sheet.BuildProgram(sheet.ProgramName(location), sheets, l.columns)
				if err != nil {
					return nil, err
				}
				return &p, nil
			}, nil)
			workbooks[i] = p
			l.record("workbook", location, reason)
			return nil
		})
	}

	if l.sources.Library != "" {
		g.Go(func() error {
			entries, reason := fallback.Load(ctx, func(ctx context.Context) ([]models.LibraryEntry, error) {
				data, err := l.fetch.Fetch(ctx, l.sources.Library)
				if err != nil {
					return nil, err
				}
				entries, err := library.Parse(data)
				if err != nil {
					return nil, err
				}
				if len(entries) == 0 {
					return nil, errors.New("library is empty")
				}
				return entries, nil
			}, nil)
			explicit = entries
			l.record("library", l.sources.Library, reason)
			return nil
		})
	}

	_ = g.Wait()

	programs := presets
	for _, p := range workbooks {
		if p == nil {
			report.WorkbooksSkipped++
			continue
		}
		report.WorkbooksLoaded++
		programs = append(programs, *p)
	}
	cat := New(programs, nil)

	switch {
	case len(explicit) > 0:
		cat.SetLibrary(explicit)
		report.LibraryOrigin = LibraryFromFile
	case len(current) > 0:
		cat.SetLibrary(current)
		report.LibraryOrigin = LibraryFromState
	default:
		cat.DeriveLibrary()
		report.LibraryOrigin = LibraryFromDerived
	}

	observability.RecordCatalogSize(cat.Len(), len(cat.Library()))
	l.log.Info("catalog loaded",
		"programs", cat.Len(),
		"programs_fallback", report.ProgramsFallback,
		"schema", report.ProgramsSchema,
		"workbooks_loaded", report.WorkbooksLoaded,
		"workbooks_skipped", report.WorkbooksSkipped,
		"library", len(cat.Library()),
		"library_origin", report.LibraryOrigin,
	)
	return cat, report
}

func (l *Loader) record(kind, location string, reason error) {
	observability.RecordSourceLoad(kind, reason != nil)
	if reason != nil {
		l.log.Warn("source unavailable, using fallback", "kind", kind, "location", location, "error", reason)
	}
}
