package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/repbook/internal/catalog"
	"github.com/claude/repbook/internal/library"
	"github.com/claude/repbook/internal/models"
	"github.com/claude/repbook/internal/storage"
	"github.com/claude/repbook/internal/tracker"
)

var (
	// ErrProgramNotFound is returned when no program matches a name or id.
	ErrProgramNotFound = errors.New("program not found")
	// ErrNoArchive is returned by archive queries when Postgres is not configured.
	ErrNoArchive = errors.New("session archive not configured")
)

// Records is the personal-record view: heaviest set per exercise plus the
// current day streak.
type Records struct {
	Streak  int                      `json:"streak"`
	Records []tracker.PersonalRecord `json:"records"`
}

// DataSource abstracts the data layer for MCP tools. Local (in-process) and
// HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListPrograms(ctx context.Context) ([]models.ProgramSummary, error)
	GetProgram(ctx context.Context, name string) (*models.Program, error)
	SearchLibrary(ctx context.Context, muscle, query string) ([]models.LibraryEntry, error)
	GetHistory(ctx context.Context, limit int) ([]models.Session, error)
	GetRecords(ctx context.Context) (*Records, error)
	QueryArchivedSets(ctx context.Context, start, end time.Time, exercise string) ([]storage.ArchivedSet, error)
}

// Archive is the subset of *storage.DB the local data source reads.
type Archive interface {
	QueryArchivedSets(ctx context.Context, start, end time.Time, exercise string) ([]storage.ArchivedSet, error)
}

// Local serves MCP queries from the in-process catalog and tracker.
type Local struct {
	Catalog *catalog.Catalog
	Tracker *tracker.Tracker
	// Archive is nil when Postgres is not configured.
	Archive Archive
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

func (l *Local) ListPrograms(_ context.Context) ([]models.ProgramSummary, error) {
	programs := l.Catalog.Programs()
	out := make([]models.ProgramSummary, 0, len(programs))
	for _, p := range programs {
		out = append(out, p.Summary())
	}
	return out, nil
}

func (l *Local) GetProgram(_ context.Context, name string) (*models.Program, error) {
	p, ok := l.Catalog.Program(name)
	if !ok {
		return nil, ErrProgramNotFound
	}
	return &p, nil
}

func (l *Local) SearchLibrary(_ context.Context, muscle, query string) ([]models.LibraryEntry, error) {
	return library.Filter(l.Catalog.Library(), muscle, query), nil
}

func (l *Local) GetHistory(_ context.Context, limit int) ([]models.Session, error) {
	return l.Tracker.History(limit), nil
}

func (l *Local) GetRecords(_ context.Context) (*Records, error) {
	return &Records{Streak: l.Tracker.Streak(), Records: l.Tracker.PersonalRecords()}, nil
}

func (l *Local) QueryArchivedSets(ctx context.Context, start, end time.Time, exercise string) ([]storage.ArchivedSet, error) {
	if l.Archive == nil {
		return nil, ErrNoArchive
	}
	return l.Archive.QueryArchivedSets(ctx, start, end, exercise)
}
