package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/claude/repbook/internal/models"
	"github.com/claude/repbook/internal/storage"
)

type fakeStore struct {
	programs  []models.Program
	logs      []storage.ImportLog
	upsertErr error
}

func (f *fakeStore) UpsertProgram(_ context.Context, p models.Program) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.programs = append(f.programs, p)
	return nil
}

func (f *fakeStore) InsertImportLog(_ context.Context, l storage.ImportLog) (int64, error) {
	f.logs = append(f.logs, l)
	return int64(len(f.logs)), nil
}

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writePresets lays out a presets directory with one file of each kind.
func writePresets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"catalog.json":       `{"programs":[{"id":"a","name":"A","days":[{"day":"Mon","exercises":[{"name":"Squat"}]}]},{"id":"b","name":"B","days":[]}]}`,
		"library.json":       `{"exercises":[{"name":"Squat"}]}`,
		"broken.json":        `{"programs":[{"id":1}]}`,
		"nested/PPL.csv":     "Day,Exercise\nPush,Bench Press\nPull,Row\n",
		"weights.csv":        "Date,Weight\n2024-01-01,80\n",
		"README.md":          "# presets",
		".hidden/secret.csv": "Exercise\nNope\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// TestImport verifies files are classified and programs upserted with an
// import log recording the run.
func TestImport(t *testing.T) {
	store := &fakeStore{}
	stats, err := New(store, quietLog(), false).Import(context.Background(), writePresets(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.FilesProcessed != 2 {
		t.Errorf("files_processed = %d, want 2", stats.FilesProcessed)
	}
	// library.json, weights.csv, README.md
	if stats.FilesSkipped != 3 {
		t.Errorf("files_skipped = %d, want 3", stats.FilesSkipped)
	}
	if stats.FilesErrored != 1 {
		t.Errorf("files_errored = %d, want 1", stats.FilesErrored)
	}
	if stats.ProgramsUpserted != 3 || len(store.programs) != 3 {
		t.Errorf("programs_upserted = %d, stored = %d, want 3", stats.ProgramsUpserted, len(store.programs))
	}

	if len(store.logs) != 1 {
		t.Fatalf("import logs = %d, want 1", len(store.logs))
	}
	if store.logs[0].Status != storage.ImportStatusPartial {
		t.Errorf("status = %q, want %q", store.logs[0].Status, storage.ImportStatusPartial)
	}
	if store.logs[0].Metadata == nil {
		t.Error("expected error metadata")
	}
}

// TestImportDryRun verifies nothing is written in dry-run mode.
func TestImportDryRun(t *testing.T) {
	stats, err := New(nil, quietLog(), true).Import(context.Background(), writePresets(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ProgramsParsed != 3 || stats.ProgramsUpserted != 0 {
		t.Errorf("parsed/upserted = %d/%d, want 3/0", stats.ProgramsParsed, stats.ProgramsUpserted)
	}
}

// TestImportUpsertFailure verifies a storage failure aborts and is logged.
func TestImportUpsertFailure(t *testing.T) {
	store := &fakeStore{upsertErr: errors.New("connection reset")}
	_, err := New(store, quietLog(), false).Import(context.Background(), writePresets(t))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.logs) != 1 || store.logs[0].Status != storage.ImportStatusError {
		t.Errorf("logs = %+v, want one error entry", store.logs)
	}
}
