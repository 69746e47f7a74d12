// Package upload pushes a local folder of preset files to a remote repbook
// server, remembering what was sent so reruns only upload changed files.
package upload

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/repbook/internal/ingest"
	"github.com/claude/repbook/internal/ingest/sheet"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesRejected int
	FilesErrored  int

	ProgramsSent int
	Results      []ingest.Result
	Rejected     []string
}

// Uploader walks a preset directory and POSTs each new or changed file to
// the server.
type Uploader struct {
	client *Client
	ledger *Ledger
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. client and ledger may be nil in dry-run mode;
// files are then parsed locally and nothing is sent or recorded.
func New(client *Client, ledger *Ledger, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{client: client, ledger: ledger, dir: dir, dryRun: dryRun, log: log}
}

// Run executes the upload. Rejected and unreadable files are counted and
// skipped; a transport failure that survives retries aborts the run.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	err := filepath.WalkDir(u.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != u.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || ingest.Format(path) == "" {
			return nil
		}
		u.stats.FilesTotal++
		return u.processFile(ctx, path)
	})
	return &u.stats, err
}

func (u *Uploader) processFile(ctx context.Context, path string) error {
	relPath, _ := filepath.Rel(u.dir, path)

	data, err := os.ReadFile(path)
	if err != nil {
		u.log.Warn("read failed", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	if u.dryRun {
		programs, res, err := ingest.File(path, "", data, sheet.DefaultColumns)
		if err != nil {
			u.log.Warn("would be rejected", "file", relPath, "error", err)
			u.stats.FilesRejected++
			u.stats.Rejected = append(u.stats.Rejected, relPath)
			return nil
		}
		u.stats.ProgramsSent += len(programs)
		u.stats.Results = append(u.stats.Results, res)
		return nil
	}

	hash, err := HashFile(path)
	if err != nil {
		u.log.Warn("hash failed", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	size := int64(len(data))

	server := u.client.ServerURL()
	uploaded, err := u.ledger.IsUploaded(ctx, server, relPath, size, hash)
	if err != nil {
		u.log.Warn("ledger check failed", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	if uploaded {
		u.stats.FilesSkipped++
		return nil
	}

	res, err := u.client.UploadFile(ctx, path, data)
	if IsRejected(err) {
		u.log.Warn("server rejected file", "file", relPath, "error", err)
		u.stats.FilesRejected++
		u.stats.Rejected = append(u.stats.Rejected, relPath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("uploading %s: %w", relPath, err)
	}

	if err := u.ledger.MarkUploaded(ctx, server, relPath, size, hash); err != nil {
		u.log.Warn("ledger update failed", "file", relPath, "error", err)
	}
	u.stats.FilesUploaded++
	u.stats.ProgramsSent += len(res.Programs)
	u.stats.Results = append(u.stats.Results, *res)
	u.log.Info("uploaded", "file", relPath, "programs", res.Programs)
	return nil
}
