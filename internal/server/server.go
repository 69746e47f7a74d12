package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/claude/repbook/internal/catalog"
	"github.com/claude/repbook/internal/ingest/sheet"
	"github.com/claude/repbook/internal/models"
	"github.com/claude/repbook/internal/storage"
	"github.com/claude/repbook/internal/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Database is the optional Postgres layer. *storage.DB satisfies it.
type Database interface {
	UpsertProgram(ctx context.Context, p models.Program) error
	ArchiveSession(ctx context.Context, s models.Session) (int64, error)
	QueryArchivedSets(ctx context.Context, start, end time.Time, exercise string) ([]storage.ArchivedSet, error)
	GetArchiveStats(ctx context.Context) (*storage.ArchiveStats, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, limit int) ([]storage.ImportLog, error)
}

var _ Database = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	uploadMu sync.Mutex // orders catalog puts with the library refresh and save

	catalog *catalog.Catalog
	tracker *tracker.Tracker
	db      Database
	whois   WhoIsClient
	columns sheet.Columns
	log     *slog.Logger
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(cat *catalog.Catalog, tr *tracker.Tracker, log *slog.Logger) *Server {
	s := &Server{
		catalog: cat,
		tracker: tr,
		columns: sheet.DefaultColumns,
		log:     log,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetDatabase enables the Postgres-backed endpoints and mirrors uploads and
// finished sessions into db.
func (s *Server) SetDatabase(db Database) {
	s.db = db
}

// SetTailscale resolves request identities through the tailnet instead of
// the local dev identity.
func (s *Server) SetTailscale(c WhoIsClient) {
	s.whois = c
}

// MountMCP serves an MCP transport at /mcp behind the same identity and
// logging middleware as the REST API.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)

		// Catalog
		r.Get("/programs", s.handleListPrograms)
		r.Get("/programs/{name}", s.handleGetProgram)
		r.Post("/programs/upload", s.handleUploadProgram)
		r.Get("/library", s.handleLibrary)
		r.Get("/library/muscles", s.handleMuscles)

		// Tracker
		r.Get("/state", s.handleState)
		r.Put("/settings", s.handleSettings)
		r.Post("/session", s.handleStartSession)
		r.Delete("/session", s.handleDiscardSession)
		r.Post("/session/exercises", s.handleAddExercise)
		r.Put("/session/sets/{idx}", s.handleUpdateSet)
		r.Post("/session/finish", s.handleFinishSession)
		r.Post("/metrics", s.handleAddMetric)
		r.Get("/trends", s.handleTrends)
		r.Get("/records", s.handleRecords)
		r.Get("/history", s.handleHistory)

		// Backup
		r.Get("/export.json", s.handleExportJSON)
		r.Get("/export.csv", s.handleExportCSV)
		r.Post("/import", s.handleImport)

		// Postgres-backed
		r.Group(func(r chi.Router) {
			r.Use(s.requireDatabase)
			r.Get("/archive/sets", s.handleArchivedSets)
			r.Get("/archive/stats", s.handleArchiveStats)
			r.Get("/import-logs", s.handleImportLogs)
		})
	})
}

func (s *Server) requireDatabase(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.db == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "database not configured"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
