package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/claude/repbook/internal/ingest"
	"github.com/claude/repbook/internal/ingest/preset"
	"github.com/claude/repbook/internal/ingest/sheet"
	"github.com/claude/repbook/internal/library"
	"github.com/claude/repbook/internal/models"
	"github.com/claude/repbook/internal/observability"
	"github.com/claude/repbook/internal/storage"
	"github.com/go-chi/chi/v5"
)

// maxUploadSize bounds an uploaded preset file.
const maxUploadSize = 32 << 20

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	programs := s.catalog.Programs()
	out := make([]models.ProgramSummary, 0, len(programs))
	for _, p := range programs {
		out = append(out, p.Summary())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	p, ok := s.catalog.Program(chi.URLParam(r, "name"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleUploadProgram ingests a spreadsheet or JSON catalog from the request
// body. The file type comes from the filename query parameter or, failing
// that, the Content-Type. Uploaded programs replace same-named ones.
func (s *Server) handleUploadProgram(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	filename := uploadFilename(r, name)

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return
	}

	programs, result, err := ingest.File(filename, name, data, s.columns)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ingest.ErrUnsupportedFormat) {
			status = http.StatusUnsupportedMediaType
		}
		s.logImport(filename, len(programs), time.Since(start), err)
		writeJSON(w, status, map[string]string{"error": uploadError(err)})
		return
	}

	s.uploadMu.Lock()
	for _, p := range programs {
		p.Source = "upload"
		s.catalog.Put(p)
		if s.db != nil {
			if err := s.db.UpsertProgram(r.Context(), p); err != nil {
				s.log.Error("storing uploaded program", "program", p.Name, "error", err)
			}
		}
	}
	lib, changed := s.catalog.RefreshLibrary()
	if changed {
		if err := s.tracker.SetLibrary(r.Context(), lib); err != nil {
			s.log.Error("saving library", "error", err)
		}
	}
	s.uploadMu.Unlock()

	observability.RecordCatalogSize(s.catalog.Len(), len(lib))
	s.logImport(filename, len(programs), time.Since(start), nil)

	s.log.Info("programs uploaded", "file", filename, "programs", result.Programs, "exercises", result.Exercises)
	writeJSON(w, http.StatusOK, result)
}

// uploadFilename returns the name used to pick a parser for an upload.
func uploadFilename(r *http.Request, name string) string {
	if f := r.URL.Query().Get("filename"); f != "" {
		return f
	}
	if name == "" {
		name = "upload"
	}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/json":
		return name + ".json"
	case "text/csv":
		return name + ".csv"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return name + ".xlsx"
	default:
		return name
	}
}

func uploadError(err error) string {
	switch {
	case errors.Is(err, sheet.ErrNoExercises):
		return "no exercise column found in any sheet"
	case errors.Is(err, preset.ErrUnknownSchema):
		return "JSON is not a program catalog"
	default:
		return err.Error()
	}
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, library.Filter(s.catalog.Library(), q.Get("muscle"), q.Get("q")))
}

func (s *Server) handleMuscles(w http.ResponseWriter, r *http.Request) {
	muscles := library.Muscles(s.catalog.Library())
	if muscles == nil {
		muscles = []string{}
	}
	writeJSON(w, http.StatusOK, muscles)
}

// logImport records an upload to the import_logs table when Postgres is on.
func (s *Server) logImport(filename string, programs int, elapsed time.Duration, importErr error) {
	if s.db == nil {
		return
	}
	ms := int(elapsed.Milliseconds())
	entry := storage.ImportLog{
		Source:           "upload:" + filename,
		Status:           storage.ImportStatusSuccess,
		FilesProcessed:   1,
		ProgramsUpserted: programs,
		DurationMs:       &ms,
	}
	if importErr != nil {
		msg := importErr.Error()
		entry.Status = storage.ImportStatusError
		entry.FilesProcessed = 0
		entry.FilesErrored = 1
		entry.ErrorMessage = &msg
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()
	if _, err := s.db.InsertImportLog(ctx, entry); err != nil {
		s.log.Error("failed to log import", "source", entry.Source, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// exerciseFor resolves a library entry by name, falling back to the given
// muscle when the library does not know the exercise.
func (s *Server) exerciseFor(name, muscle string) models.LibraryEntry {
	for _, e := range s.catalog.Library() {
		if e.Name == name {
			if muscle != "" {
				e.Muscle = muscle
			}
			return e
		}
	}
	return models.LibraryEntry{Name: name, Muscle: muscle}
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
