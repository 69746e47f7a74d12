package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

type settingsRequest struct {
	Units   *string `json:"units"`
	RestSec *int    `json:"restSec"`
	Split   *string `json:"split"`
}

type settingsResponse struct {
	Units   string `json:"units"`
	RestSec int    `json:"restSec"`
	Split   string `json:"split"`
}

// handleSettings applies the fields present in the body. The split must name
// a program in the catalog.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx := r.Context()
	if req.Split != nil {
		p, ok := s.catalog.Program(*req.Split)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown program " + strconv.Quote(*req.Split)})
			return
		}
		if err := s.tracker.SelectSplit(ctx, p.Name); err != nil {
			s.writeTrackerError(w, err)
			return
		}
	}
	if req.Units != nil {
		if err := s.tracker.SetUnits(ctx, *req.Units); err != nil {
			s.writeTrackerError(w, err)
			return
		}
	}
	if req.RestSec != nil {
		if _, err := s.tracker.SetRestSeconds(ctx, *req.RestSec); err != nil {
			s.writeTrackerError(w, err)
			return
		}
	}

	st := s.tracker.Snapshot()
	writeJSON(w, http.StatusOK, settingsResponse{Units: st.Units, RestSec: st.RestSec, Split: st.Split})
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", attachment("json"))
	if err := s.tracker.ExportJSON(w); err != nil {
		s.log.Error("export failed", "format", "json", "error", err)
	}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", attachment("csv"))
	if err := s.tracker.ExportCSV(w); err != nil {
		s.log.Error("export failed", "format", "csv", "error", err)
	}
}

func attachment(ext string) string {
	return fmt.Sprintf(`attachment; filename="fitness-export-%s.%s"`, time.Now().UTC().Format("2006-01-02"), ext)
}

// handleImport restores a JSON backup. A corrupt file is the one failure the
// user sees: 400 with the state untouched.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.ImportBackup(r.Context(), r.Body); err != nil {
		s.writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

func (s *Server) handleArchivedSets(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sets, err := s.db.QueryArchivedSets(r.Context(), start, end, r.URL.Query().Get("exercise"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleArchiveStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetArchiveStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.db.QueryImportLogs(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// contextWithTimeout returns a background context with a 5-second timeout for async logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}
