package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/claude/repbook/internal/models"
	"github.com/claude/repbook/internal/tracker"
	"github.com/go-chi/chi/v5"
)

// trackerStatus maps tracker errors to HTTP status codes.
func trackerStatus(err error) int {
	switch {
	case errors.Is(err, tracker.ErrNoSession):
		return http.StatusConflict
	case errors.Is(err, tracker.ErrSetIndex):
		return http.StatusNotFound
	case errors.Is(err, tracker.ErrInvalidUnits),
		errors.Is(err, tracker.ErrInvalidMetric),
		errors.Is(err, tracker.ErrInvalidBackup):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeTrackerError(w http.ResponseWriter, err error) {
	status := trackerStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("tracker error", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

type startSessionRequest struct {
	Program   string   `json:"program"`
	Day       string   `json:"day"`
	Name      string   `json:"name"`
	Exercises []string `json:"exercises"`
}

// handleStartSession starts a session from a program day, or a named custom
// session from a list of exercise names.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var (
		programID string
		name      = strings.TrimSpace(req.Name)
		exercises []models.Exercise
	)
	if req.Program != "" {
		p, ok := s.catalog.Program(req.Program)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
			return
		}
		day, ok := p.Day(req.Day)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "day not found"})
			return
		}
		programID = p.ID
		exercises = day.Exercises
		if name == "" {
			name = day.Label
		}
	} else {
		for _, n := range req.Exercises {
			e := s.exerciseFor(n, "")
			exercises = append(exercises, models.Exercise{Name: e.Name, MuscleGroup: e.Muscle})
		}
	}
	if name == "" {
		name = tracker.CustomWorkout
	}

	session, err := s.tracker.StartSession(r.Context(), programID, name, exercises)
	if err != nil {
		s.writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DiscardSession(r.Context()); err != nil {
		s.writeTrackerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addExerciseRequest struct {
	Name   string `json:"name"`
	Muscle string `json:"muscle"`
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req addExerciseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	entry := models.LibraryEntry{Name: "Custom", Muscle: "Other"}
	if name := strings.TrimSpace(req.Name); name != "" {
		entry = s.exerciseFor(name, req.Muscle)
	} else if lib := s.catalog.Library(); len(lib) > 0 {
		entry = lib[0]
	}

	session, err := s.tracker.AddExercise(r.Context(), entry)
	if err != nil {
		s.writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type updateSetRequest struct {
	Weight float64  `json:"weight"`
	Reps   int      `json:"reps"`
	RPE    *float64 `json:"rpe"`
	Notes  string   `json:"notes"`
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set index"})
		return
	}
	var req updateSetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	session, err := s.tracker.UpdateSet(r.Context(), idx, tracker.SetUpdate{
		Weight: req.Weight,
		Reps:   req.Reps,
		RPE:    req.RPE,
		Notes:  req.Notes,
	})
	if err != nil {
		s.writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type finishResponse struct {
	Saved   bool            `json:"saved"`
	Session *models.Session `json:"session,omitempty"`
	Streak  int             `json:"streak"`
}

// handleFinishSession closes the session and, with Postgres configured,
// archives its sets.
func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	session, saved, err := s.tracker.FinishSession(r.Context())
	if err != nil {
		s.writeTrackerError(w, err)
		return
	}

	resp := finishResponse{Saved: saved, Streak: s.tracker.Streak()}
	if saved {
		resp.Session = &session
		if s.db != nil {
			if _, err := s.db.ArchiveSession(r.Context(), session); err != nil {
				s.log.Error("archiving session", "session", session.ID, "error", err)
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type addMetricRequest struct {
	Weight  *float64 `json:"weight"`
	BodyFat *float64 `json:"bodyFat"`
}

func (s *Server) handleAddMetric(w http.ResponseWriter, r *http.Request) {
	var req addMetricRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Weight == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight is required"})
		return
	}

	m, err := s.tracker.AddMetric(r.Context(), *req.Weight, req.BodyFat)
	if err != nil {
		s.writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Trends())
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"streak":  s.tracker.Streak(),
		"records": s.tracker.PersonalRecords(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	writeJSON(w, http.StatusOK, s.tracker.History(limit))
}
