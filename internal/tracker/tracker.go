// Package tracker owns the device's training log: settings, the active
// session, finished sessions, body metrics, personal records and the streak.
//
// All state lives in one State value owned by a Tracker. Every mutation is
// persisted through the Store before the method returns.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/repbook/internal/models"
	"github.com/claude/repbook/internal/state"
)

// Rest timer bounds, in seconds.
const (
	DefaultRestSec = 90
	MinRestSec     = 15
	MaxRestSec     = 600
)

const dateLayout = "2006-01-02"

var (
	ErrNoSession     = errors.New("no active session")
	ErrSetIndex      = errors.New("set index out of range")
	ErrInvalidUnits  = errors.New(`units must be "metric" or "imperial"`)
	ErrInvalidMetric = errors.New("weight must be a finite number")
	ErrInvalidBackup = errors.New("invalid backup file")
)

// Store persists the serialized state blob.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// State is the persisted application state. Field names match the blob
// written by earlier versions so old backups import cleanly.
type State struct {
	Units   string                `json:"units"`
	RestSec int                   `json:"restSec"`
	Split   string                `json:"split"`
	Library []models.LibraryEntry `json:"library"`
	Session *models.Session       `json:"session"`
	History []models.Session      `json:"history"`
	Metrics []models.BodyMetric   `json:"metrics"`
	PRs     map[string]float64    `json:"prs"`
	Streak  int                   `json:"streak"`
}

// Defaults seeds a fresh or unreadable state.
type Defaults struct {
	Units   string
	RestSec int
	Split   string
}

func (d Defaults) state() State {
	s := State{Units: d.Units, RestSec: d.RestSec, Split: d.Split}
	s.normalize()
	return s
}

func (s *State) normalize() {
	if s.Units != models.UnitsMetric && s.Units != models.UnitsImperial {
		s.Units = models.UnitsImperial
	}
	s.RestSec = clampRest(s.RestSec)
	if s.Split == "" {
		s.Split = "UpperLower"
	}
	if s.PRs == nil {
		s.PRs = map[string]float64{}
	}
}

func clampRest(sec int) int {
	if sec <= 0 {
		return DefaultRestSec
	}
	return max(MinRestSec, min(MaxRestSec, sec))
}

// Tracker serializes access to State and saves it after every change.
type Tracker struct {
	mu    sync.Mutex
	st    State
	store Store
	now   func() time.Time
	log   *slog.Logger
}

// Open loads the persisted state. A device with no saved state, or with a
// blob that does not parse, starts from defaults.
func Open(ctx context.Context, store Store, defaults Defaults, log *slog.Logger) (*Tracker, error) {
	t := &Tracker{st: defaults.state(), store: store, now: time.Now, log: log}

	data, err := store.Load(ctx)
	switch {
	case errors.Is(err, state.ErrNotFound):
		return t, nil
	case err != nil:
		return nil, fmt.Errorf("loading state: %w", err)
	}

	loaded := defaults.state()
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.Warn("saved state unreadable, starting fresh", "error", err)
		return t, nil
	}
	loaded.normalize()
	t.st = loaded
	return t, nil
}

func (t *Tracker) save(ctx context.Context) error {
	data, err := json.Marshal(t.st)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := t.store.Save(ctx, data); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

func (t *Tracker) today() string {
	return t.now().UTC().Format(dateLayout)
}

// Snapshot returns a deep copy of the current state.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.clone()
}

func (s State) clone() State {
	data, err := json.Marshal(s)
	if err != nil {
		return s
	}
	var out State
	if err := json.Unmarshal(data, &out); err != nil {
		return s
	}
	return out
}

// Units returns the display unit system.
func (t *Tracker) Units() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.Units
}

// Split returns the selected program name.
func (t *Tracker) Split() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.Split
}

// Library returns the library saved on this device.
func (t *Tracker) Library() []models.LibraryEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.LibraryEntry(nil), t.st.Library...)
}

// SetLibrary stores the library the catalog settled on.
func (t *Tracker) SetLibrary(ctx context.Context, lib []models.LibraryEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st.Library = append([]models.LibraryEntry(nil), lib...)
	return t.save(ctx)
}

// SetUnits switches between metric and imperial display.
func (t *Tracker) SetUnits(ctx context.Context, units string) error {
	if units != models.UnitsMetric && units != models.UnitsImperial {
		return ErrInvalidUnits
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st.Units = units
	return t.save(ctx)
}

// SetRestSeconds stores the rest interval clamped to [15, 600]; zero or
// negative input resets it to 90. It returns the stored value.
func (t *Tracker) SetRestSeconds(ctx context.Context, sec int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st.RestSec = clampRest(sec)
	return t.st.RestSec, t.save(ctx)
}

// SelectSplit records the program the user is following.
func (t *Tracker) SelectSplit(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("split name is empty")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st.Split = name
	return t.save(ctx)
}
