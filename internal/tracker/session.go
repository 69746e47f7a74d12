package tracker

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/claude/repbook/internal/models"
	"github.com/google/uuid"
)

// CustomWorkout names a session started implicitly by AddExercise.
const CustomWorkout = "Custom Workout"

func newSet(ex models.Exercise) models.LoggedSet {
	return models.LoggedSet{Exercise: ex.Name, Muscle: ex.MuscleGroup}
}

// StartSession replaces any active session with a new one holding one empty
// set per exercise.
func (t *Tracker) StartSession(ctx context.Context, programID, name string, exercises []models.Exercise) (models.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &models.Session{
		ID:        uuid.NewString(),
		ProgramID: programID,
		Name:      name,
		Date:      t.today(),
		Sets:      make([]models.LoggedSet, 0, len(exercises)),
	}
	for _, ex := range exercises {
		s.Sets = append(s.Sets, newSet(ex))
	}
	t.st.Session = s
	return cloneSession(*s), t.save(ctx)
}

// AddExercise appends an empty set for entry, starting a custom session when
// none is active.
func (t *Tracker) AddExercise(ctx context.Context, entry models.LibraryEntry) (models.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.st.Session == nil {
		t.st.Session = &models.Session{ID: uuid.NewString(), Name: CustomWorkout, Date: t.today()}
	}
	t.st.Session.Sets = append(t.st.Session.Sets, newSet(models.Exercise{Name: entry.Name, MuscleGroup: entry.Muscle}))
	return cloneSession(*t.st.Session), t.save(ctx)
}

// SetUpdate carries the values entered for one set. Weight is in the user's
// display units.
type SetUpdate struct {
	Weight float64
	Reps   int
	RPE    *float64
	Notes  string
}

// UpdateSet records entered values for the set at idx.
func (t *Tracker) UpdateSet(ctx context.Context, idx int, u SetUpdate) (models.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.st.Session == nil {
		return models.Session{}, ErrNoSession
	}
	if idx < 0 || idx >= len(t.st.Session.Sets) {
		return models.Session{}, ErrSetIndex
	}

	set := &t.st.Session.Sets[idx]
	set.WeightKg = 0
	if finite(u.Weight) && u.Weight > 0 {
		set.WeightKg = FromUnits(u.Weight, t.st.Units)
	}
	set.Reps = max(u.Reps, 0)
	set.RPE = nil
	if u.RPE != nil && finite(*u.RPE) && *u.RPE != 0 {
		rpe := *u.RPE
		set.RPE = &rpe
	}
	set.Notes = u.Notes
	return cloneSession(*t.st.Session), t.save(ctx)
}

// DiscardSession drops the active session without recording it.
func (t *Tracker) DiscardSession(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.st.Session == nil {
		return ErrNoSession
	}
	t.st.Session = nil
	return t.save(ctx)
}

// ActiveSession returns the session in progress, if any.
func (t *Tracker) ActiveSession() (models.Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.st.Session == nil {
		return models.Session{}, false
	}
	return cloneSession(*t.st.Session), true
}

// FinishSession closes the active session. Sets without both reps and weight
// are dropped; if none remain the session is discarded and saved is false.
// Otherwise personal records and the streak are updated and the session is
// appended to history.
func (t *Tracker) FinishSession(ctx context.Context) (finished models.Session, saved bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.st.Session
	if s == nil {
		return models.Session{}, false, ErrNoSession
	}

	kept := make([]models.LoggedSet, 0, len(s.Sets))
	for _, set := range s.Sets {
		if set.Reps > 0 && set.WeightKg > 0 {
			kept = append(kept, set)
		}
	}
	s.Sets = kept
	t.st.Session = nil

	if len(s.Sets) == 0 {
		return models.Session{}, false, t.save(ctx)
	}

	for _, set := range s.Sets {
		if set.WeightKg > t.st.PRs[set.Exercise] {
			t.st.PRs[set.Exercise] = set.WeightKg
		}
	}

	t.st.Streak = t.nextStreak()
	t.st.History = append(t.st.History, *s)
	return cloneSession(*s), true, t.save(ctx)
}

// nextStreak applies the streak rule against the last finished session:
// same day keeps the streak, one or two days later extends it, anything else
// restarts it at 1.
func (t *Tracker) nextStreak() int {
	if len(t.st.History) == 0 {
		return 1
	}
	last, err := time.Parse(dateLayout, t.st.History[len(t.st.History)-1].Date)
	if err != nil {
		return 1
	}
	today, _ := time.Parse(dateLayout, t.today())
	switch gap := int(today.Sub(last).Hours() / 24); {
	case gap == 0:
		return t.st.Streak
	case gap == 1 || gap == 2:
		return t.st.Streak + 1
	default:
		return 1
	}
}

// History returns finished sessions, most recent first. limit <= 0 means all.
func (t *Tracker) History(limit int) []models.Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.st.History)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]models.Session, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, cloneSession(t.st.History[i]))
	}
	return out
}

// PersonalRecord is the heaviest weight logged for an exercise.
type PersonalRecord struct {
	Exercise string  `json:"exercise"`
	WeightKg float64 `json:"weightKg"`
	Display  string  `json:"display"`
}

// PersonalRecords returns all records sorted by exercise name.
func (t *Tracker) PersonalRecords() []PersonalRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]PersonalRecord, 0, len(t.st.PRs))
	for name, kg := range t.st.PRs {
		out = append(out, PersonalRecord{Exercise: name, WeightKg: kg, Display: FormatWeight(kg, t.st.Units)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Exercise < out[j].Exercise })
	return out
}

// Streak returns the current day streak.
func (t *Tracker) Streak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.Streak
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func cloneSession(s models.Session) models.Session {
	s.Sets = append([]models.LoggedSet(nil), s.Sets...)
	return s
}
