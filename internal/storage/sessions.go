package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/repbook/internal/models"
)

// ArchivedSet is one logged set of a finished session as stored in Postgres.
type ArchivedSet struct {
	SessionID    string    `json:"session_id"`
	SessionDate  time.Time `json:"session_date"`
	ProgramID    string    `json:"program_id"`
	SessionName  string    `json:"session_name"`
	SetNumber    int       `json:"set_number"`
	ExerciseName string    `json:"exercise_name"`
	Muscle       string    `json:"muscle"`
	WeightKg     float64   `json:"weight_kg"`
	Reps         int       `json:"reps"`
	RPE          *float64  `json:"rpe"`
	Notes        string    `json:"notes"`
}

// ArchiveSession batch-inserts the sets of a finished session. Re-archiving
// the same session is a no-op. Returns count inserted.
func (db *DB) ArchiveSession(ctx context.Context, s models.Session) (int64, error) {
	if len(s.Sets) == 0 {
		return 0, nil
	}
	date, err := time.Parse("2006-01-02", s.Date)
	if err != nil {
		return 0, fmt.Errorf("parsing session date %q: %w", s.Date, err)
	}

	query := `INSERT INTO session_sets (session_id, session_date, program_id, session_name,
		set_number, exercise_name, muscle, weight_kg, reps, rpe, notes) VALUES `
	args := make([]any, 0, len(s.Sets)*11)
	valueStrings := make([]string, 0, len(s.Sets))

	for i, set := range s.Sets {
		base := i * 11
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
			base+7, base+8, base+9, base+10, base+11,
		))
		args = append(args, s.ID, date, s.ProgramID, s.Name,
			i+1, set.Exercise, set.Muscle, set.WeightKg, set.Reps, set.RPE, set.Notes)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("archiving session %s: %w", s.ID, err)
	}
	return tag.RowsAffected(), nil
}

// QueryArchivedSets retrieves archived sets in a date range, optionally for
// one exercise.
func (db *DB) QueryArchivedSets(ctx context.Context, start, end time.Time, exercise string) ([]ArchivedSet, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT session_id, session_date, program_id, session_name, set_number,
		 exercise_name, muscle, weight_kg, reps, rpe, notes
		 FROM session_sets
		 WHERE session_date >= $1 AND session_date < $2
		 AND ($3 = '' OR exercise_name = $3)
		 ORDER BY session_date DESC, session_id, set_number ASC`,
		start, end, exercise)
	if err != nil {
		return nil, fmt.Errorf("querying archived sets: %w", err)
	}
	defer rows.Close()

	var result []ArchivedSet
	for rows.Next() {
		var r ArchivedSet
		if err := rows.Scan(&r.SessionID, &r.SessionDate, &r.ProgramID, &r.SessionName, &r.SetNumber,
			&r.ExerciseName, &r.Muscle, &r.WeightKg, &r.Reps, &r.RPE, &r.Notes); err != nil {
			return nil, fmt.Errorf("scanning archived set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// ArchiveStats holds aggregate statistics about the session archive.
type ArchiveStats struct {
	TotalSessions int64      `json:"total_sessions"`
	TotalSets     int64      `json:"total_sets"`
	TotalVolumeKg float64    `json:"total_volume_kg"`
	EarliestDate  *time.Time `json:"earliest_date"`
	LatestDate    *time.Time `json:"latest_date"`
}

// GetArchiveStats returns aggregate statistics for the session archive.
func (db *DB) GetArchiveStats(ctx context.Context) (*ArchiveStats, error) {
	stats := &ArchiveStats{}
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT session_id), COUNT(*), COALESCE(SUM(weight_kg * reps), 0),
		 MIN(session_date), MAX(session_date)
		 FROM session_sets`,
	).Scan(&stats.TotalSessions, &stats.TotalSets, &stats.TotalVolumeKg, &stats.EarliestDate, &stats.LatestDate)
	if err != nil {
		return nil, fmt.Errorf("querying archive stats: %w", err)
	}
	return stats, nil
}
