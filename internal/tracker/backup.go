package tracker

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// maxBackupSize bounds an imported backup file.
const maxBackupSize = 16 << 20

var csvHeader = []string{"type", "date", "program_id", "day", "exercise", "set_index", "weight", "reps", "units"}

// ExportJSON writes the full state as a backup file.
func (t *Tracker) ExportJSON(w io.Writer) error {
	st := t.Snapshot()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	return nil
}

// ExportCSV writes one row per logged set in finished sessions. Weights are
// in the user's display units.
func (t *Tracker) ExportCSV(w io.Writer) error {
	st := t.Snapshot()
	unit := UnitLabel(st.Units)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range st.History {
		for i, set := range s.Sets {
			row := []string{
				"set",
				s.Date,
				s.ProgramID,
				s.Name,
				set.Exercise,
				strconv.Itoa(i + 1),
				strconv.FormatFloat(InUnits(set.WeightKg, st.Units), 'f', -1, 64),
				strconv.Itoa(set.Reps),
				unit,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportBackup overlays a backup onto the current state. Only the top-level
// keys present in the file are replaced. Anything that is not a JSON object
// with the expected field types yields ErrInvalidBackup and leaves the state
// untouched.
func (t *Tracker) ImportBackup(ctx context.Context, r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, maxBackupSize))
	if err != nil {
		return fmt.Errorf("reading backup: %w", err)
	}
	data = bytes.TrimSpace(data)

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil || keys == nil {
		return ErrInvalidBackup
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.st.clone()
	// Present keys replace wholesale rather than merge.
	if _, ok := keys["prs"]; ok {
		next.PRs = nil
	}
	if _, ok := keys["session"]; ok {
		next.Session = nil
	}
	if err := json.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	next.normalize()
	t.st = next
	t.log.Info("backup imported", "keys", len(keys), "history", len(next.History), "metrics", len(next.Metrics))
	return t.save(ctx)
}
