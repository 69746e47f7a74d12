package sheet

import (
	"regexp"
	"strings"
)

// headerRowRe marks the row that carries the column labels.
var headerRowRe = regexp.MustCompile(`(?i)exercise`)

// Columns lists the candidate header names for each field, in priority order.
// Exercise is required; every other field is optional.
type Columns struct {
	Exercise []string
	Day      []string
	Sets     []string
	Reps     []string
	RPE      []string
	Rest     []string
	Notes    []string
	Muscle   []string
}

// DefaultColumns covers the header spellings seen in common program exports.
var DefaultColumns = Columns{
	Exercise: []string{"exercise", "exercise name", "lift", "movement"},
	Day:      []string{"day", "session", "workout"},
	Sets:     []string{"sets", "set count", "working sets"},
	Reps:     []string{"reps", "rep range", "repetitions", "set x rep", "rep"},
	RPE:      []string{"rpe", "rir", "intensity"},
	Rest:     []string{"rest", "rest (sec)", "rest interval"},
	Notes:    []string{"notes", "note", "comments", "cues"},
	Muscle:   []string{"muscle", "muscle group", "body part"},
}

// Record is one extracted row. Fields that were absent or blank are "".
type Record struct {
	Day      string
	Exercise string
	Sets     string
	Reps     string
	RPE      string
	Rest     string
	Notes    string
	Muscle   string
}

// columnIndex holds the resolved position of each field, -1 when unresolved.
type columnIndex struct {
	exercise, day, sets, reps, rpe, rest, notes, muscle int
}

// FindHeaderRow returns the first row with a cell mentioning "exercise", or 0.
func FindHeaderRow(grid [][]string) int {
	for i, row := range grid {
		for _, cell := range row {
			if headerRowRe.MatchString(cell) {
				return i
			}
		}
	}
	return 0
}

// ExtractRows reads one Record per row below the header row. If the exercise
// column cannot be resolved the whole grid yields nothing. Rows without an
// exercise name are dropped.
func ExtractRows(grid [][]string, cols Columns) []Record {
	if len(grid) == 0 {
		return nil
	}
	headerAt := FindHeaderRow(grid)
	headers := grid[headerAt]

	exercise, ok := ResolveColumn(headers, cols.Exercise)
	if !ok {
		return nil
	}
	idx := columnIndex{
		exercise: exercise,
		day:      optional(headers, cols.Day),
		sets:     optional(headers, cols.Sets),
		reps:     optional(headers, cols.Reps),
		rpe:      optional(headers, cols.RPE),
		rest:     optional(headers, cols.Rest),
		notes:    optional(headers, cols.Notes),
		muscle:   optional(headers, cols.Muscle),
	}

	var records []Record
	for _, row := range grid[headerAt+1:] {
		name := cell(row, idx.exercise)
		if name == "" {
			continue
		}
		records = append(records, Record{
			Exercise: name,
			Day:      cell(row, idx.day),
			Sets:     cell(row, idx.sets),
			Reps:     cell(row, idx.reps),
			RPE:      cell(row, idx.rpe),
			Rest:     cell(row, idx.rest),
			Notes:    cell(row, idx.notes),
			Muscle:   cell(row, idx.muscle),
		})
	}
	return records
}

func optional(headers, candidates []string) int {
	i, ok := ResolveColumn(headers, candidates)
	if !ok {
		return -1
	}
	return i
}

// cell reads a trimmed cell; short rows and unresolved columns read as "".
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
