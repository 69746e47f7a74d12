package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Exercise is one movement entry within a Day. Optional fields are empty
// strings when the source did not provide them.
type Exercise struct {
	Name        string     `json:"name"`
	MuscleGroup string     `json:"muscle,omitempty"`
	TargetSets  FlexString `json:"sets,omitempty"`
	TargetReps  FlexString `json:"reps,omitempty"`
	RPE         FlexString `json:"rpe,omitempty"`
	Rest        FlexString `json:"rest,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// Day is a single training session template. Exercises keep the order in
// which the source listed them.
type Day struct {
	Label     string     `json:"day"`
	Exercises []Exercise `json:"exercises"`
}

// Program is a named training plan. Days are unique by label and keep
// first-seen order. A Program is treated as read-only once assembled.
type Program struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Source string `json:"source,omitempty"`
	Days   []Day  `json:"days"`
}

// Day returns the day with the given label.
func (p Program) Day(label string) (Day, bool) {
	for _, d := range p.Days {
		if d.Label == label {
			return d, true
		}
	}
	return Day{}, false
}

// ExerciseCount returns the number of exercise entries across all days.
func (p Program) ExerciseCount() int {
	n := 0
	for _, d := range p.Days {
		n += len(d.Exercises)
	}
	return n
}

// ProgramSummary is the list view of a program.
type ProgramSummary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Source    string   `json:"source,omitempty"`
	Days      []string `json:"days"`
	Exercises int      `json:"exercises"`
}

// Summary returns the program's list view.
func (p Program) Summary() ProgramSummary {
	sum := ProgramSummary{ID: p.ID, Name: p.Name, Source: p.Source, Days: make([]string, 0, len(p.Days)), Exercises: p.ExerciseCount()}
	for _, d := range p.Days {
		sum.Days = append(sum.Days, d.Label)
	}
	return sum
}

// LibraryEntry describes one distinct exercise in the searchable directory.
type LibraryEntry struct {
	Name   string `json:"name"`
	Muscle string `json:"muscle,omitempty"`
	Demo   string `json:"demo,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// FlexString decodes from either a JSON string or a JSON number.
// Presets write sets, reps, RPE and rest both ways ("3" and 3).
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*f = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the underlying value.
func (f FlexString) String() string { return string(f) }
