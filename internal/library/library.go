// Package library builds the searchable exercise directory.
package library

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/claude/repbook/internal/models"
)

//go:embed base.json
var baseLibrary []byte

// ErrMissingExercises is returned when a library file has no exercises key.
var ErrMissingExercises = errors.New(`library file has no "exercises" array`)

type file struct {
	Exercises *[]models.LibraryEntry `json:"exercises"`
}

// Parse decodes an explicit library file of the form
// {"exercises": [{"name": ..., "muscle": ..., "demo": ..., "notes": ...}]}.
// Nameless entries are dropped and the result is deduplicated and sorted.
func Parse(data []byte) ([]models.LibraryEntry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("decoding library: %w", ErrMissingExercises)
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding library: %w", err)
	}
	if f.Exercises == nil {
		return nil, ErrMissingExercises
	}
	return merge(nil, *f.Exercises), nil
}

// Base returns the bundled starter library.
func Base() []models.LibraryEntry {
	entries, err := Parse(baseLibrary)
	if err != nil {
		panic(fmt.Sprintf("base library: %v", err))
	}
	return entries
}

// DeriveNames returns every distinct exercise name across programs, sorted.
func DeriveNames(programs []models.Program) []string {
	entries := Derive(nil, programs)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Derive builds a library from seed entries followed by every exercise in
// programs. The first occurrence of a name keeps its metadata.
func Derive(seed []models.LibraryEntry, programs []models.Program) []models.LibraryEntry {
	var seen []models.LibraryEntry
	seen = append(seen, seed...)
	for _, p := range programs {
		for _, d := range p.Days {
			for _, ex := range d.Exercises {
				seen = append(seen, models.LibraryEntry{Name: ex.Name, Muscle: ex.MuscleGroup, Notes: ex.Notes})
			}
		}
	}
	return merge(nil, seen)
}

// merge appends entries to dst keyed by name, first occurrence wins, and
// returns the result sorted by name (byte order, case-sensitive).
func merge(dst, entries []models.LibraryEntry) []models.LibraryEntry {
	byName := make(map[string]int, len(dst)+len(entries))
	for i, e := range dst {
		byName[e.Name] = i
	}
	for _, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			continue
		}
		if _, ok := byName[e.Name]; ok {
			continue
		}
		byName[e.Name] = len(dst)
		dst = append(dst, e)
	}
	slices.SortFunc(dst, func(a, b models.LibraryEntry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return dst
}

// Filter returns entries in muscle group muscle ("" or "All" for any) whose
// name contains query, case-insensitively.
func Filter(entries []models.LibraryEntry, muscle, query string) []models.LibraryEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.LibraryEntry{}
	for _, e := range entries {
		if muscle != "" && muscle != "All" && e.Muscle != muscle {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(e.Name), q) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Muscles returns the distinct non-empty muscle groups, sorted.
func Muscles(entries []models.LibraryEntry) []string {
	var muscles []string
	for _, e := range entries {
		if e.Muscle != "" && !slices.Contains(muscles, e.Muscle) {
			muscles = append(muscles, e.Muscle)
		}
	}
	slices.Sort(muscles)
	return muscles
}
