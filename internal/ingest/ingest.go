// Package ingest turns an uploaded or on-disk preset file into programs,
// dispatching on the file extension to the JSON catalog parser or the
// spreadsheet reader.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/claude/repbook/internal/ingest/preset"
	"github.com/claude/repbook/internal/ingest/sheet"
	"github.com/claude/repbook/internal/models"
)

// Input formats.
const (
	FormatJSON  = "json"
	FormatSheet = "sheet"
)

// ErrUnsupportedFormat is returned for files that are neither JSON catalogs
// nor spreadsheets.
var ErrUnsupportedFormat = errors.New("unsupported preset format")

// Result holds the outcome of an ingest operation.
type Result struct {
	File      string   `json:"file,omitempty"`
	Format    string   `json:"format"`
	Schema    string   `json:"schema,omitempty"`
	Programs  []string `json:"programs"`
	Days      int      `json:"days"`
	Exercises int      `json:"exercises"`
	Message   string   `json:"message,omitempty"`
}

// Format reports the input format for filename, or "" if unsupported.
func Format(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".xlsx", ".xlsm", ".csv":
		return FormatSheet
	default:
		return ""
	}
}

// File parses data as the preset file filename. A spreadsheet becomes one
// program named name, or the file stem when name is empty; a JSON catalog
// yields all of its programs.
func File(filename, name string, data []byte, cols sheet.Columns) ([]models.Program, Result, error) {
	res := Result{File: filepath.Base(filename), Format: Format(filename)}

	var programs []models.Program
	switch res.Format {
	case FormatJSON:
		ps, schema, err := preset.Parse(data)
		res.Schema = schema.String()
		if err != nil {
			return nil, res, err
		}
		programs = ps
	case FormatSheet:
		sheets, err := sheet.ReadFile(bytes.NewReader(data), filename)
		if err != nil {
			return nil, res, err
		}
		if name == "" {
			name = sheet.ProgramName(filename)
		}
		p, err := sheet.BuildProgram(name, sheets, cols)
		if err != nil {
			return nil, res, err
		}
		programs = []models.Program{p}
	default:
		return nil, res, fmt.Errorf("%w: %s", ErrUnsupportedFormat, res.File)
	}

	for _, p := range programs {
		res.Programs = append(res.Programs, p.Name)
		res.Days += len(p.Days)
		res.Exercises += p.ExerciseCount()
	}
	res.Message = fmt.Sprintf("%d programs, %d days, %d exercises", len(programs), res.Days, res.Exercises)
	return programs, res, nil
}
