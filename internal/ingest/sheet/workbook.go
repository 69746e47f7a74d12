package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/claude/repbook/internal/models"
	"github.com/xuri/excelize/v2"
)

// ErrNoExercises is returned when no sheet of a source produced an exercise.
var ErrNoExercises = errors.New("no exercises found")

// Sheet is one named grid of cells.
type Sheet struct {
	Name string
	Rows [][]string
}

// ReadWorkbook reads every sheet of an .xlsx workbook, in workbook order.
func ReadWorkbook(r io.Reader) ([]Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

// ReadCSV reads a CSV export as a single sheet called name.
func ReadCSV(r io.Reader, name string) ([]Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return []Sheet{{Name: name, Rows: rows}}, nil
}

// ReadFile picks the reader by file extension (.xlsx or .csv).
func ReadFile(r io.Reader, filename string) ([]Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return ReadWorkbook(r)
	case ".csv":
		return ReadCSV(r, ProgramName(filename))
	default:
		return nil, fmt.Errorf("unsupported spreadsheet type %q", filepath.Ext(filename))
	}
}

// ProgramName derives a program name from a file name: its base without extension.
func ProgramName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// BuildProgram extracts and assembles each sheet, then merges the days of
// all sheets into one program. Sheets without an exercise column contribute
// nothing.
func BuildProgram(name string, sheets []Sheet, cols Columns) (models.Program, error) {
	var days []models.Day
	for _, s := range sheets {
		records := ExtractRows(s.Rows, cols)
		if len(records) == 0 {
			continue
		}
		days = MergeDays(days, Assemble(records, s.Name))
	}
	if len(days) == 0 {
		return models.Program{}, fmt.Errorf("program %q: %w", name, ErrNoExercises)
	}
	return models.Program{
		ID:     name,
		Name:   name,
		Source: "sheet",
		Days:   days,
	}, nil
}
