package sheet

import (
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// TestResolveColumn covers exact and substring matching with case and spacing drift.
func TestResolveColumn(t *testing.T) {
	tests := []struct {
		name       string
		headers    []string
		candidates []string
		want       int
		wantOK     bool
	}{
		{
			name:       "exact match ignores case and spacing",
			headers:    []string{"Day", "  Exercise   Name ", "Reps"},
			candidates: []string{"exercise name"},
			want:       1,
			wantOK:     true,
		},
		{
			name:       "exact pass beats earlier substring hit",
			headers:    []string{"Rep Range", "Reps"},
			candidates: []string{"reps", "rep"},
			want:       1,
			wantOK:     true,
		},
		{
			name:       "candidate priority decides between headers",
			headers:    []string{"Movement", "Lift"},
			candidates: []string{"lift", "movement"},
			want:       1,
			wantOK:     true,
		},
		{
			name:       "substring pass when nothing is exact",
			headers:    []string{"Day", "Target Reps (range)"},
			candidates: []string{"reps"},
			want:       1,
			wantOK:     true,
		},
		{
			name:       "not found",
			headers:    []string{"Day", "Weight"},
			candidates: []string{"exercise", "lift"},
			want:       -1,
			wantOK:     false,
		},
		{
			name:       "no candidates",
			headers:    []string{"Exercise"},
			candidates: nil,
			want:       -1,
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveColumn(tt.headers, tt.candidates)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ResolveColumn() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// TestNormalizeHeader verifies lower-casing and whitespace collapsing.
func TestNormalizeHeader(t *testing.T) {
	if got := NormalizeHeader("  Set \t x   REP "); got != "set x rep" {
		t.Errorf("NormalizeHeader = %q, want %q", got, "set x rep")
	}
}

// TestExtractPushScenario is the reference grid: the header row has no
// "exercise" cell so row 0 is used, "Lift" resolves as the exercise column and
// the blank trailing row is dropped.
func TestExtractPushScenario(t *testing.T) {
	grid := [][]string{
		{"Day", "Lift", "Set x Rep"},
		{"Push", "Bench Press", "4x8"},
		{"", "", ""},
	}
	cols := Columns{
		Day:      []string{"day"},
		Exercise: []string{"exercise", "lift", "movement"},
		Reps:     []string{"set x rep"},
	}

	records := ExtractRows(grid, cols)
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}

	days := Assemble(records, "Sheet1")
	if len(days) != 1 {
		t.Fatalf("days = %d, want 1", len(days))
	}
	if days[0].Label != "Push" {
		t.Errorf("day label = %q, want Push", days[0].Label)
	}
	if len(days[0].Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(days[0].Exercises))
	}
	ex := days[0].Exercises[0]
	if ex.Name != "Bench Press" {
		t.Errorf("name = %q, want Bench Press", ex.Name)
	}
	if ex.TargetReps != "4x8" {
		t.Errorf("reps = %q, want 4x8", ex.TargetReps)
	}
	if ex.RPE != "" || ex.Rest != "" || ex.Notes != "" || ex.TargetSets != "" {
		t.Errorf("unresolved optional fields should be empty, got %+v", ex)
	}
}

// TestExtractHeaderNotOnFirstRow verifies the header row is located below title rows.
func TestExtractHeaderNotOnFirstRow(t *testing.T) {
	grid := [][]string{
		{"5/3/1 Boring But Big"},
		{"Week 1"},
		{"Session", "Exercise", "Sets", "Reps", "Notes"},
		{"Squat Day", "Back Squat", "5", "5", " paused "},
		{"Squat Day", "Leg Curl", "3"},
	}

	records := ExtractRows(grid, DefaultColumns)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Day != "Squat Day" || records[0].Sets != "5" || records[0].Notes != "paused" {
		t.Errorf("record[0] = %+v", records[0])
	}
	// Short row: missing trailing cells read as empty.
	if records[1].Reps != "" || records[1].Notes != "" {
		t.Errorf("record[1] = %+v, want empty reps and notes", records[1])
	}
}

// TestExtractNeverEmitsEmptyNames checks that rows without a name are dropped,
// including whitespace-only names and a repeated header row.
func TestExtractNeverEmitsEmptyNames(t *testing.T) {
	grid := [][]string{
		{"Exercise", "Reps"},
		{"   ", "10"},
		{"Row", "8"},
		{},
		{"Exercise", "Reps"},
		{"", ""},
	}
	records := ExtractRows(grid, DefaultColumns)
	for _, r := range records {
		if strings.TrimSpace(r.Exercise) == "" {
			t.Errorf("record with empty name: %+v", r)
		}
	}
	// The second header-like row is treated as data.
	if len(records) != 2 {
		t.Errorf("records = %d, want 2", len(records))
	}
}

// TestExtractWithoutExerciseColumn verifies a grid lacking any exercise-like
// column yields nothing at all.
func TestExtractWithoutExerciseColumn(t *testing.T) {
	grid := [][]string{
		{"Date", "Weight", "Body Fat"},
		{"2025-01-01", "80", "15"},
	}
	if records := ExtractRows(grid, DefaultColumns); len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
	if records := ExtractRows(nil, DefaultColumns); len(records) != 0 {
		t.Errorf("records from nil grid = %d, want 0", len(records))
	}
}

// TestAssembleFirstSeenOrder verifies day and exercise order follow the input,
// not any sorting, and that blank day labels use the fallback label.
func TestAssembleFirstSeenOrder(t *testing.T) {
	records := []Record{
		{Day: "Pull", Exercise: "Row"},
		{Day: "Push", Exercise: "Bench Press"},
		{Day: "Pull", Exercise: "Curl"},
		{Exercise: "Plank"},
		{Day: "Push", Exercise: "Bench Press"},
	}
	days := Assemble(records, "Core")

	wantLabels := []string{"Pull", "Push", "Core"}
	if len(days) != len(wantLabels) {
		t.Fatalf("days = %d, want %d", len(days), len(wantLabels))
	}
	for i, want := range wantLabels {
		if days[i].Label != want {
			t.Errorf("days[%d] = %q, want %q", i, days[i].Label, want)
		}
	}
	if got := days[0].Exercises; len(got) != 2 || got[0].Name != "Row" || got[1].Name != "Curl" {
		t.Errorf("Pull exercises = %+v", got)
	}
	// Same name twice in a day stays two entries.
	if got := len(days[1].Exercises); got != 2 {
		t.Errorf("Push exercises = %d, want 2", got)
	}
}

// TestMergeDaysConcatenates verifies colliding day labels across sheets
// accumulate exercises instead of replacing them.
func TestMergeDaysConcatenates(t *testing.T) {
	a := Assemble([]Record{{Day: "Upper", Exercise: "Bench"}, {Day: "Lower", Exercise: "Squat"}}, "A")
	b := Assemble([]Record{{Day: "Upper", Exercise: "Row"}, {Day: "Arms", Exercise: "Curl"}}, "B")

	merged := MergeDays(a, b)
	if len(merged) != 3 {
		t.Fatalf("days = %d, want 3", len(merged))
	}
	upper := merged[0]
	if upper.Label != "Upper" || len(upper.Exercises) != 2 || upper.Exercises[1].Name != "Row" {
		t.Errorf("Upper = %+v", upper)
	}
	if merged[2].Label != "Arms" {
		t.Errorf("merged[2] = %q, want Arms", merged[2].Label)
	}
}

// TestBuildProgramNoExercises verifies that a source where no sheet resolves
// an exercise column is rejected as a whole.
func TestBuildProgramNoExercises(t *testing.T) {
	sheets := []Sheet{{Name: "Log", Rows: [][]string{{"Date", "Weight"}, {"x", "1"}}}}
	_, err := BuildProgram("Log", sheets, DefaultColumns)
	if !errors.Is(err, ErrNoExercises) {
		t.Errorf("err = %v, want ErrNoExercises", err)
	}
}

// TestReadCSV verifies CSV exports become a single sheet named after the file.
func TestReadCSV(t *testing.T) {
	csvData := "\xef\xbb\xbfDay,Exercise,Sets,Reps\nA,Squat,3,5\nA,\"Bench, Paused\",3,5\n"
	sheets, err := ReadFile(strings.NewReader(csvData), "/tmp/Starting Strength.csv")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(sheets) != 1 || sheets[0].Name != "Starting Strength" {
		t.Fatalf("sheets = %+v", sheets)
	}
	p, err := BuildProgram("Starting Strength", sheets, DefaultColumns)
	if err != nil {
		t.Fatalf("BuildProgram: %v", err)
	}
	day, ok := p.Day("A")
	if !ok || len(day.Exercises) != 2 || day.Exercises[1].Name != "Bench, Paused" {
		t.Errorf("day A = %+v", day)
	}
}

// TestReadFileUnsupported verifies unknown extensions are rejected.
func TestReadFileUnsupported(t *testing.T) {
	if _, err := ReadFile(strings.NewReader(""), "program.ods"); err == nil {
		t.Error("expected error for .ods")
	}
}

// TestReadWorkbookMultiSheet builds an .xlsx in memory and checks that sheet
// names act as fallback day labels and colliding labels merge.
func TestReadWorkbookMultiSheet(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Upper"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.NewSheet("Lower"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Upper", "A1", &[]any{"Exercise", "Sets", "Reps"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Upper", "A2", &[]any{"Bench Press", 4, "6-8"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Lower", "A1", &[]any{"Day", "Movement"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Lower", "A2", &[]any{"Upper", "Chin-up"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Lower", "A3", &[]any{"", "Deadlift"}); err != nil {
		t.Fatal(err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	sheets, err := ReadWorkbook(buf)
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	p, err := BuildProgram("UL", sheets, DefaultColumns)
	if err != nil {
		t.Fatalf("BuildProgram: %v", err)
	}
	if len(p.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(p.Days))
	}
	upper, _ := p.Day("Upper")
	if len(upper.Exercises) != 2 || upper.Exercises[1].Name != "Chin-up" {
		t.Errorf("Upper = %+v", upper)
	}
	if upper.Exercises[0].TargetSets != "4" || upper.Exercises[0].TargetReps != "6-8" {
		t.Errorf("Bench Press = %+v", upper.Exercises[0])
	}
	lower, _ := p.Day("Lower")
	if len(lower.Exercises) != 1 || lower.Exercises[0].Name != "Deadlift" {
		t.Errorf("Lower = %+v", lower)
	}
}
