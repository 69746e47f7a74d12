package preset

import (
	"errors"
	"testing"
)

const v1Catalog = `{
  "PPL": {"workouts": {
    "Push": [{"name": "Bench Press", "muscle": "Chest"}, {"name": "  "}, {"name": "Dips", "muscle": "Triceps"}],
    "Pull": [{"name": "Row", "muscle": "Back"}],
    "Legs": [{"name": "Squat", "muscle": "Quads"}]
  }},
  "Bro": {"workouts": {"Chest": [{"name": "Fly"}]}}
}`

const v2Fixture = `{
  "programs": [
    {"id": "gzclp", "name": "GZCLP", "days": [
      {"day": "T1 Squat", "exercises": [
        {"name": "Squat", "sets": 5, "reps": "3", "rpe": "8", "rest": "180", "notes": "AMRAP last", "muscle": "Quads"},
        {"name": "Lat Pulldown", "sets": "3", "reps": "15+"}
      ]},
      {"day": "", "exercises": [{"name": "Bench Press"}]}
    ]},
    {"id": "nameless", "days": []},
    {"id": "gzclp-2", "name": "GZCLP", "days": [{"day": "A", "exercises": [{"name": "OHP"}]}]}
  ]
}`

// TestSniff covers both layouts and the payloads that must be rejected.
func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Schema
	}{
		{"v1", v1Catalog, SchemaV1},
		{"v2", v2Fixture, SchemaV2},
		{"programs not array", `{"programs": {"a": 1}}`, SchemaUnknown},
		{"missing workouts", `{"PPL": {"days": []}}`, SchemaUnknown},
		{"top-level array", `[{"name": "x"}]`, SchemaUnknown},
		{"empty object", `{}`, SchemaUnknown},
		{"not json", `<html>`, SchemaUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sniff([]byte(tt.data))
			if got != tt.want {
				t.Errorf("Sniff = %v, want %v", got, tt.want)
			}
			if tt.want == SchemaUnknown && !errors.Is(err, ErrUnknownSchema) {
				t.Errorf("err = %v, want ErrUnknownSchema", err)
			}
		})
	}
}

// TestParseV1KeepsKeyOrder verifies programs and days follow JSON key order
// and nameless exercises are dropped.
func TestParseV1KeepsKeyOrder(t *testing.T) {
	programs, schema, err := Parse([]byte(v1Catalog))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if schema != SchemaV1 {
		t.Errorf("schema = %v, want v1", schema)
	}
	if len(programs) != 2 || programs[0].Name != "PPL" || programs[1].Name != "Bro" {
		t.Fatalf("programs = %+v", programs)
	}
	ppl := programs[0]
	wantDays := []string{"Push", "Pull", "Legs"}
	for i, want := range wantDays {
		if ppl.Days[i].Label != want {
			t.Errorf("day[%d] = %q, want %q", i, ppl.Days[i].Label, want)
		}
	}
	push := ppl.Days[0]
	if len(push.Exercises) != 2 || push.Exercises[1].Name != "Dips" {
		t.Errorf("Push = %+v", push.Exercises)
	}
	if push.Exercises[0].MuscleGroup != "Chest" {
		t.Errorf("muscle = %q, want Chest", push.Exercises[0].MuscleGroup)
	}
}

// TestParseV2 verifies field mapping, numeric set counts, default day labels
// and last-write-wins on a repeated program name.
func TestParseV2(t *testing.T) {
	programs, schema, err := Parse([]byte(v2Fixture))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if schema != SchemaV2 {
		t.Errorf("schema = %v, want v2", schema)
	}
	// "nameless" falls back to its id; the second GZCLP replaces the first in place.
	if len(programs) != 2 {
		t.Fatalf("programs = %d, want 2", len(programs))
	}
	if programs[0].Name != "GZCLP" || programs[0].ID != "gzclp-2" {
		t.Errorf("programs[0] = %s/%s, want gzclp-2/GZCLP", programs[0].ID, programs[0].Name)
	}
	if programs[1].Name != "nameless" {
		t.Errorf("programs[1].Name = %q, want nameless", programs[1].Name)
	}
}

// TestParseV2Fields verifies every exercise field is carried through.
func TestParseV2Fields(t *testing.T) {
	data := `{"programs":[{"id":"g","name":"G","days":[
		{"day":"T1","exercises":[{"name":"Squat","sets":5,"reps":"3","rpe":"8","rest":"180","notes":"AMRAP last","muscle":"Quads"}]},
		{"day":"","exercises":[{"name":"Bench Press","sets":"3"}]}]}]}`
	programs, _, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p := programs[0]
	ex := p.Days[0].Exercises[0]
	if ex.TargetSets != "5" || ex.TargetReps != "3" || ex.RPE != "8" || ex.Rest != "180" ||
		ex.Notes != "AMRAP last" || ex.MuscleGroup != "Quads" {
		t.Errorf("exercise = %+v", ex)
	}
	if p.Days[1].Label != "Day 2" {
		t.Errorf("blank day label = %q, want Day 2", p.Days[1].Label)
	}
	if p.Days[1].Exercises[0].TargetSets != "3" {
		t.Errorf("string sets = %q, want 3", p.Days[1].Exercises[0].TargetSets)
	}
}

// TestParseV2NumericFields verifies numeric reps, RPE and rest are read as
// their decimal text instead of rejecting the catalog.
func TestParseV2NumericFields(t *testing.T) {
	data := `{"programs":[{"id":"n","name":"Numeric","days":[
		{"day":"A","exercises":[{"name":"Squat","sets":3,"reps":8,"rpe":7.5,"rest":120}]}]}]}`
	programs, _, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(programs) != 1 {
		t.Fatalf("programs = %d, want 1", len(programs))
	}
	ex := programs[0].Days[0].Exercises[0]
	if ex.TargetSets != "3" || ex.TargetReps != "8" || ex.RPE != "7.5" || ex.Rest != "120" {
		t.Errorf("exercise = %+v, want sets 3, reps 8, rpe 7.5, rest 120", ex)
	}
}

// TestParseWrongShapeDoesNotPanic verifies structurally broken payloads come
// back as errors.
func TestParseWrongShapeDoesNotPanic(t *testing.T) {
	for _, data := range []string{
		`{"programs": [{"days": "nope"}]}`,
		`{"PPL": {"workouts": {"Push": "nope"}}}`,
		`null`,
	} {
		if _, _, err := Parse([]byte(data)); err == nil {
			t.Errorf("Parse(%s) expected error", data)
		}
	}
}

// TestBuiltin verifies the bundled presets decode in their authored order.
func TestBuiltin(t *testing.T) {
	programs := Builtin()
	want := []string{"UpperLower", "PPL", "FullBody"}
	if len(programs) != len(want) {
		t.Fatalf("programs = %d, want %d", len(programs), len(want))
	}
	for i, name := range want {
		if programs[i].Name != name {
			t.Errorf("programs[%d] = %q, want %q", i, programs[i].Name, name)
		}
		if programs[i].Source != "builtin" {
			t.Errorf("source = %q, want builtin", programs[i].Source)
		}
	}
	if got := programs[0].Days[0].Label; got != "Upper A" {
		t.Errorf("first day = %q, want Upper A", got)
	}
}
