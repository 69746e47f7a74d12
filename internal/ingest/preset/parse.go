package preset

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/claude/repbook/internal/models"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// v1Program is one entry of a V1 catalog. Day order follows the JSON keys.
type v1Program struct {
	Workouts *orderedmap.OrderedMap[string, []models.Exercise] `json:"workouts"`
}

type v2Catalog struct {
	Programs []v2Program `json:"programs"`
}

type v2Program struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Days []v2Day `json:"days"`
}

type v2Day struct {
	Day       string            `json:"day"`
	Exercises []models.Exercise `json:"exercises"`
}

// Parse sniffs the layout of data and decodes it into programs. Programs and
// days keep their source order. A repeated program name or day label replaces
// the earlier one in place. Exercises without a name are dropped.
func Parse(data []byte) ([]models.Program, Schema, error) {
	schema, err := Sniff(data)
	if err != nil {
		return nil, SchemaUnknown, err
	}

	var programs []models.Program
	switch schema {
	case SchemaV1:
		programs, err = parseV1(data)
	case SchemaV2:
		programs, err = parseV2(data)
	}
	if err != nil {
		return nil, schema, fmt.Errorf("decoding %s catalog: %w", schema, err)
	}
	return programs, schema, nil
}

func parseV1(data []byte) ([]models.Program, error) {
	top := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, top); err != nil {
		return nil, err
	}

	var programs []models.Program
	for pair := top.Oldest(); pair != nil; pair = pair.Next() {
		var p v1Program
		if err := json.Unmarshal(pair.Value, &p); err != nil {
			return nil, fmt.Errorf("program %q: %w", pair.Key, err)
		}
		program := models.Program{ID: pair.Key, Name: pair.Key, Source: "preset"}
		if p.Workouts != nil {
			for day := p.Workouts.Oldest(); day != nil; day = day.Next() {
				program.Days = putDay(program.Days, models.Day{
					Label:     strings.TrimSpace(day.Key),
					Exercises: named(day.Value),
				})
			}
		}
		programs = putProgram(programs, program)
	}
	return programs, nil
}

func parseV2(data []byte) ([]models.Program, error) {
	var catalog v2Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, err
	}

	var programs []models.Program
	for _, p := range catalog.Programs {
		name := strings.TrimSpace(p.Name)
		id := strings.TrimSpace(p.ID)
		if name == "" {
			name = id
		}
		if name == "" {
			continue
		}
		if id == "" {
			id = name
		}
		program := models.Program{ID: id, Name: name, Source: "preset"}
		for i, d := range p.Days {
			label := strings.TrimSpace(d.Day)
			if label == "" {
				label = fmt.Sprintf("Day %d", i+1)
			}
			program.Days = putDay(program.Days, models.Day{Label: label, Exercises: named(d.Exercises)})
		}
		programs = putProgram(programs, program)
	}
	return programs, nil
}

// named drops entries without a name and trims the rest.
func named(in []models.Exercise) []models.Exercise {
	out := make([]models.Exercise, 0, len(in))
	for _, ex := range in {
		ex.Name = strings.TrimSpace(ex.Name)
		if ex.Name == "" {
			continue
		}
		out = append(out, ex)
	}
	return out
}

func putDay(days []models.Day, d models.Day) []models.Day {
	for i := range days {
		if days[i].Label == d.Label {
			days[i] = d
			return days
		}
	}
	return append(days, d)
}

func putProgram(programs []models.Program, p models.Program) []models.Program {
	for i := range programs {
		if programs[i].Name == p.Name {
			programs[i] = p
			return programs
		}
	}
	return append(programs, p)
}
