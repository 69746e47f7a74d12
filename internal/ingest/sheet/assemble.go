package sheet

import "github.com/claude/repbook/internal/models"

// Assemble groups records into days. A record without a day label lands in
// fallbackLabel, normally the sheet's own name. Days and the exercises in
// each day keep the order in which they were first seen.
func Assemble(records []Record, fallbackLabel string) []models.Day {
	var days []models.Day
	pos := map[string]int{}

	for _, r := range records {
		label := r.Day
		if label == "" {
			label = fallbackLabel
		}
		i, ok := pos[label]
		if !ok {
			i = len(days)
			pos[label] = i
			days = append(days, models.Day{Label: label})
		}
		days[i].Exercises = append(days[i].Exercises, r.exercise())
	}
	return days
}

// MergeDays folds src into dst. A day label already in dst gets src's
// exercises appended to its own; new labels are appended in src order.
func MergeDays(dst, src []models.Day) []models.Day {
	pos := make(map[string]int, len(dst))
	for i, d := range dst {
		pos[d.Label] = i
	}
	for _, d := range src {
		if i, ok := pos[d.Label]; ok {
			dst[i].Exercises = append(dst[i].Exercises, d.Exercises...)
			continue
		}
		pos[d.Label] = len(dst)
		dst = append(dst, models.Day{
			Label:     d.Label,
			Exercises: append([]models.Exercise(nil), d.Exercises...),
		})
	}
	return dst
}

func (r Record) exercise() models.Exercise {
	return models.Exercise{
		Name:        r.Exercise,
		MuscleGroup: r.Muscle,
		TargetSets:  models.FlexString(r.Sets),
		TargetReps:  models.FlexString(r.Reps),
		RPE:         models.FlexString(r.RPE),
		Rest:        models.FlexString(r.Rest),
		Notes:       r.Notes,
	}
}
