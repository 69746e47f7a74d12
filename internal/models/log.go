package models

// Unit systems accepted for display and input.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// LoggedSet is one set entry inside a session. Weight is always stored in kg.
type LoggedSet struct {
	Exercise string   `json:"exercise"`
	Muscle   string   `json:"muscle"`
	WeightKg float64  `json:"weightKg"`
	Reps     int      `json:"reps"`
	RPE      *float64 `json:"rpe"`
	Notes    string   `json:"notes"`
}

// Session is an active or finished workout.
type Session struct {
	ID        string      `json:"id"`
	ProgramID string      `json:"programId,omitempty"`
	Name      string      `json:"name"`
	Date      string      `json:"date"`
	Sets      []LoggedSet `json:"sets"`
}

// Volume returns the sum of reps times weight across all sets, in kg.
func (s Session) Volume() float64 {
	var v float64
	for _, set := range s.Sets {
		v += float64(set.Reps) * set.WeightKg
	}
	return v
}

// BodyMetric is a dated bodyweight / body-fat reading.
type BodyMetric struct {
	Date     string   `json:"date"`
	WeightKg float64  `json:"weightKg"`
	BodyFat  *float64 `json:"bodyFat"`
}

// SeriesPoint is one point on a trend chart.
type SeriesPoint struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}
