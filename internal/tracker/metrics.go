package tracker

import (
	"context"

	"github.com/claude/repbook/internal/models"
)

// AddMetric records today's bodyweight (in display units) and an optional
// body-fat percentage. A non-finite body fat is stored as absent.
func (t *Tracker) AddMetric(ctx context.Context, weight float64, bodyFat *float64) (models.BodyMetric, error) {
	if !finite(weight) {
		return models.BodyMetric{}, ErrInvalidMetric
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	m := models.BodyMetric{
		Date:     t.today(),
		WeightKg: round(FromUnits(weight, t.st.Units), 2),
	}
	if bodyFat != nil && finite(*bodyFat) {
		bf := round(*bodyFat, 1)
		m.BodyFat = &bf
	}
	t.st.Metrics = append(t.st.Metrics, m)
	return m, t.save(ctx)
}

// Trends holds chart-ready series. Weight is in Unit; body fat is a percent.
type Trends struct {
	Unit    string               `json:"unit"`
	Weight  []models.SeriesPoint `json:"weight"`
	BodyFat []models.SeriesPoint `json:"bodyFat"`
}

// Trends returns the bodyweight series in display units and the body-fat
// series for readings that have one.
func (t *Tracker) Trends() Trends {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr := Trends{
		Unit:    UnitLabel(t.st.Units),
		Weight:  make([]models.SeriesPoint, 0, len(t.st.Metrics)),
		BodyFat: []models.SeriesPoint{},
	}
	for _, m := range t.st.Metrics {
		tr.Weight = append(tr.Weight, models.SeriesPoint{X: m.Date, Y: InUnits(m.WeightKg, t.st.Units)})
		if m.BodyFat != nil {
			tr.BodyFat = append(tr.BodyFat, models.SeriesPoint{X: m.Date, Y: *m.BodyFat})
		}
	}
	return tr
}
