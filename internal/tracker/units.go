package tracker

import (
	"fmt"
	"math"

	"github.com/claude/repbook/internal/models"
)

const lbPerKg = 2.20462

// ToKg converts pounds to kilograms, rounded to 2 decimals.
func ToKg(lb float64) float64 { return round(lb/lbPerKg, 2) }

// ToLb converts kilograms to pounds, rounded to 1 decimal.
func ToLb(kg float64) float64 { return round(kg*lbPerKg, 1) }

// FromUnits converts a weight entered in units to kilograms.
func FromUnits(w float64, units string) float64 {
	if units == models.UnitsImperial {
		return ToKg(w)
	}
	return w
}

// InUnits converts a stored kilogram weight for display in units.
func InUnits(kg float64, units string) float64 {
	if units == models.UnitsImperial {
		return ToLb(kg)
	}
	return kg
}

// UnitLabel returns "lb" or "kg".
func UnitLabel(units string) string {
	if units == models.UnitsImperial {
		return "lb"
	}
	return "kg"
}

// FormatWeight renders kg in units, e.g. "225 lb" or "102.5 kg".
func FormatWeight(kg float64, units string) string {
	return fmt.Sprintf("%g %s", InUnits(kg, units), UnitLabel(units))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
