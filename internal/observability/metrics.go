package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Source load outcomes.
const (
	OutcomePrimary  = "primary"
	OutcomeFallback = "fallback"
)

var (
	sourceLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "repbook",
		Subsystem: "source",
		Name:      "loads_total",
		Help:      "Source loads by kind (programs, workbook, library) and outcome (primary, fallback).",
	}, []string{"kind", "outcome"})
	catalogPrograms = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "repbook",
		Subsystem: "catalog",
		Name:      "programs",
		Help:      "Number of programs in the loaded catalog.",
	})
	catalogLibrary = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "repbook",
		Subsystem: "catalog",
		Name:      "library_size",
		Help:      "Number of distinct exercises in the library.",
	})
)

func init() {
	prometheus.MustRegister(sourceLoads, catalogPrograms, catalogLibrary)
}

// RecordSourceLoad counts one source load.
func RecordSourceLoad(kind string, usedFallback bool) {
	outcome := OutcomePrimary
	if usedFallback {
		outcome = OutcomeFallback
	}
	sourceLoads.WithLabelValues(kind, outcome).Inc()
}

// RecordCatalogSize updates the catalog gauges.
func RecordCatalogSize(programs, libraryEntries int) {
	catalogPrograms.Set(float64(programs))
	catalogLibrary.Set(float64(libraryEntries))
}
