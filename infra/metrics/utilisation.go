package metrics

import (
	"gonum.org/v1/gonum/floats"

	coremetrics "github.com/kilianp07/prodplan/core/metrics"
)

// Utilisation returns the planned output divided by the capacity of the units
// that were not filtered out. It is 0 when no capacity is available.
func Utilisation(rec coremetrics.PlanRecord) float64 {
	out := make([]float64, 0, len(rec.Units))
	capacity := make([]float64, 0, len(rec.Units))
	for _, u := range rec.Units {
		if u.Filtered {
			continue
		}
		out = append(out, u.P)
		capacity = append(capacity, u.PMax)
	}
	total := floats.Sum(capacity)
	if total <= 0 {
		return 0
	}
	return floats.Sum(out) / total
}
