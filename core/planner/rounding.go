package planner

import (
	"math"
	"strconv"
)

const (
	// roundingEpsilon nudges values sitting just below a .x5 boundary.
	roundingEpsilon = 1e-9
	driftThreshold  = 0.1
)

// Round1 rounds x to one decimal place. Ties are resolved on the exact binary
// value, half to even, so 0.25 rounds to 0.2 and 0.35 to 0.3 (0.35 is stored
// slightly below).
func Round1(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	if err != nil {
		return x
	}
	return v
}

// RoundOutputs rounds every output to one decimal place.
func RoundOutputs(outputs []float64) []float64 {
	res := make([]float64, len(outputs))
	for i, p := range outputs {
		res[i] = Round1(p + roundingEpsilon)
	}
	return res
}

// Correction describes the drift adjustment applied by CorrectDrift.
type Correction struct {
	Drift float64
	// Index is the position of the adjusted output, -1 when none was adjusted.
	Index int
}

// Needed reports whether the drift was large enough to require an adjustment.
func (c Correction) Needed() bool { return math.Abs(c.Drift) >= driftThreshold }

// Applied reports whether one output absorbed the drift.
func (c Correction) Applied() bool { return c.Index >= 0 }

// CorrectDrift compares the sum of the rounded outputs with load and, when
// they differ by at least 0.1, adds the full difference to the first output
// that stays within [0, pmax] afterwards. outputs is modified in place.
func CorrectDrift(outputs, pmax []float64, load float64) Correction {
	sum := 0.0
	for _, p := range outputs {
		sum += p
	}
	c := Correction{Drift: Round1(load - sum), Index: -1}
	if !c.Needed() {
		return c
	}
	for i, p := range outputs {
		if v := p + c.Drift; v >= 0 && v <= pmax[i] {
			outputs[i] = Round1(v)
			c.Index = i
			break
		}
	}
	return c
}
