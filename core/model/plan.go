package model

// PlanEntry is the output assigned to one unit.
type PlanEntry struct {
	Name string  `json:"name"`
	P    float64 `json:"p"`
}

// ProductionPlan lists one entry per roster unit, in roster order.
type ProductionPlan []PlanEntry

// Total sums the outputs in roster order.
func (p ProductionPlan) Total() float64 {
	total := 0.0
	for _, e := range p {
		total += e.P
	}
	return total
}

// Get returns the output assigned to the named unit.
func (p ProductionPlan) Get(name string) (float64, bool) {
	for _, e := range p {
		if e.Name == name {
			return e.P, true
		}
	}
	return 0, false
}

// Outcome reports the soft conditions met while building a plan. A plan is
// always returned; these flags exist for logging and metrics.
type Outcome struct {
	Feasible           bool     `json:"feasible"`
	BudgetExceeded     bool     `json:"budget_exceeded,omitempty"`
	SearchNodes        int      `json:"search_nodes"`
	Selected           []string `json:"selected"`
	Filtered           []string `json:"filtered,omitempty"`
	Drift              float64  `json:"drift"`
	DriftCorrected     bool     `json:"drift_corrected"`
	CorrectedUnit      string   `json:"corrected_unit,omitempty"`
	UncorrectableDrift bool     `json:"uncorrectable_drift"`
}
