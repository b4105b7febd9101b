package planner

import "github.com/kilianp07/prodplan/core/model"

// Assemble builds the plan over the full roster. retained holds roster indices
// and outputs the matching values; every other unit gets 0.
func Assemble(plants []model.Powerplant, retained []int, outputs []float64) model.ProductionPlan {
	plan := make(model.ProductionPlan, len(plants))
	for i, p := range plants {
		plan[i] = model.PlanEntry{Name: p.Name}
	}
	for k, idx := range retained {
		if k < len(outputs) {
			plan[idx].P = outputs[k]
		}
	}
	return plan
}

// ZeroPlan returns the fallback plan with every unit at 0.
func ZeroPlan(plants []model.Powerplant) model.ProductionPlan {
	return Assemble(plants, nil, nil)
}
