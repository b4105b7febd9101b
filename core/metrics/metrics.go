package metrics

import (
	"time"

	"github.com/kilianp07/prodplan/core/model"
)

// UnitOutput is the output planned for one unit.
type UnitOutput struct {
	Name     string
	Type     model.PlantType
	P        float64
	PMin     float64
	PMax     float64
	Selected bool
	Filtered bool
}

// PlanRecord summarises one computed plan.
type PlanRecord struct {
	PlanID             string
	Time               time.Time
	Load               float64
	Feasible           bool
	BudgetExceeded     bool
	SearchNodes        int
	Drift              float64
	DriftCorrected     bool
	UncorrectableDrift bool
	CorrectedUnit      string
	Duration           time.Duration
	Units              []UnitOutput
}

// MetricsSink records plans for observability purposes.
type MetricsSink interface {
	RecordPlan(rec PlanRecord) error
}

// RejectionRecord describes a refused request.
type RejectionRecord struct {
	Code string
	Path string
	Time time.Time
}

// RejectionRecorder is implemented by sinks able to count refused requests.
type RejectionRecorder interface {
	RecordRejection(rec RejectionRecord) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(PlanRecord) error           { return nil }
func (NopSink) RecordRejection(RejectionRecord) error { return nil }

// NewPlanRecord flattens a request, its plan and outcome into a PlanRecord.
func NewPlanRecord(id string, req model.LoadRequest, plan model.ProductionPlan, out model.Outcome, d time.Duration, at time.Time) PlanRecord {
	selected := make(map[string]bool, len(out.Selected))
	for _, n := range out.Selected {
		selected[n] = true
	}
	filtered := make(map[string]bool, len(out.Filtered))
	for _, n := range out.Filtered {
		filtered[n] = true
	}
	rec := PlanRecord{
		PlanID:             id,
		Time:               at,
		Load:               req.Load,
		Feasible:           out.Feasible,
		BudgetExceeded:     out.BudgetExceeded,
		SearchNodes:        out.SearchNodes,
		Drift:              out.Drift,
		DriftCorrected:     out.DriftCorrected,
		UncorrectableDrift: out.UncorrectableDrift,
		CorrectedUnit:      out.CorrectedUnit,
		Duration:           d,
		Units:              make([]UnitOutput, 0, len(req.Powerplants)),
	}
	for i, p := range req.Powerplants {
		u := UnitOutput{
			Name:     p.Name,
			Type:     p.Type,
			PMin:     p.PMin,
			PMax:     p.PMax,
			Selected: selected[p.Name],
			Filtered: filtered[p.Name],
		}
		if i < len(plan) {
			u.P = plan[i].P
		}
		rec.Units = append(rec.Units, u)
	}
	return rec
}
