package planner

import (
	"errors"

	"github.com/kilianp07/prodplan/core/logger"
	"github.com/kilianp07/prodplan/core/model"
)

// Planner builds production plans. It keeps no state between calls and can be
// shared by concurrent requests.
type Planner struct {
	filter   UnitFilter
	maxNodes int
	log      logger.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithFilter replaces the default WindFilter.
func WithFilter(f UnitFilter) Option {
	return func(p *Planner) {
		if f != nil {
			p.filter = f
		}
	}
}

// WithMaxSearchNodes bounds the subset search. Zero keeps it unlimited.
func WithMaxSearchNodes(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.maxNodes = n
		}
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l logger.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.log = l
		}
	}
}

// New returns a Planner using WindFilter and an unlimited search.
func New(opts ...Option) *Planner {
	p := &Planner{filter: WindFilter{}, log: nopLogger{}}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Plan computes the production plan for req. It never fails: when no subset
// of units can cover the load every unit is set to 0 and the outcome is
// flagged as infeasible.
func (p *Planner) Plan(req model.LoadRequest) (model.ProductionPlan, model.Outcome) {
	out := model.Outcome{Selected: []string{}}
	retained := p.filter.Filter(req.Powerplants, req.Fuels)
	kept := make(map[int]bool, len(retained))
	for _, idx := range retained {
		kept[idx] = true
	}
	for i, pl := range req.Powerplants {
		if !kept[i] {
			out.Filtered = append(out.Filtered, pl.Name)
		}
	}

	cands := make([]Candidate, len(retained))
	pmax := make([]float64, len(retained))
	for k, idx := range retained {
		pl := req.Powerplants[idx]
		cands[k] = Candidate{Min: pl.PMin, Max: pl.PMax}
		pmax[k] = pl.PMax
	}

	res, err := FindFeasibleSubset(cands, req.Load, p.maxNodes)
	out.SearchNodes = res.Nodes
	if err != nil {
		if errors.Is(err, ErrSearchBudgetExceeded) {
			out.BudgetExceeded = true
		}
		p.log.Warnf("subset search aborted after %d nodes: %v", res.Nodes, err)
		return ZeroPlan(req.Powerplants), out
	}
	if !res.Found {
		p.log.Warnf("no feasible subset for load %.1f among %d units", req.Load, len(cands))
		return ZeroPlan(req.Powerplants), out
	}
	out.Feasible = true
	for _, k := range res.Chosen {
		out.Selected = append(out.Selected, req.Powerplants[retained[k]].Name)
	}
	p.log.Debugw("feasible subset found", map[string]any{
		"selected": out.Selected,
		"nodes":    res.Nodes,
	})

	outputs := RoundOutputs(Distribute(cands, res.Chosen, req.Load))
	corr := CorrectDrift(outputs, pmax, req.Load)
	out.Drift = corr.Drift
	if corr.Needed() {
		if corr.Applied() {
			out.DriftCorrected = true
			out.CorrectedUnit = req.Powerplants[retained[corr.Index]].Name
		} else {
			out.UncorrectableDrift = true
			p.log.Warnf("rounding drift %.1f could not be absorbed", corr.Drift)
		}
	}
	return Assemble(req.Powerplants, retained, outputs), out
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Infow(string, map[string]any)  {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
