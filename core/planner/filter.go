package planner

import "github.com/kilianp07/prodplan/core/model"

// UnitFilter selects the units allowed to take part in a plan. It returns the
// retained roster indices in ascending order.
type UnitFilter interface {
	Filter(plants []model.Powerplant, fuels model.Fuels) []int
}

// WindFilter drops wind turbines when the wind percentage is exactly zero.
// Capacity is not scaled by the wind percentage.
type WindFilter struct{}

func (WindFilter) Filter(plants []model.Powerplant, fuels model.Fuels) []int {
	res := make([]int, 0, len(plants))
	for i, p := range plants {
		if p.Type.IsRenewable() && fuels.WindPercent == 0 {
			continue
		}
		res = append(res, i)
	}
	return res
}

// NoFilter retains every unit.
type NoFilter struct{}

func (NoFilter) Filter(plants []model.Powerplant, _ model.Fuels) []int {
	res := make([]int, len(plants))
	for i := range plants {
		res[i] = i
	}
	return res
}

// ExcludeFilter drops the named units, for example units under maintenance,
// then applies Next to the remaining roster. A nil Next retains the rest.
type ExcludeFilter struct {
	Names []string
	Next  UnitFilter
}

func (f ExcludeFilter) Filter(plants []model.Powerplant, fuels model.Fuels) []int {
	excluded := make(map[string]bool, len(f.Names))
	for _, n := range f.Names {
		excluded[n] = true
	}
	next := f.Next
	if next == nil {
		next = NoFilter{}
	}
	inner := next.Filter(plants, fuels)
	res := make([]int, 0, len(inner))
	for _, i := range inner {
		if !excluded[plants[i].Name] {
			res = append(res, i)
		}
	}
	return res
}
