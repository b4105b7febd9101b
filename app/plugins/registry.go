// Package plugins holds the registries of pluggable planner components that
// can be selected by name from the configuration.
package plugins

import (
	"github.com/kilianp07/prodplan/core/factory"
	"github.com/kilianp07/prodplan/core/planner"
)

var filters = factory.NewRegistry[planner.UnitFilter]()

// RegisterFilter adds a unit filter factory identified by name.
func RegisterFilter(name string, f factory.Factory[planner.UnitFilter]) error {
	return filters.Register(name, f)
}

// NewFilter builds the unit filter described by cfg. An empty type selects
// the wind filter.
func NewFilter(cfg factory.ModuleConfig) (planner.UnitFilter, error) {
	if cfg.Type == "" {
		cfg.Type = "wind"
	}
	return filters.Create(cfg)
}

// Filters lists the registered filter names.
func Filters() []string { return filters.Types() }
