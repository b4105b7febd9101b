package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/prodplan/core/factory"
	"github.com/kilianp07/prodplan/core/model"
)

// Expected describes the result a scenario must produce.
type Expected struct {
	// Error is the validation code expected instead of a plan.
	Error         string      `yaml:"error,omitempty"`
	Feasible      bool        `yaml:"feasible"`
	Plan          []PlanEntry `yaml:"plan,omitempty"`
	CorrectedUnit string      `yaml:"corrected_unit,omitempty"`
	Uncorrectable bool        `yaml:"uncorrectable,omitempty"`
}

type PlanEntry struct {
	Name string  `yaml:"name"`
	P    float64 `yaml:"p"`
}

// Scenario is one request replayed through the plan service.
type Scenario struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description,omitempty"`
	Filter      factory.ModuleConfig `yaml:"filter,omitempty"`
	MaxNodes    int                  `yaml:"max_search_nodes,omitempty"`
	Request     map[string]any       `yaml:"request"`
	Expected    Expected             `yaml:"expected"`
}

// ProductionPlan converts the expected entries to the model type.
func (e Expected) ProductionPlan() model.ProductionPlan {
	out := make(model.ProductionPlan, len(e.Plan))
	for i, p := range e.Plan {
		out[i] = model.PlanEntry{Name: p.Name, P: p.P}
	}
	return out
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	if sc.Request == nil {
		return nil, fmt.Errorf("%s: scenario request is required", path)
	}
	return &sc, nil
}
