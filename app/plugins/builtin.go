package plugins

import (
	"github.com/kilianp07/prodplan/core/factory"
	"github.com/kilianp07/prodplan/core/planner"
)

func init() {
	_ = RegisterFilter("wind", func(map[string]any) (planner.UnitFilter, error) {
		return planner.WindFilter{}, nil
	})
	_ = RegisterFilter("none", func(map[string]any) (planner.UnitFilter, error) {
		return planner.NoFilter{}, nil
	})
	_ = RegisterFilter("exclude", func(conf map[string]any) (planner.UnitFilter, error) {
		var c struct {
			Units []string `json:"units"`
			// KeepIdleWind disables the wind filter on the remaining units.
			KeepIdleWind bool `json:"keep_idle_wind"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		f := planner.ExcludeFilter{Names: c.Units, Next: planner.WindFilter{}}
		if c.KeepIdleWind {
			f.Next = planner.NoFilter{}
		}
		return f, nil
	})
}
