// Package factory builds pluggable components from configuration. A
// ModuleConfig names a registered type and carries its raw settings; the
// registered constructor decodes them with Decode.
//
// The unit filters of the planner are registered this way:
//
//	reg := factory.NewRegistry[planner.UnitFilter]()
//	reg.Register("exclude", func(conf map[string]any) (planner.UnitFilter, error) {
//	    var c struct{ Units []string `json:"units"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return planner.ExcludeFilter{Names: c.Units, Next: planner.WindFilter{}}, nil
//	})
//	f, err := reg.Create(factory.ModuleConfig{Type: "exclude", Conf: map[string]any{"units": []any{"gas2"}}})
//
// Metrics sinks use the same mechanism through metrics.RegisterMetricsSink.
package factory
