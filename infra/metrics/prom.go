package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/prodplan/core/metrics"
)

// PromSink records production plans in Prometheus metrics.
type PromSink struct {
	plans       *prometheus.CounterVec
	duration    prometheus.Histogram
	nodes       prometheus.Histogram
	drift       *prometheus.CounterVec
	unitOutput  *prometheus.GaugeVec
	utilisation prometheus.Gauge
	rejections  *prometheus.CounterVec
}

// NewPromSink registers plan metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "productionplan_plans_total",
			Help: "Total number of computed production plans",
		}, []string{"feasible"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "productionplan_duration_seconds",
			Help:    "Time spent computing a production plan",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		nodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "productionplan_search_nodes",
			Help:    "Nodes visited by the feasible subset search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		}),
		drift: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "productionplan_drift_total",
			Help: "Rounding drift occurrences by result",
		}, []string{"result"}),
		unitOutput: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "productionplan_unit_output_mw",
			Help: "Output planned for each unit in the last plan",
		}, []string{"unit", "type"}),
		utilisation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "productionplan_capacity_utilisation_ratio",
			Help: "Planned output over available capacity in the last plan",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "productionplan_rejections_total",
			Help: "Requests refused before planning",
		}, []string{"code"}),
	}
	var err error
	if s.plans, err = register(reg, s.plans); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.nodes, err = register(reg, s.nodes); err != nil {
		return nil, err
	}
	if s.drift, err = register(reg, s.drift); err != nil {
		return nil, err
	}
	if s.unitOutput, err = register(reg, s.unitOutput); err != nil {
		return nil, err
	}
	if s.utilisation, err = register(reg, s.utilisation); err != nil {
		return nil, err
	}
	if s.rejections, err = register(reg, s.rejections); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when one with the same
// descriptor exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPlan updates the counters and gauges for one plan.
func (s *PromSink) RecordPlan(rec coremetrics.PlanRecord) error {
	s.plans.WithLabelValues(strconv.FormatBool(rec.Feasible)).Inc()
	s.duration.Observe(rec.Duration.Seconds())
	s.nodes.Observe(float64(rec.SearchNodes))
	switch {
	case rec.DriftCorrected:
		s.drift.WithLabelValues("corrected").Inc()
	case rec.UncorrectableDrift:
		s.drift.WithLabelValues("uncorrectable").Inc()
	}
	for _, u := range rec.Units {
		s.unitOutput.WithLabelValues(u.Name, string(u.Type)).Set(u.P)
	}
	s.utilisation.Set(Utilisation(rec))
	return nil
}

// RecordRejection counts refused requests by error code.
func (s *PromSink) RecordRejection(rec coremetrics.RejectionRecord) error {
	s.rejections.WithLabelValues(rec.Code).Inc()
	return nil
}
