// Package metrics defines the sinks recording production plan metrics.
// Sinks like PromSink and InfluxSink live in infra/metrics and register
// themselves in the factory; NewMetricsSink builds a MultiSink when several
// sinks are configured.
package metrics
