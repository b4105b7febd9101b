package metrics

import "github.com/kilianp07/prodplan/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusPath is where the HTTP server exposes Prometheus metrics.
	// Empty disables the endpoint.
	PrometheusPath string `json:"prometheus_path"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if c.PrometheusPath == "" {
		c.PrometheusPath = "/metrics"
	}
}
