// Package infra holds the adapters behind the core interfaces of the plan
// service: the zerolog logger, Prometheus and InfluxDB metrics sinks, the
// MQTT plan publisher and the Sentry monitor. Core packages never import
// infra.
package infra
