// Package mqtt declares the plan publication contract implemented by the
// broker-backed publisher in infra/mqtt.
package mqtt
