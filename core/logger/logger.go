// Package logger declares the logging interface shared by the planner, the
// HTTP layer and the infrastructure adapters.
package logger

// Logger exposes printf style methods per severity and structured variants
// taking a field map.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	// Infow logs a message with structured fields.
	Infow(msg string, fields map[string]any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
