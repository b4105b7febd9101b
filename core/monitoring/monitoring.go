// Package monitoring routes unexpected errors of the plan service to an
// error tracker. Until Init installs a monitor every report is discarded.
package monitoring

import (
	"sync"
	"time"
)

// Components reported in the "component" tag.
const (
	ComponentHTTP         = "http"
	ComponentMQTT         = "mqtt"
	ComponentStore        = "store"
	ComponentResponseFile = "response_file"
)

// Event locates a reported error.
type Event struct {
	Component string
	// PlanID is empty when the error happened before a plan was computed.
	PlanID string
	Route  string
	Unit   string
}

// Tags flattens the event into tracker tags. Empty fields are omitted.
func (e Event) Tags() map[string]string {
	tags := make(map[string]string, 4)
	for k, v := range map[string]string{
		"component": e.Component,
		"plan_id":   e.PlanID,
		"route":     e.Route,
		"unit":      e.Unit,
	} {
		if v != "" {
			tags[k] = v
		}
	}
	return tags
}

// Monitor is implemented by error trackers such as the Sentry adapter in
// infra/monitoring.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Flush(timeout time.Duration)
}

// NopMonitor discards every report. It is in use before Init and when no
// tracker is configured.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init installs m as the process monitor. A nil m keeps the current one.
func Init(m Monitor) {
	if m == nil {
		return
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

func monitor() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Capture reports err with the tags of ev. A nil err is ignored.
func Capture(err error, ev Event) {
	if err == nil {
		return
	}
	monitor().CaptureException(err, ev.Tags())
}

// Flush waits up to d for buffered reports to be sent.
func Flush(d time.Duration) {
	monitor().Flush(d)
}
