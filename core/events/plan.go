package events

import (
	"time"

	"github.com/kilianp07/prodplan/core/model"
)

// PlanEvent is published once a production plan has been computed.
type PlanEvent struct {
	ID       string
	Request  model.LoadRequest
	Plan     model.ProductionPlan
	Outcome  model.Outcome
	Duration time.Duration
	Time     time.Time
}

// RejectionEvent is published when a request fails validation.
// Code is one of "MISSING_FIELD", "INVALID_TYPE", "INVALID_VALUE" or
// "INVALID_JSON".
type RejectionEvent struct {
	Code string
	Path string
	Time time.Time
}
