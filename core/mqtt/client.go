package mqtt

import (
	"context"

	"github.com/kilianp07/prodplan/core/model"
)

// PlanMessage is the payload published for each computed plan.
type PlanMessage struct {
	MessageID string               `json:"message_id"`
	PlanID    string               `json:"plan_id"`
	Timestamp int64                `json:"timestamp"`
	Load      float64              `json:"load"`
	Feasible  bool                 `json:"feasible"`
	Plan      model.ProductionPlan `json:"plan"`
}

// SetpointMessage carries the output assigned to a single unit.
type SetpointMessage struct {
	MessageID string  `json:"message_id"`
	PlanID    string  `json:"plan_id"`
	Unit      string  `json:"unit"`
	P         float64 `json:"p"`
	Timestamp int64   `json:"timestamp"`
}

// Publisher sends computed plans to downstream consumers.
type Publisher interface {
	// PublishPlan publishes the plan and returns the message identifier.
	PublishPlan(ctx context.Context, msg PlanMessage) (messageID string, err error)
	Close()
}

// NopPublisher drops every plan.
type NopPublisher struct{}

func (NopPublisher) PublishPlan(context.Context, PlanMessage) (string, error) { return "", nil }
func (NopPublisher) Close()                                                   {}
