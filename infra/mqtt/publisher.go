package mqtt

import (
	"context"
	"fmt"
	"sync"

	coremqtt "github.com/kilianp07/prodplan/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher records published plans in memory. It is used in tests and
// when running without a broker.
type MockPublisher struct {
	mu       sync.Mutex
	Messages []coremqtt.PlanMessage
	// Fail makes every publication return an error.
	Fail bool
	seq  int
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// PublishPlan records the message or returns an error if configured to fail.
func (m *MockPublisher) PublishPlan(_ context.Context, msg coremqtt.PlanMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return "", fmt.Errorf("publish failed")
	}
	m.seq++
	if msg.MessageID == "" {
		msg.MessageID = fmt.Sprintf("msg-%d", m.seq)
	}
	m.Messages = append(m.Messages, msg)
	return msg.MessageID, nil
}

// Published returns a copy of the recorded messages.
func (m *MockPublisher) Published() []coremqtt.PlanMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]coremqtt.PlanMessage(nil), m.Messages...)
}

func (m *MockPublisher) Close() {}

// New returns a broker-backed publisher when cfg is enabled and a no-op
// publisher otherwise.
func New(cfg Config) (Publisher, error) {
	if !cfg.Enabled {
		return coremqtt.NopPublisher{}, nil
	}
	return NewPahoClient(cfg)
}
