package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/prodplan/config"
	"github.com/kilianp07/prodplan/core/factory"
)

func TestNewServiceDefaults(t *testing.T) {
	cfg := config.Default()
	svc, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, svc.Plans)

	res, err := svc.Plans.Compute(context.Background(), scenarioA())
	require.NoError(t, err)
	assert.True(t, res.Outcome.Feasible)
	require.NoError(t, svc.Close())
}

func TestNewServiceRejectsUnknownFilter(t *testing.T) {
	cfg := config.Default()
	cfg.Planner.Filter = factory.ModuleConfig{Type: "cheapest"}
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Address = "127.0.0.1:0"
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx, http.NotFoundHandler()) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}
