package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/prodplan/core/factory"
	"github.com/kilianp07/prodplan/core/planner"
)

func TestNewFilter(t *testing.T) {
	f, err := NewFilter(factory.ModuleConfig{})
	require.NoError(t, err)
	assert.Equal(t, planner.WindFilter{}, f)

	f, err = NewFilter(factory.ModuleConfig{Type: "none"})
	require.NoError(t, err)
	assert.Equal(t, planner.NoFilter{}, f)

	f, err = NewFilter(factory.ModuleConfig{Type: "exclude", Conf: map[string]any{
		"units":          []any{"tj1"},
		"keep_idle_wind": "true",
	}})
	require.NoError(t, err)
	assert.Equal(t, planner.ExcludeFilter{Names: []string{"tj1"}, Next: planner.NoFilter{}}, f)

	_, err = NewFilter(factory.ModuleConfig{Type: "cheapest"})
	assert.Error(t, err)
	assert.Equal(t, []string{"exclude", "none", "wind"}, Filters())
}
