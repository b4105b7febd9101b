package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/prodplan/core/model"
)

func validDoc() map[string]any {
	return map[string]any{
		"load": 480.0,
		"fuels": map[string]any{
			FuelGas:      13.4,
			FuelKerosine: 50.8,
			FuelCO2:      20.0,
			FuelWind:     60.0,
		},
		"powerplants": []any{
			map[string]any{"name": "gasfiredbig1", "type": "gasfired", "efficiency": 0.53, "pmin": 100.0, "pmax": 460.0},
			map[string]any{"name": "windpark1", "type": "windturbine", "efficiency": 1.0, "pmin": 0.0, "pmax": 150.0},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	req, err := Validate(validDoc())
	require.NoError(t, err)
	assert.Equal(t, 480.0, req.Load)
	assert.Equal(t, 60.0, req.Fuels.WindPercent)
	assert.Equal(t, 13.4, req.Fuels.GasEuroMWh)
	require.Len(t, req.Powerplants, 2)
	assert.Equal(t, model.PlantWindTurbine, req.Powerplants[1].Type)
	assert.Equal(t, []string{"gasfiredbig1", "windpark1"}, req.Names())
}

func TestValidate_Missing(t *testing.T) {
	cases := []struct {
		path   string
		mutate func(map[string]any)
	}{
		{"load", func(d map[string]any) { delete(d, "load") }},
		{"fuels", func(d map[string]any) { delete(d, "fuels") }},
		{"powerplants", func(d map[string]any) { delete(d, "powerplants") }},
		{"fuels.wind(%)", func(d map[string]any) { delete(d["fuels"].(map[string]any), FuelWind) }},
		{"fuels.co2(euro/ton)", func(d map[string]any) { delete(d["fuels"].(map[string]any), FuelCO2) }},
		{"powerplants[1].pmax", func(d map[string]any) {
			delete(d["powerplants"].([]any)[1].(map[string]any), "pmax")
		}},
		{"powerplants[0].efficiency", func(d map[string]any) {
			delete(d["powerplants"].([]any)[0].(map[string]any), "efficiency")
		}},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			doc := validDoc()
			c.mutate(doc)
			_, err := Validate(doc)
			var mf *MissingFieldError
			require.True(t, errors.As(err, &mf), "got %v", err)
			assert.Equal(t, c.path, mf.Path)
		})
	}
}

func TestValidate_InvalidType(t *testing.T) {
	cases := []struct {
		path   string
		mutate func(map[string]any)
	}{
		{"load", func(d map[string]any) { d["load"] = "480" }},
		{"load", func(d map[string]any) { d["load"] = true }},
		{"fuels", func(d map[string]any) { d["fuels"] = []any{} }},
		{"fuels.gas(euro/MWh)", func(d map[string]any) { d["fuels"].(map[string]any)[FuelGas] = "cheap" }},
		{"powerplants", func(d map[string]any) { d["powerplants"] = map[string]any{} }},
		{"powerplants[0]", func(d map[string]any) { d["powerplants"].([]any)[0] = "plant" }},
		{"powerplants[0].name", func(d map[string]any) { d["powerplants"].([]any)[0].(map[string]any)["name"] = 3.0 }},
		{"powerplants[1].pmin", func(d map[string]any) { d["powerplants"].([]any)[1].(map[string]any)["pmin"] = nil }},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			doc := validDoc()
			c.mutate(doc)
			_, err := Validate(doc)
			var it *InvalidTypeError
			require.True(t, errors.As(err, &it), "got %v", err)
			assert.Equal(t, c.path, it.Path)
		})
	}
}

func TestValidate_InvalidValue(t *testing.T) {
	cases := []struct {
		path   string
		mutate func(map[string]any)
	}{
		{"load", func(d map[string]any) { d["load"] = -1.0 }},
		{"fuels.wind(%)", func(d map[string]any) { d["fuels"].(map[string]any)[FuelWind] = 120.0 }},
		{"powerplants[1].name", func(d map[string]any) {
			d["powerplants"].([]any)[1].(map[string]any)["name"] = "gasfiredbig1"
		}},
		{"powerplants[0].pmax", func(d map[string]any) { d["powerplants"].([]any)[0].(map[string]any)["pmax"] = 50.0 }},
		{"powerplants[0].pmin", func(d map[string]any) { d["powerplants"].([]any)[0].(map[string]any)["pmin"] = -5.0 }},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			doc := validDoc()
			c.mutate(doc)
			_, err := Validate(doc)
			var iv *InvalidValueError
			require.True(t, errors.As(err, &iv), "got %v", err)
			assert.Equal(t, c.path, iv.Path)
		})
	}
}

func TestValidate_EmptyRoster(t *testing.T) {
	doc := validDoc()
	doc["powerplants"] = []any{}
	req, err := Validate(doc)
	require.NoError(t, err)
	assert.Empty(t, req.Powerplants)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		code string
		path string
	}{
		{&MissingFieldError{Path: "fuels"}, CodeMissingField, "fuels"},
		{&InvalidTypeError{Path: "load", Want: "number", Got: "string"}, CodeInvalidType, "load"},
		{&InvalidValueError{Path: "powerplants[0].pmax", Reason: "below pmin"}, CodeInvalidValue, "powerplants[0].pmax"},
	}
	for _, c := range cases {
		code, path, ok := Classify(c.err)
		assert.True(t, ok)
		assert.Equal(t, c.code, code)
		assert.Equal(t, c.path, path)
	}
	_, _, ok := Classify(errors.New("other"))
	assert.False(t, ok)
}
