// Package validation checks the structure and types of a decoded production
// plan request before it reaches the planner.
package validation

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kilianp07/prodplan/core/model"
)

const (
	keyLoad        = "load"
	keyFuels       = "fuels"
	keyPowerplants = "powerplants"

	FuelGas      = "gas(euro/MWh)"
	FuelKerosine = "kerosine(euro/MWh)"
	FuelCO2      = "co2(euro/ton)"
	FuelWind     = "wind(%)"
)

var fuelKeys = []string{FuelGas, FuelKerosine, FuelCO2, FuelWind}

var plantKeys = []string{"name", "type", "efficiency", "pmin", "pmax"}

// Validate checks doc, a JSON object decoded into generic values, and converts
// it into a LoadRequest. Structural problems are reported as
// *MissingFieldError or *InvalidTypeError, range problems as
// *InvalidValueError. The first problem found is returned.
func Validate(doc map[string]any) (model.LoadRequest, error) {
	var req model.LoadRequest
	for _, k := range []string{keyLoad, keyFuels, keyPowerplants} {
		if _, ok := doc[k]; !ok {
			return req, &MissingFieldError{Path: k}
		}
	}
	load, err := number(doc[keyLoad], keyLoad)
	if err != nil {
		return req, err
	}
	req.Load = load

	fuels, err := validateFuels(doc[keyFuels])
	if err != nil {
		return req, err
	}
	req.Fuels = fuels

	plants, err := validatePlants(doc[keyPowerplants])
	if err != nil {
		return req, err
	}
	req.Powerplants = plants

	if err := CheckRanges(req); err != nil {
		return req, err
	}
	return req, nil
}

func validateFuels(v any) (model.Fuels, error) {
	var f model.Fuels
	m, ok := v.(map[string]any)
	if !ok {
		return f, &InvalidTypeError{Path: keyFuels, Want: "an object", Got: kind(v)}
	}
	vals := make(map[string]float64, len(fuelKeys))
	for _, k := range fuelKeys {
		raw, ok := m[k]
		path := keyFuels + "." + k
		if !ok {
			return f, &MissingFieldError{Path: path}
		}
		n, err := number(raw, path)
		if err != nil {
			return f, err
		}
		vals[k] = n
	}
	f.GasEuroMWh = vals[FuelGas]
	f.KerosineEuroMWh = vals[FuelKerosine]
	f.CO2EuroTon = vals[FuelCO2]
	f.WindPercent = vals[FuelWind]
	return f, nil
}

func validatePlants(v any) ([]model.Powerplant, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, &InvalidTypeError{Path: keyPowerplants, Want: "a list", Got: kind(v)}
	}
	plants := make([]model.Powerplant, 0, len(list))
	for i, item := range list {
		prefix := keyPowerplants + "[" + strconv.Itoa(i) + "]"
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &InvalidTypeError{Path: prefix, Want: "an object", Got: kind(item)}
		}
		for _, k := range plantKeys {
			if _, ok := m[k]; !ok {
				return nil, &MissingFieldError{Path: prefix + "." + k}
			}
		}
		name, ok := m["name"].(string)
		if !ok {
			return nil, &InvalidTypeError{Path: prefix + ".name", Want: "a string", Got: kind(m["name"])}
		}
		typ, ok := m["type"].(string)
		if !ok {
			return nil, &InvalidTypeError{Path: prefix + ".type", Want: "a string", Got: kind(m["type"])}
		}
		eff, err := number(m["efficiency"], prefix+".efficiency")
		if err != nil {
			return nil, err
		}
		pmin, err := number(m["pmin"], prefix+".pmin")
		if err != nil {
			return nil, err
		}
		pmax, err := number(m["pmax"], prefix+".pmax")
		if err != nil {
			return nil, err
		}
		plants = append(plants, model.Powerplant{
			Name:       name,
			Type:       model.PlantType(typ),
			Efficiency: eff,
			PMin:       pmin,
			PMax:       pmax,
		})
	}
	return plants, nil
}

// CheckRanges validates the numeric ranges of an already typed request.
func CheckRanges(req model.LoadRequest) error {
	if req.Load < 0 {
		return &InvalidValueError{Path: keyLoad, Reason: "must not be negative"}
	}
	if w := req.Fuels.WindPercent; w < 0 || w > 100 {
		return &InvalidValueError{Path: keyFuels + "." + FuelWind, Reason: "must be within [0,100]"}
	}
	seen := make(map[string]bool, len(req.Powerplants))
	for i, p := range req.Powerplants {
		prefix := fmt.Sprintf("%s[%d]", keyPowerplants, i)
		if p.Name == "" {
			return &InvalidValueError{Path: prefix + ".name", Reason: "must not be empty"}
		}
		if seen[p.Name] {
			return &InvalidValueError{Path: prefix + ".name", Reason: fmt.Sprintf("duplicate name %q", p.Name)}
		}
		seen[p.Name] = true
		if p.PMin < 0 {
			return &InvalidValueError{Path: prefix + ".pmin", Reason: "must not be negative"}
		}
		if p.PMax < p.PMin {
			return &InvalidValueError{Path: prefix + ".pmax", Reason: "must be greater than or equal to pmin"}
		}
	}
	return nil
}

func number(v any, path string) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, &InvalidTypeError{Path: path, Want: "a number", Got: "malformed number"}
		}
		return f, nil
	default:
		return 0, &InvalidTypeError{Path: path, Want: "a number", Got: kind(v)}
	}
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case string:
		return "a string"
	case []any:
		return "a list"
	case map[string]any:
		return "an object"
	case float64, float32, int, int64, uint64, json.Number:
		return "a number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
