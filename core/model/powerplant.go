package model

// PlantType identifies the technology of a generating unit.
type PlantType string

const (
	PlantGasFired    PlantType = "gasfired"
	PlantTurboJet    PlantType = "turbojet"
	PlantWindTurbine PlantType = "windturbine"
)

// IsRenewable returns true for units whose output depends on the wind.
func (t PlantType) IsRenewable() bool {
	return t == PlantWindTurbine
}

// Powerplant is a generating unit with a capacity range in MW.
type Powerplant struct {
	Name       string    `json:"name"`
	Type       PlantType `json:"type"`
	Efficiency float64   `json:"efficiency"` // carried through, not used for selection
	PMin       float64   `json:"pmin"`
	PMax       float64   `json:"pmax"`
}

// Fuels holds the market conditions sent with a load request.
type Fuels struct {
	GasEuroMWh      float64 `json:"gas(euro/MWh)"`
	KerosineEuroMWh float64 `json:"kerosine(euro/MWh)"`
	CO2EuroTon      float64 `json:"co2(euro/ton)"`
	WindPercent     float64 `json:"wind(%)"` // renewable availability in [0,100]
}

// LoadRequest asks for a production plan covering Load MW.
type LoadRequest struct {
	Load        float64      `json:"load"`
	Fuels       Fuels        `json:"fuels"`
	Powerplants []Powerplant `json:"powerplants"`
}

// Names returns the unit names in roster order.
func (r LoadRequest) Names() []string {
	names := make([]string, len(r.Powerplants))
	for i, p := range r.Powerplants {
		names[i] = p.Name
	}
	return names
}
