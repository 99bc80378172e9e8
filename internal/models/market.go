// internal/models/market.go
package models

// MarketConfig lists the selectable options for one (marketType, targetMarket).
// A market defines either Cities or Zones, never both.
type MarketConfig struct {
	MarketType   string   `json:"marketType"`
	TargetMarket string   `json:"targetMarket"`
	Language     string   `json:"language"`
	Cities       []string `json:"cities,omitempty"`
	Zones        []string `json:"zones,omitempty"`
	VehicleTypes []string `json:"vehicleTypes,omitempty"`
	StaffTypes   []string `json:"staffTypes,omitempty"`
	Platforms    []string `json:"platforms,omitempty"`
}

func (m *MarketConfig) UsesZones() bool {
	return len(m.Zones) > 0
}

// Locations returns the availability keys for the market.
func (m *MarketConfig) Locations() []string {
	if m.UsesZones() {
		return m.Zones
	}
	return m.Cities
}

// Offers reports whether value is selectable in options. OtherOption is always offered.
func Offers(options []string, value string) bool {
	if value == OtherOption {
		return true
	}
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
