// internal/models/contact.go
package models

import "time"

// OtherOption is the reserved selection value whose presence requires the
// matching *Other free-text field.
const OtherOption = "other"

const (
	MarketTypeVanTransport    = "van_transport"
	MarketTypeBicycleDelivery = "bicycle_delivery"
)

// Contact is the persistable partner record. Tri-state answers are *bool: nil is
// unanswered, true is yes, false is no.
type Contact struct {
	ID           string `json:"id"`
	MarketType   string `json:"marketType"`
	TargetMarket string `json:"targetMarket"`

	CompanyName      string `json:"companyName"`
	Email            string `json:"email"`
	Address          string `json:"address"`
	Website          string `json:"website"`
	ContactFirstName string `json:"contactFirstName"`
	ContactLastName  string `json:"contactLastName,omitempty"`
	ContactPosition  string `json:"contactPosition,omitempty"`
	Phone            string `json:"phone"`

	FoundingYear        *int  `json:"foundingYear"`
	LastMileExperience  *bool `json:"lastMileExperience"`
	ExperienceSinceYear *int  `json:"experienceSinceYear"`

	WorksForQuickCommerce *bool    `json:"worksForQuickCommerce"`
	WorksForGigEconomy    *bool    `json:"worksForGigEconomy"`
	Platforms             []string `json:"platforms,omitempty"`
	PlatformsOther        string   `json:"platformsOther,omitempty"`
	BikeCount             *int     `json:"bikeCount"`
	CargoBikeCount        *int     `json:"cargoBikeCount"`

	LegalStatus               string   `json:"legalStatus,omitempty"`
	OwnsVehicles              *bool    `json:"ownsVehicles"`
	VehicleTypes              []string `json:"vehicleTypes,omitempty"`
	VehicleTypesOther         string   `json:"vehicleTypesOther,omitempty"`
	VehicleCount              *int     `json:"vehicleCount"`
	OperatesMultipleCountries *bool    `json:"operatesMultipleCountries"`
	OperatesMultipleCities    *bool    `json:"operatesMultipleCities"`

	StaffTypes              []string `json:"staffTypes,omitempty"`
	StaffTypesOther         string   `json:"staffTypesOther,omitempty"`
	EmployedDriverCount     *int     `json:"employedDriverCount"`
	SelfEmployedDriverCount *int     `json:"selfEmployedDriverCount"`
	RiderCount              *int     `json:"riderCount"`

	Availability    map[string]bool `json:"availability,omitempty"`
	AdditionalNotes string          `json:"additionalNotes,omitempty"`

	FormCompleted   bool       `json:"formCompleted"`
	FormCompletedAt *time.Time `json:"formCompletedAt,omitempty"`
}

// ContactSummary is the listing shape used by operator tooling.
type ContactSummary struct {
	ID            string    `json:"id"`
	CompanyName   string    `json:"companyName"`
	Email         string    `json:"email"`
	MarketType    string    `json:"marketType"`
	TargetMarket  string    `json:"targetMarket"`
	FormCompleted bool      `json:"formCompleted"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
