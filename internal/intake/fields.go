package intake

// TotalSteps is shared by both market types.
const TotalSteps = 4

type FieldKey string

type Kind uint8

const (
	KindText Kind = iota
	KindNumber
	KindTriState
	KindMultiSelect
	KindAvailability
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindTriState:
		return "tri_state"
	case KindMultiSelect:
		return "multi_select"
	case KindAvailability:
		return "availability"
	default:
		return "unknown"
	}
}

const (
	FieldCompanyName      FieldKey = "company_name"
	FieldEmail            FieldKey = "email"
	FieldAddress          FieldKey = "address"
	FieldWebsite          FieldKey = "website"
	FieldContactFirstName FieldKey = "contact_first_name"
	FieldContactLastName  FieldKey = "contact_last_name"
	FieldContactPosition  FieldKey = "contact_position"
	FieldPhone            FieldKey = "phone"

	FieldFoundingYear        FieldKey = "founding_year"
	FieldLastMileExperience  FieldKey = "last_mile_experience"
	FieldExperienceSinceYear FieldKey = "experience_since_year"

	FieldWorksForQuickCommerce FieldKey = "works_for_quick_commerce"
	FieldWorksForGigEconomy    FieldKey = "works_for_gig_economy"
	FieldPlatforms             FieldKey = "platforms"
	FieldBikeCount             FieldKey = "bike_count"
	FieldCargoBikeCount        FieldKey = "cargo_bike_count"

	FieldLegalStatus               FieldKey = "legal_status"
	FieldOwnsVehicles              FieldKey = "owns_vehicles"
	FieldVehicleTypes              FieldKey = "vehicle_types"
	FieldVehicleCount              FieldKey = "vehicle_count"
	FieldOperatesMultipleCountries FieldKey = "operates_multiple_countries"
	FieldOperatesMultipleCities    FieldKey = "operates_multiple_cities"

	FieldStaffTypes              FieldKey = "staff_types"
	FieldEmployedDriverCount     FieldKey = "employed_driver_count"
	FieldSelfEmployedDriverCount FieldKey = "self_employed_driver_count"
	FieldRiderCount              FieldKey = "rider_count"

	FieldAvailability    FieldKey = "availability"
	FieldAdditionalNotes FieldKey = "additional_notes"
)

type fieldSpec struct {
	kind Kind
	step int
}

// catalogue records each field's kind and the step that introduces it.
var catalogue = map[FieldKey]fieldSpec{
	FieldCompanyName:      {KindText, 1},
	FieldEmail:            {KindText, 1},
	FieldAddress:          {KindText, 1},
	FieldWebsite:          {KindText, 1},
	FieldContactFirstName: {KindText, 1},
	FieldContactLastName:  {KindText, 1},
	FieldContactPosition:  {KindText, 1},
	FieldPhone:            {KindText, 1},

	FieldFoundingYear:        {KindNumber, 2},
	FieldLastMileExperience:  {KindTriState, 2},
	FieldExperienceSinceYear: {KindNumber, 2},

	FieldWorksForQuickCommerce: {KindTriState, 2},
	FieldWorksForGigEconomy:    {KindTriState, 2},
	FieldPlatforms:             {KindMultiSelect, 2},
	FieldBikeCount:             {KindNumber, 2},
	FieldCargoBikeCount:        {KindNumber, 2},

	FieldLegalStatus:               {KindText, 2},
	FieldOwnsVehicles:              {KindTriState, 2},
	FieldVehicleTypes:              {KindMultiSelect, 2},
	FieldVehicleCount:              {KindNumber, 2},
	FieldOperatesMultipleCountries: {KindTriState, 2},
	FieldOperatesMultipleCities:    {KindTriState, 2},

	FieldStaffTypes:              {KindMultiSelect, 3},
	FieldEmployedDriverCount:     {KindNumber, 3},
	FieldSelfEmployedDriverCount: {KindNumber, 3},
	FieldRiderCount:              {KindNumber, 3},

	FieldAvailability:    {KindAvailability, 4},
	FieldAdditionalNotes: {KindText, 4},
}

// KindOf reports the kind of a known field.
func KindOf(key FieldKey) (Kind, bool) {
	spec, ok := catalogue[key]
	return spec.kind, ok
}

// IntroducedAt is the step on which key is first asked.
func IntroducedAt(key FieldKey) int {
	return catalogue[key].step
}

// CompanionKey is the free-text field that accompanies Other on a multi-select.
func CompanionKey(key FieldKey) FieldKey {
	return key + "_other"
}

func labelKey(key FieldKey) string {
	return "field." + string(key)
}

// defaultedTriStates lists tri-states that carry a meaningful default and are
// therefore not required to be answered explicitly. The UK/Ireland tri-states are
// deliberately absent.
var defaultedTriStates = map[FieldKey]TriState{
	FieldOperatesMultipleCountries: No,
	FieldOperatesMultipleCities:    No,
}

func isDefaultedTriState(key FieldKey) bool {
	_, ok := defaultedTriStates[key]
	return ok
}
