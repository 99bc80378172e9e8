package intake

import (
	"time"

	"partner-intake/internal/models"
)

// The binding tables map answer keys onto Contact fields in both directions.
var textBindings = []struct {
	key   FieldKey
	field func(*models.Contact) *string
}{
	{FieldCompanyName, func(c *models.Contact) *string { return &c.CompanyName }},
	{FieldEmail, func(c *models.Contact) *string { return &c.Email }},
	{FieldAddress, func(c *models.Contact) *string { return &c.Address }},
	{FieldWebsite, func(c *models.Contact) *string { return &c.Website }},
	{FieldContactFirstName, func(c *models.Contact) *string { return &c.ContactFirstName }},
	{FieldContactLastName, func(c *models.Contact) *string { return &c.ContactLastName }},
	{FieldContactPosition, func(c *models.Contact) *string { return &c.ContactPosition }},
	{FieldPhone, func(c *models.Contact) *string { return &c.Phone }},
	{FieldLegalStatus, func(c *models.Contact) *string { return &c.LegalStatus }},
	{FieldAdditionalNotes, func(c *models.Contact) *string { return &c.AdditionalNotes }},
}

var numberBindings = []struct {
	key   FieldKey
	field func(*models.Contact) **int
}{
	{FieldFoundingYear, func(c *models.Contact) **int { return &c.FoundingYear }},
	{FieldExperienceSinceYear, func(c *models.Contact) **int { return &c.ExperienceSinceYear }},
	{FieldBikeCount, func(c *models.Contact) **int { return &c.BikeCount }},
	{FieldCargoBikeCount, func(c *models.Contact) **int { return &c.CargoBikeCount }},
	{FieldVehicleCount, func(c *models.Contact) **int { return &c.VehicleCount }},
	{FieldEmployedDriverCount, func(c *models.Contact) **int { return &c.EmployedDriverCount }},
	{FieldSelfEmployedDriverCount, func(c *models.Contact) **int { return &c.SelfEmployedDriverCount }},
	{FieldRiderCount, func(c *models.Contact) **int { return &c.RiderCount }},
}

var triStateBindings = []struct {
	key   FieldKey
	field func(*models.Contact) **bool
}{
	{FieldLastMileExperience, func(c *models.Contact) **bool { return &c.LastMileExperience }},
	{FieldWorksForQuickCommerce, func(c *models.Contact) **bool { return &c.WorksForQuickCommerce }},
	{FieldWorksForGigEconomy, func(c *models.Contact) **bool { return &c.WorksForGigEconomy }},
	{FieldOwnsVehicles, func(c *models.Contact) **bool { return &c.OwnsVehicles }},
	{FieldOperatesMultipleCountries, func(c *models.Contact) **bool { return &c.OperatesMultipleCountries }},
	{FieldOperatesMultipleCities, func(c *models.Contact) **bool { return &c.OperatesMultipleCities }},
}

var selectionBindings = []struct {
	key    FieldKey
	values func(*models.Contact) *[]string
	other  func(*models.Contact) *string
}{
	{FieldPlatforms,
		func(c *models.Contact) *[]string { return &c.Platforms },
		func(c *models.Contact) *string { return &c.PlatformsOther }},
	{FieldVehicleTypes,
		func(c *models.Contact) *[]string { return &c.VehicleTypes },
		func(c *models.Contact) *string { return &c.VehicleTypesOther }},
	{FieldStaffTypes,
		func(c *models.Contact) *[]string { return &c.StaffTypes },
		func(c *models.Contact) *string { return &c.StaffTypesOther }},
}

// AnswersFromContact pre-fills an answer record from a stored contact.
func AnswersFromContact(c models.Contact) *Answers {
	a := NewAnswers(c.MarketType, c.TargetMarket)
	a.contactID = c.ID

	for _, b := range textBindings {
		if v := *b.field(&c); v != "" {
			a.texts[b.key] = v
		}
	}
	for _, b := range numberBindings {
		if v := *b.field(&c); v != nil {
			a.numbers[b.key] = *v
		}
	}
	for _, b := range triStateBindings {
		if t := TriStateFromPtr(*b.field(&c)); t != Unset {
			a.triStates[b.key] = t
		}
	}
	for _, b := range selectionBindings {
		sel := SelectionFromValues(*b.values(&c), *b.other(&c))
		if sel.Len() > 0 || sel.otherText != "" {
			a.selections[b.key] = sel
		}
	}
	for location, available := range c.Availability {
		a.availability[location] = available
	}
	return a
}

// Assemble builds the record handed to the contact repository. The record is
// marked complete at now; the ID is carried over only for updates.
func Assemble(answers *Answers, isUpdate bool, now time.Time) models.Contact {
	c := models.Contact{
		MarketType:   answers.marketType,
		TargetMarket: answers.targetMarket,
	}
	if isUpdate {
		c.ID = answers.contactID
	}

	for _, b := range textBindings {
		*b.field(&c) = answers.Text(b.key)
	}
	for _, b := range numberBindings {
		if n, ok := answers.Number(b.key); ok {
			v := n
			*b.field(&c) = &v
		}
	}
	for _, b := range triStateBindings {
		*b.field(&c) = answers.TriState(b.key).Ptr()
	}
	for _, b := range selectionBindings {
		sel := answers.Selection(b.key)
		*b.values(&c) = sel.Values()
		*b.other(&c) = sel.OtherText()
	}
	if avail := answers.Availability(); len(avail) > 0 {
		c.Availability = avail
	}

	completedAt := now
	c.FormCompleted = true
	c.FormCompletedAt = &completedAt
	return c
}

// draft is the in-progress record stored with a session snapshot.
func draft(answers *Answers) models.Contact {
	c := Assemble(answers, true, time.Time{})
	c.FormCompleted = false
	c.FormCompletedAt = nil
	return c
}
