package intake

import "partner-intake/internal/models"

// RuleContext is what a rule predicate may look at.
type RuleContext struct {
	MarketType   string
	TargetMarket string
	Answers      *Answers
	Market       *models.MarketConfig
}

type Predicate func(RuleContext) bool

// Rule makes Key required on Step whenever When holds. DependsOn names every
// answer the predicate reads, and MinFrom names the number Key may not fall below.
type Rule struct {
	Step      int
	Key       FieldKey
	LabelKey  string
	Kind      Kind
	MinFrom   FieldKey
	DependsOn []FieldKey
	When      Predicate
}

func always(RuleContext) bool { return true }

func marketIs(marketType string) Predicate {
	return func(c RuleContext) bool { return c.MarketType == marketType }
}

func targetIn(targets ...string) Predicate {
	return func(c RuleContext) bool {
		for _, t := range targets {
			if c.TargetMarket == t {
				return true
			}
		}
		return false
	}
}

func not(p Predicate) Predicate {
	return func(c RuleContext) bool { return !p(c) }
}

func answered(key FieldKey, want TriState) Predicate {
	return func(c RuleContext) bool { return c.Answers.TriState(key) == want }
}

func allOf(ps ...Predicate) Predicate {
	return func(c RuleContext) bool {
		for _, p := range ps {
			if !p(c) {
				return false
			}
		}
		return true
	}
}

func anyOf(ps ...Predicate) Predicate {
	return func(c RuleContext) bool {
		for _, p := range ps {
			if p(c) {
				return true
			}
		}
		return false
	}
}

func usesZones(c RuleContext) bool {
	return c.Market != nil && c.Market.UsesZones()
}

var (
	bicycle      = marketIs(models.MarketTypeBicycleDelivery)
	van          = marketIs(models.MarketTypeVanTransport)
	britishIsles = targetIn("uk", "ireland")

	vanBritishIsles = allOf(van, britishIsles)
	vanElsewhere    = allOf(van, not(britishIsles))

	ridesForPlatforms = allOf(bicycle, anyOf(
		answered(FieldWorksForQuickCommerce, Yes),
		answered(FieldWorksForGigEconomy, Yes),
	))
)

func rule(step int, key FieldKey, when Predicate, dependsOn ...FieldKey) Rule {
	return Rule{
		Step:      step,
		Key:       key,
		LabelKey:  labelKey(key),
		Kind:      catalogue[key].kind,
		DependsOn: dependsOn,
		When:      when,
	}
}

// rules is evaluated top to bottom; the order is the order of the messages.
var rules = []Rule{
	rule(1, FieldCompanyName, always),
	rule(1, FieldEmail, always),
	rule(1, FieldAddress, always),
	rule(1, FieldWebsite, always),
	rule(1, FieldContactFirstName, always),
	rule(1, FieldPhone, always),

	rule(2, FieldFoundingYear, always),
	rule(2, FieldLastMileExperience, always),
	withMin(rule(2, FieldExperienceSinceYear, answered(FieldLastMileExperience, Yes), FieldLastMileExperience), FieldFoundingYear),

	rule(2, FieldWorksForQuickCommerce, bicycle),
	rule(2, FieldWorksForGigEconomy, allOf(bicycle, answered(FieldWorksForQuickCommerce, No)), FieldWorksForQuickCommerce),
	rule(2, FieldPlatforms, ridesForPlatforms, FieldWorksForQuickCommerce, FieldWorksForGigEconomy),
	rule(2, FieldBikeCount, ridesForPlatforms, FieldWorksForQuickCommerce, FieldWorksForGigEconomy),
	rule(2, FieldCargoBikeCount, ridesForPlatforms, FieldWorksForQuickCommerce, FieldWorksForGigEconomy),

	rule(2, FieldLegalStatus, vanBritishIsles),
	rule(2, FieldOwnsVehicles, vanBritishIsles),
	rule(2, FieldVehicleTypes, vanBritishIsles),

	rule(2, FieldVehicleCount, vanElsewhere),
	rule(2, FieldOperatesMultipleCountries, vanElsewhere),
	rule(2, FieldOperatesMultipleCities, vanElsewhere),

	rule(3, FieldStaffTypes, always),
	rule(3, FieldEmployedDriverCount, van),
	rule(3, FieldSelfEmployedDriverCount, vanBritishIsles),
	rule(3, FieldRiderCount, bicycle),

	withLabel(rule(4, FieldAvailability, usesZones), "field.zones"),
	withLabel(rule(4, FieldAvailability, not(usesZones)), "field.cities"),
}

func withMin(r Rule, from FieldKey) Rule {
	r.MinFrom = from
	return r
}

func withLabel(r Rule, labelKey string) Rule {
	r.LabelKey = labelKey
	return r
}

// Rules returns a copy of the rule table.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}
