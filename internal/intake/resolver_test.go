package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partner-intake/internal/models"
)

func TestResolveStep1(t *testing.T) {
	for _, market := range []*models.MarketConfig{berlinBikes, ukVans, germanVans} {
		reqs := Resolve(1, market.MarketType, market.TargetMarket, NewAnswers(market.MarketType, market.TargetMarket), market, germanLabels)
		assert.Equal(t, []FieldKey{
			FieldCompanyName, FieldEmail, FieldAddress, FieldWebsite, FieldContactFirstName, FieldPhone,
		}, keys(reqs), market.TargetMarket)
	}
}

func TestResolveOutOfRange(t *testing.T) {
	a := NewAnswers(models.MarketTypeVanTransport, "uk")
	assert.Nil(t, Resolve(0, "van_transport", "uk", a, ukVans, germanLabels))
	assert.Nil(t, Resolve(TotalSteps+1, "van_transport", "uk", a, ukVans, germanLabels))
}

func TestResolveExperienceSince(t *testing.T) {
	a := NewAnswers(models.MarketTypeVanTransport, "germany")
	reqs := Resolve(2, "van_transport", "germany", a, germanVans, germanLabels)
	assert.NotContains(t, keys(reqs), FieldExperienceSinceYear)

	require.NoError(t, a.SetTriState(FieldLastMileExperience, No))
	reqs = Resolve(2, "van_transport", "germany", a, germanVans, germanLabels)
	assert.NotContains(t, keys(reqs), FieldExperienceSinceYear)

	require.NoError(t, a.SetTriState(FieldLastMileExperience, Yes))
	reqs = Resolve(2, "van_transport", "germany", a, germanVans, germanLabels)
	require.Contains(t, keys(reqs), FieldExperienceSinceYear)
	for _, r := range reqs {
		if r.Key == FieldExperienceSinceYear {
			assert.Equal(t, FieldFoundingYear, r.MinFrom)
		}
	}
}

func TestResolveBicycleStep2(t *testing.T) {
	a := NewAnswers(models.MarketTypeBicycleDelivery, "berlin")
	resolve := func() []FieldKey {
		return keys(Resolve(2, "bicycle_delivery", "berlin", a, berlinBikes, germanLabels))
	}

	assert.Equal(t, []FieldKey{FieldFoundingYear, FieldLastMileExperience, FieldWorksForQuickCommerce}, resolve())

	require.NoError(t, a.SetTriState(FieldWorksForQuickCommerce, No))
	assert.Equal(t, []FieldKey{FieldFoundingYear, FieldLastMileExperience, FieldWorksForQuickCommerce, FieldWorksForGigEconomy}, resolve())

	require.NoError(t, a.SetTriState(FieldWorksForGigEconomy, Yes))
	assert.Equal(t, []FieldKey{
		FieldFoundingYear, FieldLastMileExperience, FieldWorksForQuickCommerce, FieldWorksForGigEconomy,
		FieldPlatforms, FieldBikeCount, FieldCargoBikeCount,
	}, resolve())

	require.NoError(t, a.SetTriState(FieldWorksForQuickCommerce, Yes))
	assert.Equal(t, []FieldKey{
		FieldFoundingYear, FieldLastMileExperience, FieldWorksForQuickCommerce,
		FieldPlatforms, FieldBikeCount, FieldCargoBikeCount,
	}, resolve())
}

func TestResolveVanStep2ByTarget(t *testing.T) {
	uk := Resolve(2, "van_transport", "uk", NewAnswers("van_transport", "uk"), ukVans, germanLabels)
	assert.Equal(t, []FieldKey{
		FieldFoundingYear, FieldLastMileExperience, FieldLegalStatus, FieldOwnsVehicles, FieldVehicleTypes,
	}, keys(uk))

	ie := Resolve(2, "van_transport", "ireland", NewAnswers("van_transport", "ireland"), ukVans, germanLabels)
	assert.Equal(t, keys(uk), keys(ie))

	de := Resolve(2, "van_transport", "germany", NewAnswers("van_transport", "germany"), germanVans, germanLabels)
	assert.Equal(t, []FieldKey{
		FieldFoundingYear, FieldLastMileExperience, FieldVehicleCount, FieldOperatesMultipleCountries, FieldOperatesMultipleCities,
	}, keys(de))
}

func TestResolveCompanionOnOther(t *testing.T) {
	a := NewAnswers("bicycle_delivery", "berlin")
	require.NoError(t, a.SetTriState(FieldWorksForQuickCommerce, Yes))
	require.NoError(t, a.ToggleSelection(FieldPlatforms, Other()))

	reqs := Resolve(2, "bicycle_delivery", "berlin", a, berlinBikes, germanLabels)
	idx := -1
	for i, r := range reqs {
		if r.Key == CompanionKey(FieldPlatforms) {
			idx = i
		}
	}
	require.NotEqual(t, -1, idx)
	assert.Equal(t, FieldPlatforms, reqs[idx-1].Key)
	assert.Equal(t, FieldPlatforms, reqs[idx].Companion)
	assert.Equal(t, KindText, reqs[idx].Kind)
	assert.Equal(t, "Andere Plattformen", reqs[idx].Label)
}

func TestResolveStep3(t *testing.T) {
	assert.Equal(t, []FieldKey{FieldStaffTypes, FieldEmployedDriverCount, FieldSelfEmployedDriverCount},
		keys(Resolve(3, "van_transport", "uk", NewAnswers("van_transport", "uk"), ukVans, germanLabels)))
	assert.Equal(t, []FieldKey{FieldStaffTypes, FieldEmployedDriverCount},
		keys(Resolve(3, "van_transport", "germany", NewAnswers("van_transport", "germany"), germanVans, germanLabels)))
	assert.Equal(t, []FieldKey{FieldStaffTypes, FieldRiderCount},
		keys(Resolve(3, "bicycle_delivery", "berlin", NewAnswers("bicycle_delivery", "berlin"), berlinBikes, germanLabels)))
}

func TestResolveAvailabilityLabel(t *testing.T) {
	zones := Resolve(4, "bicycle_delivery", "berlin", NewAnswers("bicycle_delivery", "berlin"), berlinBikes, germanLabels)
	require.Len(t, zones, 1)
	assert.Equal(t, "Zone", zones[0].Label)
	assert.Equal(t, KindAvailability, zones[0].Kind)

	cities := Resolve(4, "van_transport", "germany", NewAnswers("van_transport", "germany"), germanVans, germanLabels)
	require.Len(t, cities, 1)
	assert.Equal(t, "Stadt", cities[0].Label)
}

func TestRuleTableNeverLooksAhead(t *testing.T) {
	for _, r := range Rules() {
		assert.Equal(t, r.Step, IntroducedAt(r.Key), "rule for %s", r.Key)
		kind, ok := KindOf(r.Key)
		require.True(t, ok, r.Key)
		assert.Equal(t, kind, r.Kind, r.Key)
		for _, dep := range r.DependsOn {
			assert.LessOrEqual(t, IntroducedAt(dep), r.Step, "%s depends on %s", r.Key, dep)
		}
		if r.MinFrom != "" {
			assert.LessOrEqual(t, IntroducedAt(r.MinFrom), r.Step, "%s min from %s", r.Key, r.MinFrom)
		}
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	a := NewAnswers("bicycle_delivery", "berlin")
	fillStep1(a)
	require.NoError(t, a.SetTriState(FieldWorksForQuickCommerce, Yes))
	require.NoError(t, a.ToggleSelection(FieldPlatforms, Known("Wolt")))

	for step := 1; step <= TotalSteps; step++ {
		first := Resolve(step, "bicycle_delivery", "berlin", a, berlinBikes, germanLabels)
		second := Resolve(step, "bicycle_delivery", "berlin", a, berlinBikes, germanLabels)
		assert.Equal(t, first, second)
		assert.Equal(t, Validate(first, a, germanLabels), Validate(second, a, germanLabels))
	}
}
