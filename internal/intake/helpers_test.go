package intake

import (
	"context"
	"errors"
	"time"

	apperrors "partner-intake/internal/common/errors"
	"partner-intake/internal/models"
)

type stubTranslator map[string]string

func (s stubTranslator) T(key string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return key
}

var germanLabels = stubTranslator{
	"field.works_for_quick_commerce": "Quick Commerce Arbeit",
	"field.experience_since_year":    "Erfahrung seit",
	"field.platforms_other":          "Andere Plattformen",
	"field.zones":                    "Zone",
	"field.cities":                   "Stadt",
	"validation.at_least":            "mindestens",
}

type stubTranslations struct{ tr Translator }

func (s stubTranslations) For(string) Translator { return s.tr }

type stubMarkets map[string]*models.MarketConfig

func (s stubMarkets) Get(_ context.Context, marketType, targetMarket string) (*models.MarketConfig, error) {
	if m, ok := s[marketType+"/"+targetMarket]; ok {
		return m, nil
	}
	return nil, apperrors.NewMarketConfigNotFoundError(marketType, targetMarket)
}

type fakeContacts struct {
	stored    map[string]models.Contact
	writeErr  error
	creates   int
	updates   int
	nextID    string
	lastWrite models.Contact
}

func newFakeContacts() *fakeContacts {
	return &fakeContacts{stored: map[string]models.Contact{}, nextID: "c-new"}
}

func (f *fakeContacts) Get(_ context.Context, id string) (*models.Contact, error) {
	c, ok := f.stored[id]
	if !ok {
		return nil, apperrors.NewContactNotFoundError(id)
	}
	return &c, nil
}

func (f *fakeContacts) Create(_ context.Context, c models.Contact) (string, error) {
	f.creates++
	if f.writeErr != nil {
		return "", f.writeErr
	}
	c.ID = f.nextID
	f.stored[c.ID] = c
	f.lastWrite = c
	return c.ID, nil
}

func (f *fakeContacts) Update(_ context.Context, id string, c models.Contact) error {
	f.updates++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.stored[id] = c
	f.lastWrite = c
	return nil
}

type recordingEmitter struct{ events []models.TrackingEvent }

func (r *recordingEmitter) Emit(_ context.Context, e models.TrackingEvent) {
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []models.EventType {
	out := make([]models.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

var (
	berlinBikes = &models.MarketConfig{
		MarketType:   models.MarketTypeBicycleDelivery,
		TargetMarket: "berlin",
		Language:     "de",
		Zones:        []string{"Mitte", "Kreuzberg", "Neukölln"},
		StaffTypes:   []string{"employed", "freelance"},
		Platforms:    []string{"Wolt", "Lieferando", "Flink"},
	}
	ukVans = &models.MarketConfig{
		MarketType:   models.MarketTypeVanTransport,
		TargetMarket: "uk",
		Language:     "en",
		Cities:       []string{"London", "Manchester"},
		VehicleTypes: []string{"small_van", "large_van"},
		StaffTypes:   []string{"employed", "self_employed"},
	}
	germanVans = &models.MarketConfig{
		MarketType:   models.MarketTypeVanTransport,
		TargetMarket: "germany",
		Language:     "de",
		Cities:       []string{"Berlin", "Hamburg", "München"},
		VehicleTypes: []string{"transporter"},
		StaffTypes:   []string{"employed"},
	}
)

var errWriteFailed = errors.New("connection reset")

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testDeps(contacts *fakeContacts, emitter Emitter) Dependencies {
	return Dependencies{
		Markets: stubMarkets{
			"bicycle_delivery/berlin": berlinBikes,
			"van_transport/uk":        ukVans,
			"van_transport/germany":   germanVans,
		},
		Contacts:     contacts,
		Translations: stubTranslations{tr: germanLabels},
		Emitter:      emitter,
		Clock:        func() time.Time { return fixedNow },
	}
}

func keys(reqs []Requirement) []FieldKey {
	out := make([]FieldKey, len(reqs))
	for i, r := range reqs {
		out[i] = r.Key
	}
	return out
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// fillStep1 answers every step-1 requirement.
func fillStep1(a *Answers) {
	for _, k := range []FieldKey{FieldCompanyName, FieldEmail, FieldAddress, FieldWebsite, FieldContactFirstName, FieldPhone} {
		must(a.SetText(k, "x-"+string(k)))
	}
}
