package sessions

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "partner-intake/internal/common/errors"
	"partner-intake/internal/common/logger"
	"partner-intake/internal/i18n"
	"partner-intake/internal/intake"
	"partner-intake/internal/markets"
	"partner-intake/internal/models"
)

const marketsDoc = `{"markets":[
  {"marketType":"bicycle_delivery","targetMarket":"berlin","language":"de",
   "zones":["Mitte","Kreuzberg"],"staffTypes":["employed","freelance"],"platforms":["Wolt","Flink"]},
  {"marketType":"van_transport","targetMarket":"uk","language":"en",
   "cities":["London","Leeds"],"staffTypes":["employed","self_employed"],"vehicleTypes":["small_van","large_van"]}
]}`

type memoryContacts struct {
	stored   map[string]models.Contact
	writeErr error
	writes   int
}

func (m *memoryContacts) Get(_ context.Context, id string) (*models.Contact, error) {
	c, ok := m.stored[id]
	if !ok {
		return nil, apperrors.NewContactNotFoundError(id)
	}
	return &c, nil
}

func (m *memoryContacts) Create(_ context.Context, c models.Contact) (string, error) {
	m.writes++
	if m.writeErr != nil {
		return "", m.writeErr
	}
	c.ID = "contact-1"
	m.stored[c.ID] = c
	return c.ID, nil
}

func (m *memoryContacts) Update(_ context.Context, id string, c models.Contact) error {
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.stored[id] = c
	return nil
}

// submittedSaveFailures fails saves of Submitted snapshots until failures runs out.
type submittedSaveFailures struct {
	*Store
	failures  int
	deleteErr error
	deletes   int
}

func (s *submittedSaveFailures) Save(ctx context.Context, snap intake.Snapshot) error {
	if snap.Phase == intake.PhaseSubmitted && s.failures > 0 {
		s.failures--
		return apperrors.NewSessionStoreFailedError(errors.New("connection reset"))
	}
	return s.Store.Save(ctx, snap)
}

func (s *submittedSaveFailures) Delete(ctx context.Context, id string) error {
	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.Store.Delete(ctx, id)
}

func newTestManager(t *testing.T) (*Manager, *memoryContacts) {
	t.Helper()
	store, _ := newMiniredisStore(t, time.Hour)
	return newTestManagerWithStore(t, store)
}

func newTestManagerWithStore(t *testing.T, store SnapshotStore) (*Manager, *memoryContacts) {
	t.Helper()
	registry, err := markets.Parse([]byte(marketsDoc))
	require.NoError(t, err)
	catalog, err := i18n.Load()
	require.NoError(t, err)

	contacts := &memoryContacts{stored: map[string]models.Contact{}}
	deps := intake.Dependencies{
		Markets:      registry,
		Contacts:     contacts,
		Translations: catalog,
		Clock:        func() time.Time { return time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC) },
	}
	m := NewManager(deps, store, logger.NewTestLogger(t))
	seq := 0
	m.newID = func() string {
		seq++
		return fmt.Sprintf("session-%d", seq)
	}
	return m, contacts
}

func num(v int) *int    { return &v }
func flag(v bool) *bool { return &v }

func TestManager_StartUnknownMarket(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Start(context.Background(), "van_transport", "atlantis", "")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMarketConfigNotFound))
}

func TestManager_BerlinExample(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	v, err := m.Start(ctx, "bicycle_delivery", "berlin", "")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Step)
	assert.Equal(t, intake.TotalSteps, v.TotalSteps)

	_, err = m.Apply(ctx, v.SessionID, []Mutation{
		{Op: OpSetText, Field: "company_name", Value: "Kurier GmbH"},
		{Op: OpSetText, Field: "email", Value: "a@b.example"},
		{Op: OpSetText, Field: "address", Value: "Hauptstr. 1"},
		{Op: OpSetText, Field: "website", Value: "kurier.example"},
		{Op: OpSetText, Field: "contact_first_name", Value: "Sam"},
		{Op: OpSetText, Field: "phone", Value: "030 1"},
	})
	require.NoError(t, err)

	out, err := m.Next(ctx, v.SessionID)
	require.NoError(t, err)
	require.Empty(t, out.Messages)
	assert.Equal(t, 2, out.View.Step)

	_, err = m.Apply(ctx, v.SessionID, []Mutation{
		{Op: OpSetNumber, Field: "founding_year", Number: num(2019)},
		{Op: OpSetTriState, Field: "last_mile_experience", Bool: flag(true)},
		{Op: OpSetNumber, Field: "experience_since_year", Number: num(2019)},
	})
	require.NoError(t, err)

	out, err = m.Next(ctx, v.SessionID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Quick Commerce Arbeit"}, out.Messages)
	assert.Equal(t, 2, out.View.Step)

	got, err := m.Get(ctx, v.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Step)
}

func TestManager_ApplyRejectsWholeBatch(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	v, err := m.Start(ctx, "bicycle_delivery", "berlin", "")
	require.NoError(t, err)

	_, err = m.Apply(ctx, v.SessionID, []Mutation{
		{Op: OpSetText, Field: "company_name", Value: "Kurier GmbH"},
		{Op: OpToggleSelection, Field: "platforms", Value: "Deliveroo"},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnknownOption))

	got, err := m.Get(ctx, v.SessionID)
	require.NoError(t, err)
	assert.Empty(t, got.Answers.CompanyName)

	_, err = m.Apply(ctx, v.SessionID, []Mutation{{Op: "explode"}})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidAnswer))

	_, err = m.Apply(ctx, v.SessionID, []Mutation{{Op: OpSetNumber, Field: "founding_year"}})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidAnswer))
}

func completeUKVan(t *testing.T, m *Manager, id string) {
	t.Helper()
	ctx := context.Background()
	steps := [][]Mutation{
		{
			{Op: OpSetText, Field: "company_name", Value: "Vans Ltd"},
			{Op: OpSetText, Field: "email", Value: "ops@vans.example"},
			{Op: OpSetText, Field: "address", Value: "1 High St"},
			{Op: OpSetText, Field: "website", Value: "vans.example"},
			{Op: OpSetText, Field: "contact_first_name", Value: "Alex"},
			{Op: OpSetText, Field: "phone", Value: "020 1"},
		},
		{
			{Op: OpSetNumber, Field: "founding_year", Number: num(2012)},
			{Op: OpSetTriState, Field: "last_mile_experience", Bool: flag(false)},
			{Op: OpSetText, Field: "legal_status", Value: "Ltd"},
			{Op: OpSetTriState, Field: "owns_vehicles", Bool: flag(true)},
			{Op: OpToggleSelection, Field: "vehicle_types", Value: "small_van"},
			{Op: OpToggleSelection, Field: "vehicle_types", Value: "other"},
			{Op: OpSetOtherText, Field: "vehicle_types", Value: "tipper"},
		},
		{
			{Op: OpToggleSelection, Field: "staff_types", Value: "employed"},
			{Op: OpSetNumber, Field: "employed_driver_count", Number: num(4)},
			{Op: OpSetNumber, Field: "self_employed_driver_count", Number: num(0)},
		},
		{
			{Op: OpSetAvailability, Value: "Leeds", Bool: flag(true)},
		},
	}
	for i, muts := range steps {
		_, err := m.Apply(ctx, id, muts)
		require.NoError(t, err, "step %d", i+1)
		out, err := m.Next(ctx, id)
		require.NoError(t, err)
		require.Empty(t, out.Messages, "step %d", i+1)
	}
}

func TestManager_SubmitFailureThenRetry(t *testing.T) {
	m, contacts := newTestManager(t)
	ctx := context.Background()

	v, err := m.Start(ctx, "van_transport", "uk", "")
	require.NoError(t, err)
	completeUKVan(t, m, v.SessionID)

	contacts.writeErr = apperrors.NewContactWriteFailedError(errors.New("timeout"))
	_, err = m.Submit(ctx, v.SessionID)
	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))

	got, err := m.Get(ctx, v.SessionID)
	require.NoError(t, err)
	assert.Equal(t, intake.PhaseSummary, got.Phase)

	contacts.writeErr = nil
	out, err := m.Submit(ctx, v.SessionID)
	require.NoError(t, err)
	assert.Equal(t, intake.PhaseSubmitted, out.View.Phase)
	assert.Equal(t, "contact-1", out.View.ContactID)
	assert.Equal(t, 2, contacts.writes)

	stored := contacts.stored["contact-1"]
	assert.True(t, stored.FormCompleted)
	assert.Equal(t, []string{"small_van", "other"}, stored.VehicleTypes)
	assert.Equal(t, "tipper", stored.VehicleTypesOther)

	_, err = m.Next(ctx, v.SessionID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeFormAlreadySubmitted))
	_, err = m.Submit(ctx, v.SessionID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeFormAlreadySubmitted))
	assert.Equal(t, 2, contacts.writes)
}

func TestManager_SubmitRevalidatesEarlierSteps(t *testing.T) {
	m, contacts := newTestManager(t)
	ctx := context.Background()

	v, err := m.Start(ctx, "van_transport", "uk", "")
	require.NoError(t, err)
	completeUKVan(t, m, v.SessionID)

	_, err = m.Apply(ctx, v.SessionID, []Mutation{
		{Op: OpSetText, Field: "company_name", Value: ""},
		{Op: OpClearNumber, Field: "founding_year"},
	})
	require.NoError(t, err)

	out, err := m.Submit(ctx, v.SessionID)
	require.NoError(t, err)
	assert.Len(t, out.Messages, 2)
	assert.Equal(t, intake.PhaseSummary, out.View.Phase)
	assert.Zero(t, contacts.writes)

	got, err := m.Get(ctx, v.SessionID)
	require.NoError(t, err)
	assert.Equal(t, intake.PhaseSummary, got.Phase)

	_, err = m.Apply(ctx, v.SessionID, []Mutation{
		{Op: OpSetText, Field: "company_name", Value: "Vans Ltd"},
		{Op: OpSetNumber, Field: "founding_year", Number: num(2012)},
	})
	require.NoError(t, err)
	out, err = m.Submit(ctx, v.SessionID)
	require.NoError(t, err)
	assert.Empty(t, out.Messages)
	assert.Equal(t, intake.PhaseSubmitted, out.View.Phase)
	assert.Equal(t, 1, contacts.writes)
}

func TestManager_SubmittedSaveFailure(t *testing.T) {
	t.Run("retried save records the submission", func(t *testing.T) {
		inner, _ := newMiniredisStore(t, time.Hour)
		store := &submittedSaveFailures{Store: inner, failures: 1}
		m, contacts := newTestManagerWithStore(t, store)
		ctx := context.Background()

		v, err := m.Start(ctx, "van_transport", "uk", "")
		require.NoError(t, err)
		completeUKVan(t, m, v.SessionID)

		out, err := m.Submit(ctx, v.SessionID)
		require.NoError(t, err)
		assert.Equal(t, intake.PhaseSubmitted, out.View.Phase)
		assert.Zero(t, store.deletes)

		_, err = m.Submit(ctx, v.SessionID)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeFormAlreadySubmitted))
		assert.Equal(t, 1, contacts.writes)
	})

	t.Run("session removed when save keeps failing", func(t *testing.T) {
		inner, _ := newMiniredisStore(t, time.Hour)
		store := &submittedSaveFailures{Store: inner, failures: 2}
		m, contacts := newTestManagerWithStore(t, store)
		ctx := context.Background()

		v, err := m.Start(ctx, "van_transport", "uk", "")
		require.NoError(t, err)
		completeUKVan(t, m, v.SessionID)

		out, err := m.Submit(ctx, v.SessionID)
		require.NoError(t, err)
		assert.Equal(t, intake.PhaseSubmitted, out.View.Phase)
		assert.Equal(t, "contact-1", out.View.ContactID)
		assert.Equal(t, 1, store.deletes)

		_, err = m.Submit(ctx, v.SessionID)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionNotFound))
		assert.Equal(t, 1, contacts.writes)
	})

	t.Run("delete failure still reports success", func(t *testing.T) {
		inner, _ := newMiniredisStore(t, time.Hour)
		store := &submittedSaveFailures{
			Store:     inner,
			failures:  2,
			deleteErr: apperrors.NewSessionStoreFailedError(errors.New("connection reset")),
		}
		m, contacts := newTestManagerWithStore(t, store)
		ctx := context.Background()

		v, err := m.Start(ctx, "van_transport", "uk", "")
		require.NoError(t, err)
		completeUKVan(t, m, v.SessionID)

		out, err := m.Submit(ctx, v.SessionID)
		require.NoError(t, err)
		assert.Equal(t, intake.PhaseSubmitted, out.View.Phase)
		assert.Equal(t, 1, contacts.writes)
	})
}

func TestManager_ResumeExistingContact(t *testing.T) {
	m, contacts := newTestManager(t)
	ctx := context.Background()
	contacts.stored["c-7"] = models.Contact{
		ID:           "c-7",
		MarketType:   "van_transport",
		TargetMarket: "uk",
		CompanyName:  "Vans Ltd",
	}

	v, err := m.Start(ctx, "van_transport", "uk", "c-7")
	require.NoError(t, err)
	assert.Equal(t, "c-7", v.ContactID)
	assert.Equal(t, "Vans Ltd", v.Answers.CompanyName)

	_, err = m.Start(ctx, "van_transport", "uk", "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeContactNotFound))
}

func TestManager_PreviousAndDiscard(t *testing.T) {
	m, contacts := newTestManager(t)
	ctx := context.Background()

	v, err := m.Start(ctx, "van_transport", "uk", "")
	require.NoError(t, err)

	_, err = m.Previous(ctx, v.SessionID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidTransition))

	completeUKVan(t, m, v.SessionID)
	back, err := m.Previous(ctx, v.SessionID)
	require.NoError(t, err)
	assert.Equal(t, intake.PhaseStep, back.Phase)
	assert.Equal(t, intake.TotalSteps, back.Step)

	require.NoError(t, m.Discard(ctx, v.SessionID))
	_, err = m.Get(ctx, v.SessionID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionNotFound))
	assert.True(t, apperrors.HasCode(m.Discard(ctx, v.SessionID), apperrors.ErrCodeSessionNotFound))
	assert.Zero(t, contacts.writes)
}
