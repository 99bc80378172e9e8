package validatepartnerintake

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"partner-intake/internal/common/config"
	apperrors "partner-intake/internal/common/errors"
	"partner-intake/internal/common/logger"
	"partner-intake/internal/i18n"
	"partner-intake/internal/markets"
	"partner-intake/internal/models"
)

const marketsDoc = `{"markets":[
  {"marketType":"bicycle_delivery","targetMarket":"berlin","language":"de",
   "zones":["Mitte","Kreuzberg"],"staffTypes":["employed","freelance"],"platforms":["Wolt","Flink"]}
]}`

// ==========================
// Mock Contact Reader
// ==========================

type MockContacts struct {
	mock.Mock
}

func (m *MockContacts) Get(ctx context.Context, id string) (*models.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "partner-onboarding",
		ElementId:          "Activity_ValidateIntake",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func completeBerlinContact() *models.Contact {
	completedAt := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	return &models.Contact{
		ID:                    "c-1",
		MarketType:            models.MarketTypeBicycleDelivery,
		TargetMarket:          "berlin",
		CompanyName:           "Kurier GmbH",
		Email:                 "a@b.example",
		Address:               "Hauptstr. 1",
		Website:               "kurier.example",
		ContactFirstName:      "Sam",
		Phone:                 "030 1",
		FoundingYear:          intPtr(2015),
		LastMileExperience:    boolPtr(false),
		WorksForQuickCommerce: boolPtr(true),
		Platforms:             []string{"Wolt"},
		BikeCount:             intPtr(12),
		CargoBikeCount:        intPtr(2),
		StaffTypes:            []string{"freelance"},
		RiderCount:            intPtr(20),
		Availability:          map[string]bool{"Mitte": true},
		FormCompleted:         true,
		FormCompletedAt:       &completedAt,
	}
}

func newTestHandler(t *testing.T, contacts *MockContacts) *Handler {
	t.Helper()
	registry, err := markets.Parse([]byte(marketsDoc))
	require.NoError(t, err)
	catalog, err := i18n.Load()
	require.NoError(t, err)

	h, err := NewHandler(HandlerOptions{
		Contacts:     contacts,
		Markets:      registry,
		Translations: catalog,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	tests := []struct {
		name    string
		opts    HandlerOptions
		wantErr string
	}{
		{
			name:    "missing dependencies",
			opts:    HandlerOptions{Logger: logger.NewNoOpLogger()},
			wantErr: "requires contacts",
		},
		{
			name: "invalid timeout",
			opts: HandlerOptions{
				Config: &Config{Enabled: true, MaxJobsActive: 1},
				Logger: logger.NewNoOpLogger(),
			},
			wantErr: "timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHandler(tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, &MockContacts{})

	tests := []struct {
		name      string
		variables map[string]interface{}
		wantErr   bool
		wantID    string
	}{
		{
			name:      "valid input",
			variables: map[string]interface{}{"contactId": "c-1", "other": 1},
			wantID:    "c-1",
		},
		{
			name:      "missing contact id",
			variables: map[string]interface{}{},
			wantErr:   true,
		},
		{
			name:      "empty contact id",
			variables: map[string]interface{}{"contactId": ""},
			wantErr:   true,
		},
		{
			name:      "wrong type",
			variables: map[string]interface{}{"contactId": 42},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := h.parseInput(createMockJob(1, tt.variables))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInputParsingFailed))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, input.ContactID)
		})
	}
}

func TestHandler_Execute_Complete(t *testing.T) {
	contacts := &MockContacts{}
	contacts.On("Get", mock.Anything, "c-1").Return(completeBerlinContact(), nil)
	h := newTestHandler(t, contacts)

	out, err := h.Execute(context.Background(), &Input{ContactID: "c-1"})
	require.NoError(t, err)

	assert.True(t, out.IsComplete)
	assert.Zero(t, out.FirstIncompleteStep)
	require.Len(t, out.Steps, 4)
	for _, s := range out.Steps {
		assert.Empty(t, s.Missing, "step %d", s.Step)
	}
	contacts.AssertExpectations(t)
}

func TestHandler_Execute_Incomplete(t *testing.T) {
	contact := completeBerlinContact()
	contact.RiderCount = nil
	contact.Availability = map[string]bool{"Mitte": false}

	contacts := &MockContacts{}
	contacts.On("Get", mock.Anything, "c-1").Return(contact, nil)
	h := newTestHandler(t, contacts)

	out, err := h.Execute(context.Background(), &Input{ContactID: "c-1"})
	require.NoError(t, err)

	tr := h.translations.For("de")
	assert.False(t, out.IsComplete)
	assert.Equal(t, 3, out.FirstIncompleteStep)
	assert.Equal(t, []string{tr.T("field.rider_count")}, out.Steps[2].Missing)
	assert.Equal(t, []string{tr.T("field.zones")}, out.Steps[3].Missing)
}

func TestHandler_Execute_NotMarkedComplete(t *testing.T) {
	contact := completeBerlinContact()
	contact.FormCompleted = false
	contact.FormCompletedAt = nil

	contacts := &MockContacts{}
	contacts.On("Get", mock.Anything, "c-1").Return(contact, nil)
	h := newTestHandler(t, contacts)

	out, err := h.Execute(context.Background(), &Input{ContactID: "c-1"})
	require.NoError(t, err)
	assert.False(t, out.IsComplete)
	assert.Zero(t, out.FirstIncompleteStep)
}

func TestHandler_Execute_Errors(t *testing.T) {
	t.Run("contact not found", func(t *testing.T) {
		contacts := &MockContacts{}
		contacts.On("Get", mock.Anything, "missing").Return(nil, apperrors.NewContactNotFoundError("missing"))
		h := newTestHandler(t, contacts)

		_, err := h.Execute(context.Background(), &Input{ContactID: "missing"})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeContactNotFound))
	})

	t.Run("market no longer configured", func(t *testing.T) {
		contact := completeBerlinContact()
		contact.TargetMarket = "hamburg"
		contacts := &MockContacts{}
		contacts.On("Get", mock.Anything, "c-1").Return(contact, nil)
		h := newTestHandler(t, contacts)

		_, err := h.Execute(context.Background(), &Input{ContactID: "c-1"})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMarketConfigNotFound))
	})
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(&config.Config{})
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Timeout)

	cfg = ConfigFrom(&config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: true, MaxJobsActive: 3, Timeout: 5000},
	}})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 3, cfg.MaxJobsActive)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}
