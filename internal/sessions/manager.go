package sessions

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	apperrors "partner-intake/internal/common/errors"
	"partner-intake/internal/common/logger"
	"partner-intake/internal/common/metrics"
	"partner-intake/internal/intake"
	"partner-intake/internal/models"
)

// SnapshotStore is implemented by Store.
type SnapshotStore interface {
	Save(ctx context.Context, snap intake.Snapshot) error
	Load(ctx context.Context, id string) (intake.Snapshot, error)
	Delete(ctx context.Context, id string) error
}

// View is what a rendering layer needs to draw the current screen.
type View struct {
	SessionID    string               `json:"sessionId"`
	MarketType   string               `json:"marketType"`
	TargetMarket string               `json:"targetMarket"`
	ContactID    string               `json:"contactId,omitempty"`
	Step         int                  `json:"step"`
	TotalSteps   int                  `json:"totalSteps"`
	Phase        intake.Phase         `json:"phase"`
	Requirements []intake.Requirement `json:"requirements"`
	Answers      models.Contact       `json:"answers"`
	Market       *models.MarketConfig `json:"market"`
}

// Outcome is the result of a gated transition. Messages is non-empty when the
// transition was refused by validation.
type Outcome struct {
	View     *View    `json:"view"`
	Messages []string `json:"messages,omitempty"`
}

// Manager runs one Form per request: restore, act, save.
type Manager struct {
	deps   intake.Dependencies
	store  SnapshotStore
	logger logger.Logger
	newID  func() string
}

func NewManager(deps intake.Dependencies, store SnapshotStore, log logger.Logger) *Manager {
	return &Manager{
		deps:   deps,
		store:  store,
		logger: log.Component("sessions"),
		newID:  func() string { return uuid.New().String() },
	}
}

// Start opens a session. With contactID the answers are pre-filled from the
// stored contact and submission updates it.
func (m *Manager) Start(ctx context.Context, marketType, targetMarket, contactID string) (*View, error) {
	id := m.newID()
	form, err := intake.NewForm(ctx, m.deps, id, marketType, targetMarket, contactID)
	if err != nil {
		m.logger.Warn("session start refused", map[string]interface{}{
			"marketType":   marketType,
			"targetMarket": targetMarket,
			"contactId":    contactID,
			"errorCode":    string(apperrors.CodeOf(err)),
		})
		return nil, err
	}
	if err := m.store.Save(ctx, form.Snapshot()); err != nil {
		return nil, err
	}

	m.logger.Info("session started", map[string]interface{}{
		"sessionId":    id,
		"marketType":   marketType,
		"targetMarket": targetMarket,
		"prefilled":    contactID != "",
	})
	return view(form), nil
}

func (m *Manager) Get(ctx context.Context, id string) (*View, error) {
	form, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return view(form), nil
}

// Apply runs mutations in order and saves once. The first rejected mutation
// aborts the batch and nothing is saved.
func (m *Manager) Apply(ctx context.Context, id string, mutations []Mutation) (*View, error) {
	form, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, mut := range mutations {
		if err := mut.apply(form); err != nil {
			return nil, err
		}
	}
	if err := m.store.Save(ctx, form.Snapshot()); err != nil {
		return nil, err
	}
	return view(form), nil
}

func (m *Manager) Next(ctx context.Context, id string) (*Outcome, error) {
	form, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	step := form.Step()
	msgs, err := form.Next(ctx)
	if err != nil {
		metrics.StepTransitions.WithLabelValues(form.Market().MarketType, "next", "refused").Inc()
		return nil, err
	}
	if len(msgs) > 0 {
		metrics.StepTransitions.WithLabelValues(form.Market().MarketType, "next", "invalid").Inc()
		metrics.ValidationFailures.WithLabelValues(form.Market().MarketType, strconv.Itoa(step)).Inc()
		return &Outcome{View: view(form), Messages: msgs}, nil
	}
	metrics.StepTransitions.WithLabelValues(form.Market().MarketType, "next", "advanced").Inc()
	if err := m.store.Save(ctx, form.Snapshot()); err != nil {
		return nil, err
	}
	return &Outcome{View: view(form)}, nil
}

func (m *Manager) Previous(ctx context.Context, id string) (*View, error) {
	form, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := form.Previous(ctx); err != nil {
		metrics.StepTransitions.WithLabelValues(form.Market().MarketType, "previous", "refused").Inc()
		return nil, err
	}
	metrics.StepTransitions.WithLabelValues(form.Market().MarketType, "previous", "advanced").Inc()
	if err := m.store.Save(ctx, form.Snapshot()); err != nil {
		return nil, err
	}
	return view(form), nil
}

// Submit writes the contact. On a failed write the stored snapshot stays on the
// summary so the same submit can be repeated.
func (m *Manager) Submit(ctx context.Context, id string) (*Outcome, error) {
	form, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	market := form.Market()

	msgs, err := form.Submit(ctx)
	if err != nil {
		metrics.Submissions.WithLabelValues(market.MarketType, market.TargetMarket, "failed").Inc()
		m.logger.Error("submission failed", map[string]interface{}{
			"sessionId": id,
			"errorCode": string(apperrors.CodeOf(err)),
			"retryable": apperrors.IsRetryable(err),
			"error":     err,
		})
		return nil, err
	}
	if len(msgs) > 0 {
		metrics.Submissions.WithLabelValues(market.MarketType, market.TargetMarket, "invalid").Inc()
		return &Outcome{View: view(form), Messages: msgs}, nil
	}

	metrics.Submissions.WithLabelValues(market.MarketType, market.TargetMarket, "submitted").Inc()
	m.logger.Info("form submitted", map[string]interface{}{
		"sessionId":    id,
		"contactId":    form.ContactID(),
		"marketType":   market.MarketType,
		"targetMarket": market.TargetMarket,
	})
	// The contact is already written, so the submission succeeds either way.
	m.storeSubmitted(ctx, id, form.Snapshot())
	return &Outcome{View: view(form)}, nil
}

// storeSubmitted records the Submitted phase. A session left on Summary would
// let a repeated submit create the contact again, so when the save keeps
// failing the session is removed instead.
func (m *Manager) storeSubmitted(ctx context.Context, id string, snap intake.Snapshot) {
	err := m.store.Save(ctx, snap)
	if err == nil {
		return
	}
	m.logger.Warn("failed to store submitted session, retrying", map[string]interface{}{
		"sessionId": id,
		"error":     err,
	})
	if err = m.store.Save(ctx, snap); err == nil {
		return
	}
	if delErr := m.store.Delete(ctx, id); delErr != nil {
		m.logger.Error("submitted session could not be stored or removed", map[string]interface{}{
			"sessionId":   id,
			"contactId":   snap.Answers.ID,
			"saveError":   err,
			"deleteError": delErr,
		})
		return
	}
	m.logger.Warn("removed submitted session after save failure", map[string]interface{}{
		"sessionId": id,
		"error":     err,
	})
}

// Discard abandons a session without touching the contact repository.
func (m *Manager) Discard(ctx context.Context, id string) error {
	if _, err := m.store.Load(ctx, id); err != nil {
		return err
	}
	return m.store.Delete(ctx, id)
}

func (m *Manager) load(ctx context.Context, id string) (*intake.Form, error) {
	snap, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return intake.RestoreForm(ctx, m.deps, snap)
}

func view(f *intake.Form) *View {
	draft := f.Draft()
	return &View{
		SessionID:    f.SessionID(),
		MarketType:   draft.MarketType,
		TargetMarket: draft.TargetMarket,
		ContactID:    f.ContactID(),
		Step:         f.Step(),
		TotalSteps:   intake.TotalSteps,
		Phase:        f.Phase(),
		Requirements: f.Requirements(),
		Answers:      draft,
		Market:       f.Market(),
	}
}
