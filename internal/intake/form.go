package intake

import (
	"context"
	"time"

	apperrors "partner-intake/internal/common/errors"
	"partner-intake/internal/models"
)

type MarketLookup interface {
	Get(ctx context.Context, marketType, targetMarket string) (*models.MarketConfig, error)
}

type ContactRepository interface {
	Get(ctx context.Context, id string) (*models.Contact, error)
	Create(ctx context.Context, contact models.Contact) (string, error)
	Update(ctx context.Context, id string, contact models.Contact) error
}

// Translations hands out a Translator per language.
type Translations interface {
	For(language string) Translator
}

// Emitter receives tracking events. Implementations must not block.
type Emitter interface {
	Emit(ctx context.Context, event models.TrackingEvent)
}

type Dependencies struct {
	Markets      MarketLookup
	Contacts     ContactRepository
	Translations Translations
	Emitter      Emitter
	Clock        func() time.Time
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, models.TrackingEvent) {}

// Form is one intake session: market, answers and step machine.
type Form struct {
	sessionID string
	market    *models.MarketConfig
	tr        Translator
	answers   *Answers
	machine   *StepMachine
	isUpdate  bool

	contacts ContactRepository
	emitter  Emitter
	clock    func() time.Time
}

// NewForm opens a session. A missing market configuration is fatal and never
// reported as a validation failure. With contactID the answers are pre-filled
// from the repository and submission updates that contact.
func NewForm(ctx context.Context, deps Dependencies, sessionID, marketType, targetMarket, contactID string) (*Form, error) {
	market, err := lookupMarket(ctx, deps.Markets, marketType, targetMarket)
	if err != nil {
		return nil, err
	}

	var answers *Answers
	if contactID != "" {
		contact, err := deps.Contacts.Get(ctx, contactID)
		if err != nil {
			return nil, err
		}
		answers = AnswersFromContact(*contact)
		answers.marketType = marketType
		answers.targetMarket = targetMarket
	} else {
		answers = NewAnswers(marketType, targetMarket)
		for key, value := range defaultedTriStates {
			answers.triStates[key] = value
		}
	}

	f := newForm(deps, sessionID, market, answers, NewStepMachine(), contactID != "")
	f.emit(ctx, models.EventSessionStarted, nil)
	return f, nil
}

func lookupMarket(ctx context.Context, markets MarketLookup, marketType, targetMarket string) (*models.MarketConfig, error) {
	market, err := markets.Get(ctx, marketType, targetMarket)
	if err != nil {
		return nil, err
	}
	if market == nil {
		return nil, apperrors.NewMarketConfigNotFoundError(marketType, targetMarket)
	}
	return market, nil
}

func newForm(deps Dependencies, sessionID string, market *models.MarketConfig, answers *Answers, machine *StepMachine, isUpdate bool) *Form {
	f := &Form{
		sessionID: sessionID,
		market:    market,
		tr:        deps.Translations.For(market.Language),
		answers:   answers,
		machine:   machine,
		isUpdate:  isUpdate,
		contacts:  deps.Contacts,
		emitter:   deps.Emitter,
		clock:     deps.Clock,
	}
	if f.emitter == nil {
		f.emitter = noopEmitter{}
	}
	if f.clock == nil {
		f.clock = time.Now
	}
	return f
}

func (f *Form) SessionID() string            { return f.sessionID }
func (f *Form) Market() *models.MarketConfig { return f.market }
func (f *Form) Step() int                    { return f.machine.Step() }
func (f *Form) Phase() Phase                 { return f.machine.Phase() }
func (f *Form) ContactID() string            { return f.answers.ContactID() }

// Draft returns the current answers in record shape, not marked complete.
func (f *Form) Draft() models.Contact {
	return draft(f.answers)
}

// Requirements lists what the current step demands; empty outside the steps.
func (f *Form) Requirements() []Requirement {
	if f.machine.Phase() != PhaseStep {
		return nil
	}
	return f.requirements(f.machine.Step())
}

// Missing is the validation result for the current step.
func (f *Form) Missing() []string {
	if f.machine.Phase() != PhaseStep {
		return nil
	}
	return f.validate(f.machine.Step())
}

func (f *Form) Label(key FieldKey) string {
	return f.tr.T(labelKey(key))
}

func (f *Form) requirements(step int) []Requirement {
	return Resolve(step, f.answers.marketType, f.answers.targetMarket, f.answers, f.market, f.tr)
}

func (f *Form) validate(step int) []string {
	return Validate(f.requirements(step), f.answers, f.tr)
}

func (f *Form) writable() error {
	if f.machine.Phase() == PhaseSubmitted {
		return apperrors.NewFormAlreadySubmittedError()
	}
	return nil
}

func (f *Form) SetText(key FieldKey, value string) error {
	if err := f.writable(); err != nil {
		return err
	}
	return f.answers.SetText(key, value)
}

func (f *Form) SetNumber(key FieldKey, value int) error {
	if err := f.writable(); err != nil {
		return err
	}
	return f.answers.SetNumber(key, value)
}

func (f *Form) ClearNumber(key FieldKey) error {
	if err := f.writable(); err != nil {
		return err
	}
	return f.answers.ClearNumber(key)
}

func (f *Form) SetTriState(key FieldKey, value TriState) error {
	if err := f.writable(); err != nil {
		return err
	}
	return f.answers.SetTriState(key, value)
}

// ToggleSelection rejects values the market does not offer for key.
func (f *Form) ToggleSelection(key FieldKey, value string) error {
	if err := f.writable(); err != nil {
		return err
	}
	if !models.Offers(f.options(key), value) {
		return apperrors.NewUnknownOptionError(string(key), value)
	}
	return f.answers.ToggleSelection(key, ParseChoice(value))
}

func (f *Form) SetOtherText(key FieldKey, text string) error {
	if err := f.writable(); err != nil {
		return err
	}
	return f.answers.SetOtherText(key, text)
}

func (f *Form) ToggleAvailability(location string) error {
	if err := f.checkLocation(location); err != nil {
		return err
	}
	f.answers.ToggleAvailability(location)
	return nil
}

func (f *Form) SetAvailability(location string, available bool) error {
	if err := f.checkLocation(location); err != nil {
		return err
	}
	f.answers.SetAvailability(location, available)
	return nil
}

func (f *Form) checkLocation(location string) error {
	if err := f.writable(); err != nil {
		return err
	}
	for _, l := range f.market.Locations() {
		if l == location {
			return nil
		}
	}
	return apperrors.NewUnknownOptionError(string(FieldAvailability), location)
}

func (f *Form) options(key FieldKey) []string {
	switch key {
	case FieldPlatforms:
		return f.market.Platforms
	case FieldVehicleTypes:
		return f.market.VehicleTypes
	case FieldStaffTypes:
		return f.market.StaffTypes
	}
	return nil
}

// Next validates the current step and advances when nothing is missing.
func (f *Form) Next(ctx context.Context) ([]string, error) {
	msgs, err := f.machine.Next(f.validate)
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		f.emit(ctx, models.EventValidationFailed, msgs)
		return msgs, nil
	}
	f.emit(ctx, models.EventStepChanged, nil)
	return nil, nil
}

func (f *Form) Previous(ctx context.Context) error {
	if err := f.machine.Previous(); err != nil {
		return err
	}
	f.emit(ctx, models.EventStepChanged, nil)
	return nil
}

// Submit writes the assembled record once. A failed write leaves the form on the
// summary with its answers untouched so the same submit can be repeated.
func (f *Form) Submit(ctx context.Context) ([]string, error) {
	msgs, err := f.machine.Submit(f.validate, func() error {
		record := Assemble(f.answers, f.isUpdate, f.clock().UTC())
		if f.isUpdate {
			return f.contacts.Update(ctx, f.answers.contactID, record)
		}
		id, err := f.contacts.Create(ctx, record)
		if err != nil {
			return err
		}
		f.answers.contactID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		f.emit(ctx, models.EventValidationFailed, msgs)
		return msgs, nil
	}
	f.emit(ctx, models.EventFormSubmitted, nil)
	return nil, nil
}

func (f *Form) emit(ctx context.Context, eventType models.EventType, msgs []string) {
	f.emitter.Emit(ctx, models.TrackingEvent{
		Type:         eventType,
		SessionID:    f.sessionID,
		ContactID:    f.answers.contactID,
		MarketType:   f.answers.marketType,
		TargetMarket: f.answers.targetMarket,
		Step:         f.machine.Step(),
		Phase:        f.machine.Phase().String(),
		Messages:     msgs,
		Timestamp:    f.clock().UTC(),
	})
}
