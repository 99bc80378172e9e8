package intake

import (
	"fmt"
	"strings"

	apperrors "partner-intake/internal/common/errors"
)

// Answers is the accumulated answer record of one form session. It is changed
// only through its mutators; readers return copies.
type Answers struct {
	contactID    string
	marketType   string
	targetMarket string

	texts        map[FieldKey]string
	numbers      map[FieldKey]int
	triStates    map[FieldKey]TriState
	selections   map[FieldKey]Selection
	availability map[string]bool
}

// NewAnswers returns an empty answer set for one market.
func NewAnswers(marketType, targetMarket string) *Answers {
	return &Answers{
		marketType:   marketType,
		targetMarket: targetMarket,
		texts:        make(map[FieldKey]string),
		numbers:      make(map[FieldKey]int),
		triStates:    make(map[FieldKey]TriState),
		selections:   make(map[FieldKey]Selection),
		availability: make(map[string]bool),
	}
}

func (a *Answers) ContactID() string    { return a.contactID }
func (a *Answers) MarketType() string   { return a.marketType }
func (a *Answers) TargetMarket() string { return a.targetMarket }

func expectKind(key FieldKey, want Kind) error {
	kind, ok := KindOf(key)
	if !ok {
		return apperrors.NewInvalidAnswerError(string(key), "unknown field")
	}
	if kind != want {
		return apperrors.NewInvalidAnswerError(string(key), fmt.Sprintf("field is %s, not %s", kind, want))
	}
	return nil
}

// SetText stores a text answer. An empty value clears it.
func (a *Answers) SetText(key FieldKey, value string) error {
	if err := expectKind(key, KindText); err != nil {
		return err
	}
	if value == "" {
		delete(a.texts, key)
		return nil
	}
	a.texts[key] = value
	return nil
}

// SetNumber rejects negative values.
func (a *Answers) SetNumber(key FieldKey, value int) error {
	if err := expectKind(key, KindNumber); err != nil {
		return err
	}
	if value < 0 {
		return apperrors.NewInvalidAnswerError(string(key), "value must not be negative")
	}
	a.numbers[key] = value
	return nil
}

// ClearNumber removes a number answer.
func (a *Answers) ClearNumber(key FieldKey) error {
	if err := expectKind(key, KindNumber); err != nil {
		return err
	}
	delete(a.numbers, key)
	return nil
}

// SetTriState stores a yes/no answer. Unset clears it.
func (a *Answers) SetTriState(key FieldKey, value TriState) error {
	if err := expectKind(key, KindTriState); err != nil {
		return err
	}
	if value == Unset {
		delete(a.triStates, key)
		return nil
	}
	a.triStates[key] = value
	return nil
}

// ToggleSelection adds or removes one choice of a multi-select field.
func (a *Answers) ToggleSelection(key FieldKey, choice Choice) error {
	if err := expectKind(key, KindMultiSelect); err != nil {
		return err
	}
	sel := a.selections[key].clone()
	sel.Toggle(choice)
	a.selections[key] = sel
	return nil
}

// SetOtherText sets the free text that accompanies Other on a multi-select field.
func (a *Answers) SetOtherText(key FieldKey, text string) error {
	if err := expectKind(key, KindMultiSelect); err != nil {
		return err
	}
	sel := a.selections[key].clone()
	sel.otherText = text
	a.selections[key] = sel
	return nil
}

// ToggleAvailability flips one city or zone.
func (a *Answers) ToggleAvailability(location string) {
	a.availability[location] = !a.availability[location]
}

// SetAvailability marks one city or zone as available or not.
func (a *Answers) SetAvailability(location string, available bool) {
	a.availability[location] = available
}

// Text returns "" for an unanswered field.
func (a *Answers) Text(key FieldKey) string {
	return a.texts[key]
}

// Number reports false when the field has no answer.
func (a *Answers) Number(key FieldKey) (int, bool) {
	n, ok := a.numbers[key]
	return n, ok
}

func (a *Answers) TriState(key FieldKey) TriState {
	return a.triStates[key]
}

// Selection returns a copy, so callers cannot mutate stored answers.
func (a *Answers) Selection(key FieldKey) Selection {
	return a.selections[key].clone()
}

// Availability returns a copy of the availability map.
func (a *Answers) Availability() map[string]bool {
	out := make(map[string]bool, len(a.availability))
	for k, v := range a.availability {
		out[k] = v
	}
	return out
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}
