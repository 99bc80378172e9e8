package sessions

import (
	"fmt"

	apperrors "partner-intake/internal/common/errors"
	"partner-intake/internal/intake"
)

type Op string

const (
	OpSetText            Op = "set_text"
	OpSetNumber          Op = "set_number"
	OpClearNumber        Op = "clear_number"
	OpSetTriState        Op = "set_tri_state"
	OpToggleSelection    Op = "toggle_selection"
	OpSetOtherText       Op = "set_other_text"
	OpToggleAvailability Op = "toggle_availability"
	OpSetAvailability    Op = "set_availability"
)

// Mutation is one answer change. Value carries text, option values and
// locations; Number and Bool carry the numeric and yes/no payloads. A nil Bool
// on set_tri_state resets the answer to unset.
type Mutation struct {
	Op     Op     `json:"op"`
	Field  string `json:"field,omitempty"`
	Value  string `json:"value,omitempty"`
	Number *int   `json:"number,omitempty"`
	Bool   *bool  `json:"bool,omitempty"`
}

func (m Mutation) apply(f *intake.Form) error {
	key := intake.FieldKey(m.Field)
	switch m.Op {
	case OpSetText:
		return f.SetText(key, m.Value)
	case OpSetNumber:
		if m.Number == nil {
			return apperrors.NewInvalidAnswerError(m.Field, "number is required")
		}
		return f.SetNumber(key, *m.Number)
	case OpClearNumber:
		return f.ClearNumber(key)
	case OpSetTriState:
		return f.SetTriState(key, intake.TriStateFromPtr(m.Bool))
	case OpToggleSelection:
		return f.ToggleSelection(key, m.Value)
	case OpSetOtherText:
		return f.SetOtherText(key, m.Value)
	case OpToggleAvailability:
		return f.ToggleAvailability(m.Value)
	case OpSetAvailability:
		if m.Bool == nil {
			return apperrors.NewInvalidAnswerError(string(intake.FieldAvailability), "bool is required")
		}
		return f.SetAvailability(m.Value, *m.Bool)
	}
	return apperrors.NewInvalidAnswerError(m.Field, fmt.Sprintf("unknown op %q", m.Op))
}
