package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "partner-intake/internal/common/errors"
	"partner-intake/internal/sessions"
)

type startSessionRequest struct {
	MarketType   string `json:"marketType" validate:"required,oneof=van_transport bicycle_delivery"`
	TargetMarket string `json:"targetMarket" validate:"required,max=64"`
	ContactID    string `json:"contactId" validate:"omitempty,uuid"`
}

type mutationRequest struct {
	Op     string `json:"op" validate:"required,oneof=set_text set_number clear_number set_tri_state toggle_selection set_other_text toggle_availability set_availability"`
	Field  string `json:"field" validate:"required_unless=Op toggle_availability Op set_availability"`
	Value  string `json:"value" validate:"max=2000"`
	Number *int   `json:"number"`
	Bool   *bool  `json:"bool"`
}

type applyAnswersRequest struct {
	Mutations []mutationRequest `json:"mutations" validate:"required,min=1,max=100,dive"`
}

func (r applyAnswersRequest) toMutations() []sessions.Mutation {
	out := make([]sessions.Mutation, 0, len(r.Mutations))
	for _, m := range r.Mutations {
		out = append(out, sessions.Mutation{
			Op:     sessions.Op(m.Op),
			Field:  m.Field,
			Value:  m.Value,
			Number: m.Number,
			Bool:   m.Bool,
		})
	}
	return out
}

// requestValidator checks decoded request bodies before they reach the engine.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{validate: validator.New()}
}

func (v *requestValidator) check(req interface{}) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewInputParsingFailedError(err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), describeTag(fe)))
	}
	return apperrors.NewInputParsingFailedError(errors.New(strings.Join(msgs, "; ")))
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_unless":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "uuid":
		return "must be a UUID"
	case "min":
		return "needs at least " + fe.Param() + " entries"
	case "max":
		return "exceeds " + fe.Param()
	default:
		return "is invalid"
	}
}
