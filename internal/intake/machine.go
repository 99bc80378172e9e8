package intake

import (
	"encoding/json"
	"fmt"

	apperrors "partner-intake/internal/common/errors"
)

type Phase uint8

const (
	PhaseStep Phase = iota
	PhaseSummary
	PhaseSubmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseSummary:
		return "summary"
	case PhaseSubmitted:
		return "submitted"
	default:
		return "step"
	}
}

func ParsePhase(s string) (Phase, error) {
	switch s {
	case "step":
		return PhaseStep, nil
	case "summary":
		return PhaseSummary, nil
	case "submitted":
		return PhaseSubmitted, nil
	}
	return PhaseStep, fmt.Errorf("unknown phase %q", s)
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePhase(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// StepMachine tracks Step(1..TotalSteps), Summary and the terminal Submitted.
// While on Summary or Submitted, step stays at TotalSteps.
type StepMachine struct {
	step  int
	phase Phase
}

func NewStepMachine() *StepMachine {
	return &StepMachine{step: 1, phase: PhaseStep}
}

// RestoreStepMachine rebuilds a machine from stored state.
func RestoreStepMachine(step int, phase Phase) (*StepMachine, error) {
	if step < 1 || step > TotalSteps {
		return nil, apperrors.NewInvalidTransitionError(fmt.Sprintf("step %d out of range", step))
	}
	if phase != PhaseStep && step != TotalSteps {
		return nil, apperrors.NewInvalidTransitionError(fmt.Sprintf("%s requires step %d", phase, TotalSteps))
	}
	return &StepMachine{step: step, phase: phase}, nil
}

func (m *StepMachine) Step() int    { return m.step }
func (m *StepMachine) Phase() Phase { return m.phase }

// Next advances only when validate reports nothing for the current step; the
// messages are returned unchanged otherwise.
func (m *StepMachine) Next(validate func(step int) []string) ([]string, error) {
	switch m.phase {
	case PhaseSubmitted:
		return nil, apperrors.NewFormAlreadySubmittedError()
	case PhaseSummary:
		return nil, apperrors.NewInvalidTransitionError("next is not available on the summary")
	}
	if msgs := validate(m.step); len(msgs) > 0 {
		return msgs, nil
	}
	if m.step == TotalSteps {
		m.phase = PhaseSummary
	} else {
		m.step++
	}
	return nil, nil
}

// Previous never validates. From the summary it returns to the last step.
func (m *StepMachine) Previous() error {
	switch m.phase {
	case PhaseSubmitted:
		return apperrors.NewFormAlreadySubmittedError()
	case PhaseSummary:
		m.phase = PhaseStep
		return nil
	}
	if m.step <= 1 {
		return apperrors.NewInvalidTransitionError("already on the first step")
	}
	m.step--
	return nil
}

// Submit re-validates every step, since answers stay editable after a step is
// passed, and then calls commit. Messages are returned in step order. The machine
// only becomes Submitted when commit succeeds; any other outcome leaves it on Summary.
func (m *StepMachine) Submit(validate func(step int) []string, commit func() error) ([]string, error) {
	switch m.phase {
	case PhaseSubmitted:
		return nil, apperrors.NewFormAlreadySubmittedError()
	case PhaseStep:
		return nil, apperrors.NewInvalidTransitionError("submit is only available on the summary")
	}
	var msgs []string
	for step := 1; step <= TotalSteps; step++ {
		msgs = append(msgs, validate(step)...)
	}
	if len(msgs) > 0 {
		return msgs, nil
	}
	if err := commit(); err != nil {
		return nil, err
	}
	m.phase = PhaseSubmitted
	return nil, nil
}
