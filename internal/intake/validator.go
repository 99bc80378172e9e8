package intake

import "fmt"

// Validate returns one message per unmet requirement, in requirement order. A
// missing answer yields the label itself; a number below its cross-field minimum
// yields the label and the threshold.
func Validate(reqs []Requirement, answers *Answers, tr Translator) []string {
	var msgs []string
	for _, req := range reqs {
		if msg, ok := check(req, answers, tr); !ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

func check(req Requirement, answers *Answers, tr Translator) (string, bool) {
	switch req.Kind {
	case KindText:
		value := answers.Text(req.Key)
		if req.Companion != "" {
			value = answers.Selection(req.Companion).OtherText()
		}
		return req.Label, hasText(value)

	case KindNumber:
		n, ok := answers.Number(req.Key)
		if !ok {
			return req.Label, false
		}
		if req.MinFrom != "" {
			if threshold, set := answers.Number(req.MinFrom); set && n < threshold {
				return fmt.Sprintf("%s: %s %d", req.Label, tr.T("validation.at_least"), threshold), false
			}
		}
		return "", true

	case KindMultiSelect:
		return req.Label, answers.Selection(req.Key).Len() > 0

	case KindAvailability:
		for _, available := range answers.Availability() {
			if available {
				return "", true
			}
		}
		return req.Label, false

	case KindTriState:
		if isDefaultedTriState(req.Key) {
			return "", true
		}
		return req.Label, answers.TriState(req.Key) != Unset
	}
	return req.Label, false
}
