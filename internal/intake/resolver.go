package intake

import "partner-intake/internal/models"

// Translator renders labels and messages in the market language.
type Translator interface {
	T(key string) string
}

// Requirement is one field demanded on a step. Companion is set on the free-text
// requirement that accompanies Other on that multi-select; MinFrom names the
// number this one may not fall below.
type Requirement struct {
	Key       FieldKey `json:"key"`
	Label     string   `json:"label"`
	Kind      Kind     `json:"kind"`
	Companion FieldKey `json:"companion,omitempty"`
	MinFrom   FieldKey `json:"minFrom,omitempty"`
}

// Resolve lists the requirements of step for the given market and answers. It is
// evaluated fresh on every call and has no side effects.
func Resolve(step int, marketType, targetMarket string, answers *Answers, market *models.MarketConfig, tr Translator) []Requirement {
	if step < 1 || step > TotalSteps {
		return nil
	}
	ctx := RuleContext{
		MarketType:   marketType,
		TargetMarket: targetMarket,
		Answers:      answers,
		Market:       market,
	}

	var reqs []Requirement
	for _, r := range rules {
		if r.Step != step || !r.When(ctx) {
			continue
		}
		reqs = append(reqs, Requirement{
			Key:     r.Key,
			Label:   tr.T(r.LabelKey),
			Kind:    r.Kind,
			MinFrom: r.MinFrom,
		})
		if r.Kind == KindMultiSelect && answers.Selection(r.Key).HasOther() {
			companion := CompanionKey(r.Key)
			reqs = append(reqs, Requirement{
				Key:       companion,
				Label:     tr.T(labelKey(companion)),
				Kind:      KindText,
				Companion: r.Key,
			})
		}
	}
	return reqs
}
