package intake

import "partner-intake/internal/models"

// Choice is one entry of a Selection: either a known option value or Other.
type Choice struct {
	value string
	other bool
}

// Known is a choice of one of the market's option values.
func Known(value string) Choice { return Choice{value: value} }

// Other is the free-text choice.
func Other() Choice { return Choice{other: true} }

// ParseChoice maps the record-boundary sentinel to Other.
func ParseChoice(value string) Choice {
	if value == models.OtherOption {
		return Other()
	}
	return Known(value)
}

func (c Choice) IsOther() bool { return c.other }

func (c Choice) Value() string {
	if c.other {
		return models.OtherOption
	}
	return c.value
}

// Selection is an ordered, duplicate-free multi-select. The free text belongs to
// the Other choice and is only demanded while Other is selected.
type Selection struct {
	choices   []Choice
	otherText string
}

func SelectionFromValues(values []string, otherText string) Selection {
	var s Selection
	for _, v := range values {
		c := ParseChoice(v)
		if !s.Contains(c) {
			s.choices = append(s.choices, c)
		}
	}
	s.otherText = otherText
	return s
}

// Toggle adds c if absent, removes it otherwise.
func (s *Selection) Toggle(c Choice) {
	for i, existing := range s.choices {
		if existing == c {
			s.choices = append(s.choices[:i:i], s.choices[i+1:]...)
			return
		}
	}
	s.choices = append(s.choices, c)
}

func (s Selection) Contains(c Choice) bool {
	for _, existing := range s.choices {
		if existing == c {
			return true
		}
	}
	return false
}

func (s Selection) Len() int { return len(s.choices) }

func (s Selection) HasOther() bool { return s.Contains(Other()) }

func (s Selection) OtherText() string { return s.otherText }

// Values returns the boundary representation, Other as the sentinel, in selection order.
func (s Selection) Values() []string {
	if len(s.choices) == 0 {
		return nil
	}
	out := make([]string, len(s.choices))
	for i, c := range s.choices {
		out[i] = c.Value()
	}
	return out
}

func (s Selection) clone() Selection {
	out := Selection{otherText: s.otherText}
	if len(s.choices) > 0 {
		out.choices = append([]Choice(nil), s.choices...)
	}
	return out
}
