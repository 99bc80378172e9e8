package validatepartnerintake

type Input struct {
	ContactID string `json:"contactId"`
}

// StepResult lists what is still missing on one step, in display order.
type StepResult struct {
	Step    int      `json:"step"`
	Missing []string `json:"missing"`
}

type Output struct {
	ContactID           string       `json:"contactId"`
	MarketType          string       `json:"marketType"`
	TargetMarket        string       `json:"targetMarket"`
	IsComplete          bool         `json:"isComplete"`
	FormCompleted       bool         `json:"formCompleted"`
	FirstIncompleteStep int          `json:"firstIncompleteStep,omitempty"`
	Steps               []StepResult `json:"steps"`
}

var inputSchema = []byte(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["contactId"],
  "properties": {
    "contactId": {"type": "string", "minLength": 1}
  }
}`)
