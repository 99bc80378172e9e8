package intake

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TriState is an explicit answer to a yes/no question. Unset is a real state and
// fails validation wherever an explicit answer is required.
type TriState uint8

const (
	Unset TriState = iota
	Yes
	No
)

func (t TriState) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unset"
	}
}

// Ptr maps Unset to nil, Yes to true and No to false.
func (t TriState) Ptr() *bool {
	switch t {
	case Yes:
		v := true
		return &v
	case No:
		v := false
		return &v
	default:
		return nil
	}
}

// TriStateFromPtr is the inverse of Ptr.
func TriStateFromPtr(b *bool) TriState {
	if b == nil {
		return Unset
	}
	if *b {
		return Yes
	}
	return No
}

func (t TriState) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Ptr())
}

func (t *TriState) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Unset
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("tri-state must be true, false or null: %w", err)
	}
	*t = TriStateFromPtr(&b)
	return nil
}
