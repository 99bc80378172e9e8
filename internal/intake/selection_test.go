package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionToggle(t *testing.T) {
	var s Selection
	s.Toggle(Known("Wolt"))
	s.Toggle(Other())
	s.Toggle(Known("Flink"))
	assert.Equal(t, []string{"Wolt", "other", "Flink"}, s.Values())
	assert.True(t, s.HasOther())

	s.Toggle(Known("Wolt"))
	assert.Equal(t, []string{"other", "Flink"}, s.Values())

	s.Toggle(Other())
	assert.False(t, s.HasOther())
	assert.Equal(t, 1, s.Len())
}

func TestSelectionFromValuesDropsDuplicates(t *testing.T) {
	s := SelectionFromValues([]string{"a", "other", "a", "b", "other"}, "Foo")
	assert.Equal(t, []string{"a", "other", "b"}, s.Values())
	assert.Equal(t, "Foo", s.OtherText())
	assert.True(t, s.Contains(ParseChoice("other")))
}

func TestSelectionEmptyValuesIsNil(t *testing.T) {
	var s Selection
	assert.Nil(t, s.Values())
}

func TestSelectionCloneIsIndependent(t *testing.T) {
	s := SelectionFromValues([]string{"a", "b", "c"}, "")
	c := s.clone()
	c.Toggle(Known("a"))
	assert.Equal(t, []string{"a", "b", "c"}, s.Values())
	assert.Equal(t, []string{"b", "c"}, c.Values())
}
