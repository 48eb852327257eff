package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewULID_Monotonic(t *testing.T) {
	prev := NewULID()
	for i := 0; i < 100; i++ {
		next := NewULID()
		assert.Len(t, next, 26)
		assert.True(t, IsULID(next))
		assert.Greater(t, next, prev)
		prev = next
	}
	assert.False(t, IsULID("not-a-ulid"))
}

func TestNullHelpers(t *testing.T) {
	assert.False(t, StringToNullString("").Valid)
	assert.Equal(t, "x", StringToNullString("x").String)
	assert.Equal(t, "", NullStringToString(StringToNullString("")))
	assert.Equal(t, "x", NullStringToString(StringToNullString("x")))
}
