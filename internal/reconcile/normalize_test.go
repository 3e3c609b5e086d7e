package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	var nilPtr *string
	s := "MiXeD"

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"typed nil pointer", nilPtr, ""},
		{"string", "John Doe", "john doe"},
		{"pointer", &s, "mixed"},
		{"int", 42, "42"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestSameIdentity_NumberAndString(t *testing.T) {
	t.Parallel()
	assert.True(t, SameIdentity(50, "50"))
	assert.False(t, SameIdentity(nil, "nil"))
}

func TestSequentialIDs(t *testing.T) {
	t.Parallel()
	ids := SequentialIDs("sh")
	assert.Equal(t, "sh-1", ids())
	assert.Equal(t, "sh-2", ids.Next())
}

func TestIDGenerator_NilFallsBackToUUID(t *testing.T) {
	t.Parallel()
	var ids IDGenerator
	assert.Len(t, ids.Next(), 36)
}
