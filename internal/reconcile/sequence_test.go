package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing []string
		incoming []string
		want     []string
	}{
		{"both nil", nil, nil, []string{}},
		{"nil existing", nil, []string{"a"}, []string{"a"}},
		{"nil incoming", []string{"a"}, nil, []string{"a"}},
		{"case-insensitive dup dropped", []string{"Uses Excel"}, []string{"uses excel"}, []string{"Uses Excel"}},
		{"new item appended in original casing", []string{"A"}, []string{"B"}, []string{"A", "B"}},
		{"empty incoming dropped", []string{"A"}, []string{"", "B"}, []string{"A", "B"}},
		{"dups within incoming collapse", nil, []string{"x", "X", "x"}, []string{"x"}},
		{"existing order kept", []string{"c", "a", "b"}, []string{"a", "d"}, []string{"c", "a", "b", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Sequence(tt.existing, tt.incoming)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), len(tt.existing)+len(tt.incoming))
		})
	}
}

func TestSequence_Idempotent(t *testing.T) {
	t.Parallel()

	existing := []string{"Manual budgets", "Spreadsheets"}
	incoming := []string{"spreadsheets", "Monthly close takes a week"}

	once := Sequence(existing, incoming)
	twice := Sequence(once, incoming)
	assert.Equal(t, once, twice)

	self := Sequence(once, once)
	assert.Equal(t, once, self)
}

func TestSequence_DoesNotAliasExisting(t *testing.T) {
	t.Parallel()

	existing := make([]string, 1, 4)
	existing[0] = "a"
	got := Sequence(existing, []string{"b"})
	got[0] = "changed"
	assert.Equal(t, "a", existing[0])
}
