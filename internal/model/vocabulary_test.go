package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Stage
		ok   bool
	}{
		{"demo", StageDemo, true},
		{"  Proposal ", StageProposal, true},
		{"closed won", StageClosedWon, true},
		{"Closed-Lost", StageClosedLost, true},
		{"closed_won", StageClosedWon, true},
		{"parking lot", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseStage(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	r, ok := ParseRole("economic buyer")
	assert.True(t, ok)
	assert.Equal(t, RoleEconomicBuyer, r)

	r, ok = ParseRole("UNKNOWN")
	assert.True(t, ok)
	assert.Equal(t, RoleUnknown, r)

	_, ok = ParseRole("wizard")
	assert.False(t, ok)
}

func TestParsePriority(t *testing.T) {
	t.Parallel()

	p, ok := ParsePriority(" Medium")
	assert.True(t, ok)
	assert.Equal(t, PriorityMedium, p)

	_, ok = ParsePriority("urgent")
	assert.False(t, ok)
}

func TestLookupTopic(t *testing.T) {
	t.Parallel()

	topic, ok := LookupTopic("Cost Management")
	assert.True(t, ok)
	assert.Equal(t, "cost_management", topic.ID)

	topic, ok = LookupTopic("invoicing & payments")
	assert.True(t, ok)
	assert.Equal(t, "invoicing", topic.ID)

	_, ok = LookupTopic("lunch")
	assert.False(t, ok)

	assert.True(t, IsTopicID("reporting"))
	assert.False(t, IsTopicID("Reporting"))
	assert.Equal(t, "Reporting & Analytics", TopicLabel("reporting"))
	assert.Equal(t, "mystery", TopicLabel("mystery"))
	assert.Equal(t, "CM Fee %", MetricLabel("cm_fee_percent"))
}
