package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/account-engine/internal/model"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func TestMergeArea_NilExisting(t *testing.T) {
	t.Parallel()

	got := MergeArea(nil, &model.AreaObservation{
		CurrentState:  []string{"Budgets live in Excel"},
		Opportunities: []string{"Centralize budgets"},
		Quotes:        []string{"We rebuild the budget every month"},
	}, testNow)

	assert.Equal(t, []string{"Budgets live in Excel"}, got.CurrentState)
	assert.Equal(t, []string{"Centralize budgets"}, got.Opportunities)
	assert.Equal(t, []string{"We rebuild the budget every month"}, got.Quotes)
	assert.Equal(t, model.ConfidenceLow, got.Confidence)
	require.NotNil(t, got.LastUpdated)
	assert.Equal(t, testNow, *got.LastUpdated)
}

func TestMergeArea_ConfidenceUsesCombinedCountAndIgnoresQuotes(t *testing.T) {
	t.Parallel()

	existing := &model.BusinessArea{
		CurrentState:  []string{"a", "b"},
		Opportunities: []string{"c"},
		Quotes:        []string{"q1", "q2", "q3", "q4"},
		Confidence:    model.ConfidenceMedium,
	}
	got := MergeArea(existing, &model.AreaObservation{
		CurrentState:  []string{"d", "A"},
		Opportunities: []string{"e", "f"},
		Quotes:        []string{"q5", "q6"},
	}, testNow)

	// a b d + c e f = 6
	assert.Equal(t, model.ConfidenceHigh, got.Confidence)
	assert.Len(t, got.Quotes, 6)
	assert.Len(t, existing.CurrentState, 2, "input must not be mutated")
}

func TestMergeArea_KeepsPriorityAndIrrelevant(t *testing.T) {
	t.Parallel()

	existing := model.EmptyBusinessArea()
	existing.Priority = model.PriorityHigh
	existing.Irrelevant = true
	existing.IrrelevantReason = "uses an in-house tool"

	got := MergeArea(existing, &model.AreaObservation{CurrentState: []string{"x"}}, testNow)
	assert.Equal(t, model.PriorityHigh, got.Priority)
	assert.True(t, got.Irrelevant)
	assert.Equal(t, "uses an in-house tool", got.IrrelevantReason)
}

func TestMergeArea_NilIncomingRecomputesOnly(t *testing.T) {
	t.Parallel()

	existing := &model.BusinessArea{CurrentState: []string{"a", "b", "c"}, Confidence: model.ConfidenceLow}
	got := MergeArea(existing, nil, testNow)
	assert.Equal(t, model.ConfidenceMedium, got.Confidence)
}

func TestBusinessAreas_OnlyTouchesIncomingTopics(t *testing.T) {
	t.Parallel()

	untouched := &model.BusinessArea{CurrentState: []string{"keep"}, Confidence: model.ConfidenceLow}
	existing := map[string]*model.BusinessArea{
		"budgeting":   model.EmptyBusinessArea(),
		"forecasting": untouched,
	}

	got := BusinessAreas(existing, map[string]model.AreaObservation{
		"budgeting": {CurrentState: []string{"Excel"}},
	}, testNow)

	assert.Equal(t, []string{"Excel"}, got["budgeting"].CurrentState)
	assert.Equal(t, []string{"keep"}, got["forecasting"].CurrentState)
	assert.Nil(t, got["forecasting"].LastUpdated)
	assert.Empty(t, existing["budgeting"].CurrentState, "input must not be mutated")
}

func TestBusinessAreas_Idempotent(t *testing.T) {
	t.Parallel()

	in := map[string]model.AreaObservation{
		"procurement": {CurrentState: []string{"POs by email"}, Opportunities: []string{"Approval routing"}},
	}
	once := BusinessAreas(nil, in, testNow)
	twice := BusinessAreas(once, in, testNow)
	assert.Equal(t, once, twice)
}
