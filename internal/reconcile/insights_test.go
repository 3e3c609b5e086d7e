package reconcile

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/account-engine/internal/model"
)

const sampleInsights = `{
  "businessAreas": {
    "budgeting": {"currentState": ["Budgets in Excel"], "opportunities": ["Live budget vs actuals"], "quotes": ["We never trust the numbers"]},
    "procurement": {"currentState": null, "opportunities": [], "quotes": []}
  },
  "stakeholders": [
    {"name": "Sarah Lee", "title": "Director of Capital Projects", "role": "Champion"},
    {"name": "", "title": "nameless"}
  ],
  "metrics": {"projects_per_year": 40, "active_projects": null},
  "metricsContext": {"projects_per_year": "Across three campuses"},
  "informationGaps": ["Who approves spend over $1M?", {"question": "What ERP do they use?", "category": "technical"}, 17, null],
  "transcript": {"callId": "call-001", "title": "Discovery call"}
}`

func decodeSample(t *testing.T) model.Insights {
	t.Helper()
	var in model.Insights
	require.NoError(t, json.Unmarshal([]byte(sampleInsights), &in))
	return in
}

func TestInsights_FoldsEverySection(t *testing.T) {
	t.Parallel()

	acct := model.NewAccount("acct-1", "Mercy Health", testNow.Add(-time.Hour))
	got := Insights(acct, decodeSample(t), SequentialIDs("id"), testNow)

	assert.Equal(t, []string{"Budgets in Excel"}, got.BusinessAreas["budgeting"].CurrentState)
	assert.Equal(t, model.ConfidenceLow, got.BusinessAreas["budgeting"].Confidence)
	assert.Equal(t, model.ConfidenceNone, got.BusinessAreas["procurement"].Confidence)

	require.Len(t, got.Stakeholders, 1)
	assert.Equal(t, model.RoleChampion, got.Stakeholders[0].Role)

	assert.EqualValues(t, 40, got.Metrics["projects_per_year"].Value)
	assert.Nil(t, got.Metrics["active_projects"].Value)

	require.Len(t, got.InformationGaps, 2)
	assert.Equal(t, "business", got.InformationGaps[0].Category)
	assert.Equal(t, "technical", got.InformationGaps[1].Category)

	require.Len(t, got.Transcripts, 1)
	assert.Equal(t, "call-001", got.Transcripts[0].CallID)
	assert.Equal(t, testNow, got.UpdatedAt)

	assert.Empty(t, acct.Stakeholders, "input must not be mutated")
}

func TestInsights_ReprocessingIsIdempotent(t *testing.T) {
	t.Parallel()

	in := decodeSample(t)
	acct := model.NewAccount("acct-1", "Mercy Health", testNow)
	ids := SequentialIDs("id")

	once := Insights(acct, in, ids, testNow)
	twice := Insights(once, in, ids, testNow)

	assert.Equal(t, once.BusinessAreas, twice.BusinessAreas)
	assert.Equal(t, once.Metrics, twice.Metrics)
	assert.Equal(t, once.InformationGaps, twice.InformationGaps)
	assert.Equal(t, once.Transcripts, twice.Transcripts)

	require.Len(t, twice.Stakeholders, 1)
	assert.Equal(t, once.Stakeholders[0].ID, twice.Stakeholders[0].ID)
	assert.Equal(t, once.Stakeholders[0].Title, twice.Stakeholders[0].Title)
	assert.Equal(t, once.Stakeholders[0].Role, twice.Stakeholders[0].Role)
}

func TestInsights_NormalizesPartialAccount(t *testing.T) {
	t.Parallel()

	got := Insights(model.Account{ID: "bare"}, model.Insights{}, SequentialIDs("id"), testNow)
	assert.Len(t, got.BusinessAreas, len(model.TopicIDs))
	assert.Len(t, got.Metrics, len(model.MetricIDs))
	assert.NotNil(t, got.Stakeholders)
	assert.NotNil(t, got.Notes)
}
