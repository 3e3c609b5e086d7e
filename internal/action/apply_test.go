package action

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/account-engine/internal/model"
	"github.com/sells-group/account-engine/internal/reconcile"
)

var (
	created = time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	now     = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
)

func testEnv() Env {
	return Env{IDs: reconcile.SequentialIDs("id"), Now: now}
}

func testAccount() model.Account {
	acct := model.NewAccount("acct-1", "Acme Builders", created)
	acct.Stakeholders = []model.Stakeholder{
		{ID: "s1", Name: "Sarah Lee", Role: model.RoleUnknown, AddedAt: created},
	}
	acct.InformationGaps = []model.InformationGap{
		{ID: "g1", Question: "Who signs off?", Category: "business", Status: model.GapStatusOpen, AddedAt: created},
	}
	return acct
}

func TestApply_UnknownStakeholderWarnsAndLeavesAccountUnchanged(t *testing.T) {
	t.Parallel()

	acct := testAccount()
	res := Apply([]model.Action{
		model.UpdateStakeholderRole{Name: "Nobody", NewRole: model.RoleChampion},
	}, acct, testEnv())

	assert.Equal(t, acct, res.Account)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, model.MessageWarning, res.Messages[0].Level)
	assert.False(t, res.Deleted)
}

func TestApply_UpdateStakeholderRole(t *testing.T) {
	t.Parallel()

	acct := testAccount()
	res := Apply([]model.Action{
		model.UpdateStakeholderRole{Name: "sarah lee", NewRole: "champion"},
	}, acct, testEnv())

	require.Len(t, res.Messages, 1)
	assert.Equal(t, model.MessageSuccess, res.Messages[0].Level)
	assert.Equal(t, model.RoleChampion, res.Account.Stakeholders[0].Role)
	assert.Equal(t, "Sarah Lee", res.Account.Stakeholders[0].Name)
	assert.Equal(t, now, res.Account.UpdatedAt)
	assert.Equal(t, model.RoleUnknown, acct.Stakeholders[0].Role, "input must not be mutated")
}

func TestApply_EachActionType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action model.Action
		check  func(t *testing.T, a model.Account)
	}{
		{
			name:   "add metric",
			action: model.AddMetric{MetricID: "projects_per_year", Value: 40.0, Context: "per CFO"},
			check: func(t *testing.T, a model.Account) {
				m := a.Metrics["projects_per_year"]
				require.NotNil(t, m)
				assert.Equal(t, 40.0, m.Value)
				require.NotNil(t, m.Context)
				assert.Equal(t, "per CFO", *m.Context)
			},
		},
		{
			name:   "add note defaults category",
			action: model.AddNote{Content: "  Call back Tuesday "},
			check: func(t *testing.T, a model.Account) {
				require.Len(t, a.Notes, 1)
				assert.Equal(t, "Call back Tuesday", a.Notes[0].Content)
				assert.Equal(t, "General", a.Notes[0].Category)
				assert.Equal(t, "id-1", a.Notes[0].ID)
			},
		},
		{
			name:   "mark area irrelevant",
			action: model.MarkAreaIrrelevant{AreaID: "procurement", Reason: "handled by parent"},
			check: func(t *testing.T, a model.Account) {
				assert.True(t, a.BusinessAreas["procurement"].Irrelevant)
				assert.Equal(t, "handled by parent", a.BusinessAreas["procurement"].IrrelevantReason)
			},
		},
		{
			name:   "set area priority",
			action: model.SetAreaPriority{AreaID: "budgeting", Priority: "HIGH"},
			check: func(t *testing.T, a model.Account) {
				assert.Equal(t, model.PriorityHigh, a.BusinessAreas["budgeting"].Priority)
			},
		},
		{
			name:   "update stage",
			action: model.UpdateStage{Stage: "Closed Won"},
			check: func(t *testing.T, a model.Account) {
				assert.Equal(t, model.StageClosedWon, a.Stage)
			},
		},
		{
			name:   "update vertical",
			action: model.UpdateVertical{Vertical: "Healthcare"},
			check: func(t *testing.T, a model.Account) {
				assert.Equal(t, "Healthcare", a.Vertical)
			},
		},
		{
			name:   "update ownership",
			action: model.UpdateOwnership{Ownership: "PE-backed"},
			check: func(t *testing.T, a model.Account) {
				assert.Equal(t, "PE-backed", a.Ownership)
			},
		},
		{
			name:   "add gap",
			action: model.AddGap{Question: "What is the budget cycle?", MEDDICCCategory: "decision_process"},
			check: func(t *testing.T, a model.Account) {
				require.Len(t, a.InformationGaps, 2)
				g := a.InformationGaps[1]
				assert.Equal(t, "What is the budget cycle?", g.Question)
				assert.Equal(t, model.DefaultGapCategory, g.Category)
				assert.Equal(t, model.GapStatusOpen, g.Status)
			},
		},
		{
			name:   "rename",
			action: model.RenameAccount{Name: "Acme Construction"},
			check: func(t *testing.T, a model.Account) {
				assert.Equal(t, "Acme Construction", a.Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := Apply([]model.Action{tt.action}, testAccount(), testEnv())
			require.Len(t, res.Messages, 1)
			assert.Equal(t, model.MessageSuccess, res.Messages[0].Level, res.Messages[0].Text)
			assert.Equal(t, now, res.Account.UpdatedAt)
			tt.check(t, res.Account)
		})
	}
}

func TestApply_WarningsAreNoops(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action model.Action
	}{
		{"role missing name", model.UpdateStakeholderRole{NewRole: model.RoleChampion}},
		{"role not recognised", model.UpdateStakeholderRole{Name: "Sarah Lee", NewRole: "Wizard"}},
		{"metric missing value", model.AddMetric{MetricID: "active_projects"}},
		{"empty note", model.AddNote{Content: "   "}},
		{"unknown area", model.MarkAreaIrrelevant{AreaID: "astrology"}},
		{"unmark unknown area", model.UnmarkAreaIrrelevant{AreaID: "astrology"}},
		{"bad priority", model.SetAreaPriority{AreaID: "budgeting", Priority: "urgent"}},
		{"bad stage", model.UpdateStage{Stage: "parking lot"}},
		{"empty vertical", model.UpdateVertical{}},
		{"empty ownership", model.UpdateOwnership{Ownership: " "}},
		{"unknown gap", model.ResolveGap{GapID: "nope", Resolution: "x"}},
		{"resolve without reference", model.ResolveGap{Resolution: "x"}},
		{"empty gap", model.AddGap{}},
		{"empty rename", model.RenameAccount{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			acct := testAccount()
			res := Apply([]model.Action{tt.action}, acct, testEnv())
			require.Len(t, res.Messages, 1)
			assert.Equal(t, model.MessageWarning, res.Messages[0].Level)
			assert.Equal(t, acct, res.Account)
		})
	}
}

func TestApply_UnmarkAreaIrrelevant(t *testing.T) {
	t.Parallel()

	acct := testAccount()
	acct.BusinessAreas["scheduling"].Irrelevant = true
	acct.BusinessAreas["scheduling"].IrrelevantReason = "not yet"

	res := Apply([]model.Action{model.UnmarkAreaIrrelevant{AreaID: "scheduling"}}, acct, testEnv())
	assert.False(t, res.Account.BusinessAreas["scheduling"].Irrelevant)
	assert.Empty(t, res.Account.BusinessAreas["scheduling"].IrrelevantReason)
	assert.True(t, acct.BusinessAreas["scheduling"].Irrelevant, "input must not be mutated")
}

func TestApply_ResolveGap(t *testing.T) {
	t.Parallel()

	t.Run("by id", func(t *testing.T) {
		t.Parallel()
		res := Apply([]model.Action{model.ResolveGap{GapID: "g1", Resolution: "The COO"}}, testAccount(), testEnv())
		g := res.Account.InformationGaps[0]
		assert.Equal(t, model.GapStatusResolved, g.Status)
		assert.Equal(t, "The COO", g.Resolution)
		require.NotNil(t, g.ResolvedAt)
		assert.Equal(t, now, *g.ResolvedAt)
	})

	t.Run("by question case-insensitive", func(t *testing.T) {
		t.Parallel()
		res := Apply([]model.Action{model.ResolveGap{Question: "WHO SIGNS OFF?"}}, testAccount(), testEnv())
		assert.Equal(t, model.GapStatusResolved, res.Account.InformationGaps[0].Status)
	})

	t.Run("second resolve keeps first timestamp", func(t *testing.T) {
		t.Parallel()
		acct := testAccount()
		first := Apply([]model.Action{model.ResolveGap{GapID: "g1", Resolution: "COO"}}, acct, testEnv())

		later := Env{IDs: reconcile.SequentialIDs("id"), Now: now.Add(time.Hour)}
		second := Apply([]model.Action{model.ResolveGap{GapID: "g1", Resolution: "COO and CFO"}}, first.Account, later)

		g := second.Account.InformationGaps[0]
		assert.Equal(t, "COO and CFO", g.Resolution)
		assert.Equal(t, now, *g.ResolvedAt)
	})
}

func TestApply_AddGapDedupsAgainstExisting(t *testing.T) {
	t.Parallel()

	acct := testAccount()
	res := Apply([]model.Action{model.AddGap{Question: "who signs off?"}}, acct, testEnv())
	assert.Len(t, res.Account.InformationGaps, 1)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, model.MessageSuccess, res.Messages[0].Level)
	assert.Equal(t, acct.UpdatedAt, res.Account.UpdatedAt)
}

func TestApply_DeleteShortCircuits(t *testing.T) {
	t.Parallel()

	acct := testAccount()
	res := Apply([]model.Action{
		model.RenameAccount{Name: "Renamed"},
		model.DeleteAccount{},
		model.AddNote{Content: "ignored"},
	}, acct, testEnv())

	assert.True(t, res.Deleted)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, model.MessageSuccess, res.Messages[0].Level)
	assert.Equal(t, "Acme Builders", res.Account.Name)
	assert.Empty(t, res.Account.Notes)
}

func TestApply_UnknownTypeSkippedSilently(t *testing.T) {
	t.Parallel()

	acct := testAccount()
	res := Apply([]model.Action{
		model.UnknownAction{Kind: "launch_rocket"},
		model.RenameAccount{Name: "Acme Two"},
	}, acct, testEnv())

	require.Len(t, res.Messages, 1)
	assert.Equal(t, "Acme Two", res.Account.Name)
}

func TestApply_LastWinsWithinBatch(t *testing.T) {
	t.Parallel()

	res := Apply([]model.Action{
		model.UpdateStage{Stage: "demo"},
		model.UpdateStage{Stage: "proposal"},
		model.AddMetric{MetricID: "active_projects", Value: 3.0},
		model.AddMetric{MetricID: "active_projects", Value: 5.0},
	}, testAccount(), testEnv())

	assert.Equal(t, model.StageProposal, res.Account.Stage)
	assert.Equal(t, 5.0, res.Account.Metrics["active_projects"].Value)
	assert.Len(t, res.Messages, 4)
}

func TestApply_DecodedBatch(t *testing.T) {
	t.Parallel()

	actions, err := model.DecodeActions([]byte(`[
		{"type":"update_stakeholder_role","name":"SARAH LEE","newRole":"Economic Buyer"},
		{"type":"add_note","content":"Wants a pilot","category":"Timeline"},
		{"type":"mystery","foo":1}
	]`))
	require.NoError(t, err)

	res := Apply(actions, testAccount(), testEnv())
	assert.Equal(t, model.RoleEconomicBuyer, res.Account.Stakeholders[0].Role)
	require.Len(t, res.Account.Notes, 1)
	assert.Equal(t, "Timeline", res.Account.Notes[0].Category)
	assert.Len(t, res.Messages, 2)
}

func TestApply_NormalizesPartialAccount(t *testing.T) {
	t.Parallel()

	res := Apply([]model.Action{model.SetAreaPriority{AreaID: "forecasting", Priority: model.PriorityLow}},
		model.Account{ID: "bare", Name: "Bare"}, testEnv())

	require.NotNil(t, res.Account.BusinessAreas["forecasting"])
	assert.Equal(t, model.PriorityLow, res.Account.BusinessAreas["forecasting"].Priority)
	assert.Equal(t, model.StageProspect, res.Account.Stage)
	assert.NotNil(t, res.Account.Notes)
}

// withoutTimestamps clears every clock-derived field so two accounts can be
// compared by content.
func withoutTimestamps(a model.Account) model.Account {
	out := a.Clone()
	out.UpdatedAt = time.Time{}
	for _, ba := range out.BusinessAreas {
		if ba != nil {
			ba.LastUpdated = nil
		}
	}
	for _, m := range out.Metrics {
		if m != nil {
			m.LastUpdated = nil
		}
	}
	for i := range out.Stakeholders {
		out.Stakeholders[i].LastUpdated = nil
	}
	for i := range out.InformationGaps {
		out.InformationGaps[i].ResolvedAt = nil
	}
	return out
}

func TestApply_RepeatedActionIsIdempotent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action model.Action
	}{
		{"add metric", model.AddMetric{MetricID: "active_projects", Value: 12.0, Context: "per PMO"}},
		{"mark area irrelevant", model.MarkAreaIrrelevant{AreaID: "procurement", Reason: "parent handles it"}},
		{"unmark area irrelevant", model.UnmarkAreaIrrelevant{AreaID: "procurement"}},
		{"set area priority", model.SetAreaPriority{AreaID: "budgeting", Priority: model.PriorityHigh}},
		{"update stage", model.UpdateStage{Stage: "demo"}},
		{"update stakeholder role", model.UpdateStakeholderRole{Name: "Sarah Lee", NewRole: model.RoleChampion}},
		{"resolve gap", model.ResolveGap{GapID: "g1", Resolution: "The COO"}},
		{"add gap", model.AddGap{Question: "What is the budget cycle?"}},
		{"rename account", model.RenameAccount{Name: "Acme Construction"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			first := Apply([]model.Action{tt.action}, testAccount(), testEnv())
			later := Env{IDs: reconcile.SequentialIDs("again"), Now: now.Add(24 * time.Hour)}
			second := Apply([]model.Action{tt.action}, first.Account, later)

			assert.Equal(t, withoutTimestamps(first.Account), withoutTimestamps(second.Account))
			require.Len(t, second.Messages, 1)
			assert.Equal(t, model.MessageSuccess, second.Messages[0].Level, second.Messages[0].Text)
		})
	}
}

func TestApply_RepeatedNoteAppendsTwice(t *testing.T) {
	t.Parallel()

	note := model.AddNote{Content: "Follow up on pilot", Category: "Timeline"}
	first := Apply([]model.Action{note}, testAccount(), testEnv())
	second := Apply([]model.Action{note}, first.Account, testEnv())

	require.Len(t, second.Account.Notes, 2)
	assert.Equal(t, second.Account.Notes[0].Content, second.Account.Notes[1].Content)
}

func TestApply_AreaResolvedByLabelOrID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		areaID string
		topic  string
	}{
		{"exact id", "budgeting", "budgeting"},
		{"label", "Budgeting", "budgeting"},
		{"label with spaces", "cost management", "cost_management"},
		{"upper-case id", "CAPITAL_PLANNING", "capital_planning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := Apply([]model.Action{
				model.SetAreaPriority{AreaID: tt.areaID, Priority: model.PriorityHigh},
				model.MarkAreaIrrelevant{AreaID: tt.areaID, Reason: "n/a"},
			}, testAccount(), testEnv())

			require.Len(t, res.Messages, 2)
			for _, m := range res.Messages {
				assert.Equal(t, model.MessageSuccess, m.Level, m.Text)
			}
			ba := res.Account.BusinessAreas[tt.topic]
			assert.Equal(t, model.PriorityHigh, ba.Priority)
			assert.True(t, ba.Irrelevant)
			assert.Contains(t, res.Messages[0].Text, model.TopicLabel(tt.topic))
		})
	}
}
