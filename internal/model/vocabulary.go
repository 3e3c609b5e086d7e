package model

import "strings"

// Stage is the pipeline stage of an account.
type Stage string

const (
	StageProspect    Stage = "prospect"
	StageDiscovery   Stage = "discovery"
	StageDemo        Stage = "demo"
	StageEvaluation  Stage = "evaluation"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageClosedWon   Stage = "closed_won"
	StageClosedLost  Stage = "closed_lost"
)

// Stages lists every pipeline stage in funnel order.
var Stages = []Stage{
	StageProspect,
	StageDiscovery,
	StageDemo,
	StageEvaluation,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// Role is a stakeholder's buying role.
type Role string

const (
	RoleChampion           Role = "Champion"
	RoleEconomicBuyer      Role = "Economic Buyer"
	RoleExecutiveSponsor   Role = "Executive Sponsor"
	RoleDecisionMaker      Role = "Decision Maker"
	RoleTechnicalEvaluator Role = "Technical Evaluator"
	RoleInfluencer         Role = "Influencer"
	RoleBlocker            Role = "Blocker"
	RoleUser               Role = "User"
	RoleUnknown            Role = "Unknown"
)

// Roles lists every known stakeholder role.
var Roles = []Role{
	RoleChampion,
	RoleEconomicBuyer,
	RoleExecutiveSponsor,
	RoleDecisionMaker,
	RoleTechnicalEvaluator,
	RoleInfluencer,
	RoleBlocker,
	RoleUser,
	RoleUnknown,
}

// MEDDICCCategories are the qualification buckets used for stakeholders and gaps.
var MEDDICCCategories = []string{
	"metrics",
	"economic_buyer",
	"decision_criteria",
	"decision_process",
	"identify_pain",
	"champion",
	"competition",
}

// Topic is a fixed business-area bucket.
type Topic struct {
	ID    string
	Label string
}

// Topics is the fixed business-area vocabulary, in display order.
var Topics = []Topic{
	{ID: "budgeting", Label: "Budgeting"},
	{ID: "forecasting", Label: "Forecasting"},
	{ID: "cost_management", Label: "Cost Management"},
	{ID: "change_management", Label: "Change Management"},
	{ID: "procurement", Label: "Procurement"},
	{ID: "invoicing", Label: "Invoicing & Payments"},
	{ID: "capital_planning", Label: "Capital Planning"},
	{ID: "scheduling", Label: "Scheduling"},
	{ID: "document_management", Label: "Document Management"},
	{ID: "reporting", Label: "Reporting & Analytics"},
	{ID: "integrations", Label: "Integrations"},
	{ID: "vendor_management", Label: "Vendor Management"},
}

// TopicIDs lists the ids from Topics.
var TopicIDs = func() []string {
	ids := make([]string, len(Topics))
	for i, t := range Topics {
		ids[i] = t.ID
	}
	return ids
}()

// MetricDef describes one fixed metric id.
type MetricDef struct {
	ID    string
	Label string
}

// MetricDefs is the fixed metric vocabulary, in display order.
var MetricDefs = []MetricDef{
	{ID: "projects_per_year", Label: "Projects per Year"},
	{ID: "active_projects", Label: "Active Projects"},
	{ID: "avg_project_size", Label: "Average Project Size"},
	{ID: "annual_capital_spend", Label: "Annual Capital Spend"},
	{ID: "project_managers", Label: "Project Managers"},
	{ID: "cm_fee_percent", Label: "CM Fee %"},
	{ID: "current_tools", Label: "Current Tools"},
	{ID: "target_go_live", Label: "Target Go-Live"},
}

// MetricIDs lists the ids from MetricDefs.
var MetricIDs = func() []string {
	ids := make([]string, len(MetricDefs))
	for i, m := range MetricDefs {
		ids[i] = m.ID
	}
	return ids
}()

// ParseStage resolves a stage from its id or a loose spelling ("closed won").
func ParseStage(s string) (Stage, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	for _, st := range Stages {
		if string(st) == key {
			return st, true
		}
	}
	return "", false
}

// ParseRole resolves a role case-insensitively.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Roles {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

// ParsePriority resolves a priority case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityHigh:
		return PriorityHigh, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityLow:
		return PriorityLow, true
	case PriorityNone:
		return PriorityNone, true
	}
	return "", false
}

// IsTopicID reports whether id is a known business-area id.
func IsTopicID(id string) bool {
	for _, t := range Topics {
		if t.ID == id {
			return true
		}
	}
	return false
}

// LookupTopic resolves a topic by id or by label, case-insensitively.
func LookupTopic(s string) (Topic, bool) {
	s = strings.TrimSpace(s)
	id := strings.ReplaceAll(strings.ToLower(s), " ", "_")
	for _, t := range Topics {
		if t.ID == id || strings.EqualFold(t.Label, s) {
			return t, true
		}
	}
	return Topic{}, false
}

// TopicLabel returns the display label for a topic id, or the id itself.
func TopicLabel(id string) string {
	for _, t := range Topics {
		if t.ID == id {
			return t.Label
		}
	}
	return id
}

// MetricLabel returns the display label for a metric id, or the id itself.
func MetricLabel(id string) string {
	for _, m := range MetricDefs {
		if m.ID == id {
			return m.Label
		}
	}
	return id
}
