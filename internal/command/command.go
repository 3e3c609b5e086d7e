// Package command turns one line of free text into typed account actions.
package command

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/account-engine/internal/model"
)

// Note categories produced by the interpreter.
const (
	CategoryBudget   = "Budget"
	CategoryCMFees   = "CM Fees"
	CategoryTimeline = "Timeline"
	CategoryGeneral  = "General"
)

// Rule is one pattern in the grammar. Match receives the trimmed input and
// its lower-cased form and reports whether the rule fires.
type Rule struct {
	Name  string
	Match func(raw, lower string) (model.Action, bool)
}

// Rules is the ordered grammar. The first matching rule wins.
var Rules = []Rule{
	{Name: "stakeholder_role", Match: matchRole},
	{Name: "area_priority", Match: matchAreaPriority},
	{Name: "stage", Match: matchStage},
	{Name: "budget", Match: matchBudget},
	{Name: "cm_fees", Match: matchCMFees},
	{Name: "timeline", Match: matchTimeline},
}

// Fallback fires when no rule in Rules matches. It always matches.
var Fallback = Rule{
	Name: "general_note",
	Match: func(raw, _ string) (model.Action, bool) {
		return model.AddNote{Content: raw, Category: CategoryGeneral}, true
	},
}

// Interpret parses text into actions. It is total: the result always holds
// exactly one action.
func Interpret(text string) []model.Action {
	raw := strings.TrimSpace(text)
	lower := strings.ToLower(raw)
	for _, r := range Rules {
		if a, ok := r.Match(raw, lower); ok {
			return []model.Action{a}
		}
	}
	a, _ := Fallback.Match(raw, lower)
	return []model.Action{a}
}

var (
	roleRe     = regexp.MustCompile(`^(.+?)\s+is\s+(?:the|a|an)\s+(champion|executive sponsor|economic buyer|decision maker|technical evaluator|blocker|influencer)\b`)
	priorityRe = regexp.MustCompile(`^(.+?)\s+is\s+(?:a\s+)?(high|medium|low)\s+priority\b`)
	moveRe     = regexp.MustCompile(`\b(?:move|moved|moving)\s+(?:them\s+|it\s+|the account\s+)?(?:to|into)\s+([a-z_ -]+?)(?:\s+stage)?\s*[.!]?$`)
	stageIsRe  = regexp.MustCompile(`^(?:the\s+)?stage\s*(?:is|:|=)\s*(?:now\s+)?([a-z_ -]+?)\s*[.!]?$`)
	amountRe   = regexp.MustCompile(`\$?\d[\d,]*(?:\.\d+)?\s*(?:k|m|mm|b|million|thousand|billion)?\b`)
)

var titleCaser = cases.Title(language.English)

func matchRole(raw, lower string) (model.Action, bool) {
	m := roleRe.FindStringSubmatchIndex(lower)
	if m == nil {
		return nil, false
	}
	name := strings.TrimSpace(sliceOriginal(raw, lower, m[2], m[3]))
	if name == "" {
		return nil, false
	}
	if name == strings.ToLower(name) {
		name = titleCaser.String(name)
	}
	role, ok := model.ParseRole(lower[m[4]:m[5]])
	if !ok {
		return nil, false
	}
	return model.UpdateStakeholderRole{Name: name, NewRole: role}, true
}

func matchAreaPriority(_, lower string) (model.Action, bool) {
	m := priorityRe.FindStringSubmatch(lower)
	if m == nil {
		return nil, false
	}
	subject := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(m[1]), "the "))
	topic, ok := model.LookupTopic(subject)
	if !ok {
		return nil, false
	}
	p, ok := model.ParsePriority(m[2])
	if !ok {
		return nil, false
	}
	return model.SetAreaPriority{AreaID: topic.ID, Priority: p}, true
}

func matchStage(_, lower string) (model.Action, bool) {
	for _, re := range []*regexp.Regexp{stageIsRe, moveRe} {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if st, ok := model.ParseStage(m[1]); ok {
			return model.UpdateStage{Stage: string(st)}, true
		}
	}
	return nil, false
}

func matchBudget(raw, lower string) (model.Action, bool) {
	if !strings.Contains(lower, "budget") || !amountRe.MatchString(lower) {
		return nil, false
	}
	return model.AddNote{Content: raw, Category: CategoryBudget}, true
}

func matchCMFees(raw, lower string) (model.Action, bool) {
	if !containsAny(lower, "cm fee", "construction management") {
		return nil, false
	}
	return model.AddNote{Content: raw, Category: CategoryCMFees}, true
}

func matchTimeline(raw, lower string) (model.Action, bool) {
	if !containsAny(lower, "timeline", "go-live", "go live", "golive", "launch date") {
		return nil, false
	}
	return model.AddNote{Content: raw, Category: CategoryTimeline}, true
}

// sliceOriginal maps byte offsets found in lower back onto raw. Lower-casing
// can change byte length for some scripts; then the lower-cased text is used.
func sliceOriginal(raw, lower string, start, end int) string {
	if len(raw) == len(lower) {
		return raw[start:end]
	}
	return lower[start:end]
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
