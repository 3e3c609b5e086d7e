// Package action applies batches of typed point-edits to an Account.
package action

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/account-engine/internal/model"
	"github.com/sells-group/account-engine/internal/reconcile"
)

// Env supplies the non-deterministic inputs of Apply.
type Env struct {
	IDs reconcile.IDGenerator
	Now time.Time
}

// Result is the outcome of Apply.
type Result struct {
	Account  model.Account   `json:"account"`
	Messages []model.Message `json:"messages"`
	// Deleted is set when the batch carried delete_account. No other action
	// in the batch was applied and the caller must remove the account.
	Deleted bool `json:"deleted"`
}

// Apply runs actions against a copy of acct in array order. When the same
// field is set more than once, the last action wins. The input account is
// never mutated.
func Apply(actions []model.Action, acct model.Account, env Env) Result {
	out := acct.Clone()
	out.Normalize()

	for _, a := range actions {
		if _, ok := a.(model.DeleteAccount); ok {
			return Result{
				Account:  out,
				Deleted:  true,
				Messages: []model.Message{success("Deleted account %q", out.Name)},
			}
		}
	}

	msgs := make([]model.Message, 0, len(actions))
	changed := false
	for _, a := range actions {
		msg, ok, mutated := applyOne(&out, a, env)
		if ok {
			msgs = append(msgs, msg)
		}
		changed = changed || mutated
	}
	if changed {
		out.UpdatedAt = env.Now
	}
	return Result{Account: out, Messages: msgs}
}

// applyOne returns the message to show (if any) and whether the account changed.
func applyOne(acct *model.Account, a model.Action, env Env) (model.Message, bool, bool) {
	switch act := a.(type) {
	case model.UpdateStakeholderRole:
		return updateRole(acct, act, env)
	case model.AddMetric:
		return addMetric(acct, act, env)
	case model.AddNote:
		return addNote(acct, act, env)
	case model.MarkAreaIrrelevant:
		return markIrrelevant(acct, act)
	case model.UnmarkAreaIrrelevant:
		return unmarkIrrelevant(acct, act)
	case model.SetAreaPriority:
		return setPriority(acct, act)
	case model.UpdateStage:
		return updateStage(acct, act)
	case model.UpdateVertical:
		v := strings.TrimSpace(act.Vertical)
		if v == "" {
			return missing(act, "vertical")
		}
		acct.Vertical = v
		return success("Vertical set to %s", v), true, true
	case model.UpdateOwnership:
		o := strings.TrimSpace(act.Ownership)
		if o == "" {
			return missing(act, "ownership")
		}
		acct.Ownership = o
		return success("Ownership set to %s", o), true, true
	case model.ResolveGap:
		return resolveGap(acct, act, env)
	case model.AddGap:
		return addGap(acct, act, env)
	case model.RenameAccount:
		name := strings.TrimSpace(act.Name)
		if name == "" {
			return missing(act, "name")
		}
		acct.Name = name
		return success("Renamed account to %q", name), true, true
	default:
		kind := ""
		if a != nil {
			kind = string(a.Type())
		}
		zap.L().Warn("action: skipping unknown type", zap.String("type", kind))
		return model.Message{}, false, false
	}
}

func updateRole(acct *model.Account, act model.UpdateStakeholderRole, env Env) (model.Message, bool, bool) {
	if strings.TrimSpace(act.Name) == "" || strings.TrimSpace(string(act.NewRole)) == "" {
		return missing(act, "name and newRole")
	}
	role, ok := model.ParseRole(string(act.NewRole))
	if !ok {
		return warning("Unknown role %q for %s", act.NewRole, act.Name), true, false
	}
	idx := reconcile.FindStakeholder(acct.Stakeholders, act.Name)
	if idx < 0 {
		return warning("Stakeholder %q not found; add them before assigning a role", act.Name), true, false
	}
	s := &acct.Stakeholders[idx]
	s.Role = role
	stamp := env.Now
	s.LastUpdated = &stamp
	return success("%s is now %s", s.Name, role), true, true
}

func addMetric(acct *model.Account, act model.AddMetric, env Env) (model.Message, bool, bool) {
	id := strings.TrimSpace(act.MetricID)
	if id == "" || act.Value == nil {
		return missing(act, "metricId and value")
	}
	var ctx map[string]string
	if c := strings.TrimSpace(act.Context); c != "" {
		ctx = map[string]string{id: c}
	}
	acct.Metrics = reconcile.Metrics(acct.Metrics, map[string]any{id: act.Value}, ctx, env.Now)
	return success("%s set to %v", model.MetricLabel(id), act.Value), true, true
}

func addNote(acct *model.Account, act model.AddNote, env Env) (model.Message, bool, bool) {
	content := strings.TrimSpace(act.Content)
	if content == "" {
		return missing(act, "content")
	}
	category := strings.TrimSpace(act.Category)
	if category == "" {
		category = "General"
	}
	acct.Notes = append(acct.Notes, model.Note{
		ID:        env.IDs.Next(),
		Content:   content,
		Category:  category,
		CreatedAt: env.Now,
	})
	return success("Added %s note", category), true, true
}

// area finds a business area by id, falling back to a case-insensitive topic
// id or label. It returns the area and its key.
func area(acct *model.Account, id string) (*model.BusinessArea, string) {
	if id == "" {
		return nil, ""
	}
	if ba, ok := acct.BusinessAreas[id]; ok {
		return ba, id
	}
	if topic, ok := model.LookupTopic(id); ok {
		return acct.BusinessAreas[topic.ID], topic.ID
	}
	return nil, id
}

func markIrrelevant(acct *model.Account, act model.MarkAreaIrrelevant) (model.Message, bool, bool) {
	if act.AreaID == "" {
		return missing(act, "areaId")
	}
	ba, id := area(acct, act.AreaID)
	if ba == nil {
		return warning("Business area %q not found", act.AreaID), true, false
	}
	ba.Irrelevant = true
	ba.IrrelevantReason = strings.TrimSpace(act.Reason)
	return success("Marked %s as not relevant", model.TopicLabel(id)), true, true
}

func unmarkIrrelevant(acct *model.Account, act model.UnmarkAreaIrrelevant) (model.Message, bool, bool) {
	if act.AreaID == "" {
		return missing(act, "areaId")
	}
	ba, id := area(acct, act.AreaID)
	if ba == nil {
		return warning("Business area %q not found", act.AreaID), true, false
	}
	ba.Irrelevant = false
	ba.IrrelevantReason = ""
	return success("Marked %s as relevant", model.TopicLabel(id)), true, true
}

func setPriority(acct *model.Account, act model.SetAreaPriority) (model.Message, bool, bool) {
	if act.AreaID == "" || act.Priority == "" {
		return missing(act, "areaId and priority")
	}
	ba, id := area(acct, act.AreaID)
	if ba == nil {
		return warning("Business area %q not found", act.AreaID), true, false
	}
	p, ok := model.ParsePriority(string(act.Priority))
	if !ok {
		return warning("Unknown priority %q", act.Priority), true, false
	}
	ba.Priority = p
	return success("%s priority set to %s", model.TopicLabel(id), p), true, true
}

func updateStage(acct *model.Account, act model.UpdateStage) (model.Message, bool, bool) {
	if strings.TrimSpace(act.Stage) == "" {
		return missing(act, "stage")
	}
	st, ok := model.ParseStage(act.Stage)
	if !ok {
		return warning("Unknown stage %q", act.Stage), true, false
	}
	acct.Stage = st
	return success("Stage set to %s", st), true, true
}

func resolveGap(acct *model.Account, act model.ResolveGap, env Env) (model.Message, bool, bool) {
	if act.GapID == "" && strings.TrimSpace(act.Question) == "" {
		return missing(act, "gapId or question")
	}
	idx := -1
	if act.GapID != "" {
		for i, g := range acct.InformationGaps {
			if g.ID == act.GapID {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		idx = reconcile.FindGap(acct.InformationGaps, act.Question)
	}
	if idx < 0 {
		ref := act.GapID
		if ref == "" {
			ref = act.Question
		}
		return warning("Information gap %q not found", ref), true, false
	}

	g := &acct.InformationGaps[idx]
	if g.Status != model.GapStatusResolved {
		stamp := env.Now
		g.ResolvedAt = &stamp
	}
	g.Status = model.GapStatusResolved
	if r := strings.TrimSpace(act.Resolution); r != "" {
		g.Resolution = r
	}
	return success("Resolved: %s", g.Question), true, true
}

func addGap(acct *model.Account, act model.AddGap, env Env) (model.Message, bool, bool) {
	if strings.TrimSpace(act.Question) == "" {
		return missing(act, "question")
	}
	before := len(acct.InformationGaps)
	acct.InformationGaps = reconcile.Gaps(acct.InformationGaps, []model.GapInput{{
		Question:        act.Question,
		Category:        act.Category,
		MEDDICCCategory: act.MEDDICCCategory,
	}}, env.IDs, env.Now)
	if len(acct.InformationGaps) == before {
		return success("Already tracking: %s", strings.TrimSpace(act.Question)), true, false
	}
	return success("Tracking new question: %s", strings.TrimSpace(act.Question)), true, true
}

func success(format string, args ...any) model.Message {
	return model.Message{Level: model.MessageSuccess, Text: fmt.Sprintf(format, args...)}
}

func warning(format string, args ...any) model.Message {
	return model.Message{Level: model.MessageWarning, Text: fmt.Sprintf(format, args...)}
}

func missing(a model.Action, fields string) (model.Message, bool, bool) {
	return warning("Skipped %s: %s required", a.Type(), fields), true, false
}
