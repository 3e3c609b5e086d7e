package reconcile

import (
	"time"

	"github.com/sells-group/account-engine/internal/model"
)

// MergeArea folds incoming observations into one business area and
// recomputes its confidence from the combined currentState and opportunities.
// Priority and the irrelevant flag carry over untouched.
func MergeArea(existing *model.BusinessArea, incoming *model.AreaObservation, now time.Time) *model.BusinessArea {
	var out *model.BusinessArea
	if existing == nil {
		out = model.EmptyBusinessArea()
	} else {
		out = existing.Clone()
	}
	if incoming == nil {
		incoming = &model.AreaObservation{}
	}

	out.CurrentState = Sequence(out.CurrentState, incoming.CurrentState)
	out.Opportunities = Sequence(out.Opportunities, incoming.Opportunities)
	out.Quotes = Sequence(out.Quotes, incoming.Quotes)
	out.Confidence = EstimateConfidence(len(out.CurrentState) + len(out.Opportunities))

	stamp := now
	out.LastUpdated = &stamp
	return out
}

// BusinessAreas merges every topic present in incoming. Topics absent from
// incoming are carried over as they are.
func BusinessAreas(existing map[string]*model.BusinessArea, incoming map[string]model.AreaObservation, now time.Time) map[string]*model.BusinessArea {
	out := make(map[string]*model.BusinessArea, len(existing)+len(incoming))
	for id, area := range existing {
		if area == nil {
			continue
		}
		out[id] = area.Clone()
	}
	for id, obs := range incoming {
		if id == "" {
			continue
		}
		obs := obs
		out[id] = MergeArea(out[id], &obs, now)
	}
	return out
}
