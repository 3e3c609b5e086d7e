package reconcile

import (
	"time"

	"github.com/sells-group/account-engine/internal/model"
)

// Metrics overwrites every metric whose incoming value is non-nil, last
// writer wins. Nil values and absent keys leave the existing metric alone.
func Metrics(existing map[string]*model.Metric, values map[string]any, context map[string]string, now time.Time) map[string]*model.Metric {
	out := make(map[string]*model.Metric, len(existing)+len(values))
	for id, m := range existing {
		if m == nil {
			continue
		}
		cp := *m
		out[id] = &cp
	}
	for id, v := range values {
		if id == "" || isNil(v) {
			continue
		}
		var ctx *string
		if c, ok := context[id]; ok {
			c := c
			ctx = &c
		}
		stamp := now
		out[id] = &model.Metric{Value: v, Context: ctx, LastUpdated: &stamp}
	}
	return out
}
