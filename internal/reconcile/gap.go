package reconcile

import (
	"strings"
	"time"

	"github.com/sells-group/account-engine/internal/model"
)

// Gaps appends each incoming question not already present by
// case-insensitive text. Existing gaps are never modified here.
func Gaps(existing []model.InformationGap, incoming []model.GapInput, ids IDGenerator, now time.Time) []model.InformationGap {
	out := make([]model.InformationGap, 0, len(existing)+len(incoming))
	out = append(out, existing...)

	for _, in := range incoming {
		q := strings.TrimSpace(in.Question)
		if q == "" {
			continue
		}
		if FindGap(out, q) >= 0 {
			continue
		}
		category := strings.TrimSpace(in.Category)
		if category == "" {
			category = model.DefaultGapCategory
		}
		out = append(out, model.InformationGap{
			ID:              ids.Next(),
			Question:        q,
			Category:        category,
			MEDDICCCategory: in.MEDDICCCategory,
			Status:          model.GapStatusOpen,
			AddedAt:         now,
		})
	}
	return out
}

// FindGap returns the index of the gap whose question matches
// case-insensitively, or -1.
func FindGap(gaps []model.InformationGap, question string) int {
	key := Normalize(strings.TrimSpace(question))
	if key == "" {
		return -1
	}
	for i, g := range gaps {
		if Normalize(strings.TrimSpace(g.Question)) == key {
			return i
		}
	}
	return -1
}
