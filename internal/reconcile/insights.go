package reconcile

import (
	"strings"
	"time"

	"github.com/sells-group/account-engine/internal/model"
)

// Insights folds one analysis batch into a copy of acct. Reprocessing the
// same batch leaves the account unchanged apart from timestamps.
func Insights(acct model.Account, in model.Insights, ids IDGenerator, now time.Time) model.Account {
	out := acct.Clone()
	out.Normalize()

	out.BusinessAreas = BusinessAreas(out.BusinessAreas, in.BusinessAreas, now)
	out.Stakeholders = Stakeholders(out.Stakeholders, in.Stakeholders, ids, now)
	out.Metrics = Metrics(out.Metrics, in.Metrics, in.MetricsContext, now)
	out.InformationGaps = Gaps(out.InformationGaps, in.InformationGaps, ids, now)
	out.Transcripts = Transcripts(out.Transcripts, in.Transcript, now)
	out.UpdatedAt = now
	return out
}

// Transcripts appends a summary for ref unless its call id is already recorded.
func Transcripts(existing []model.TranscriptSummary, ref *model.TranscriptRef, now time.Time) []model.TranscriptSummary {
	out := append(make([]model.TranscriptSummary, 0, len(existing)+1), existing...)
	if ref == nil || strings.TrimSpace(ref.CallID) == "" {
		return out
	}
	for _, t := range out {
		if SameIdentity(t.CallID, ref.CallID) {
			return out
		}
	}
	return append(out, model.TranscriptSummary{
		CallID:      strings.TrimSpace(ref.CallID),
		Title:       ref.Title,
		OccurredAt:  ref.OccurredAt,
		Summary:     ref.Summary,
		ProcessedAt: now,
	})
}
