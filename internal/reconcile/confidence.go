package reconcile

import "github.com/sells-group/account-engine/internal/model"

// EstimateConfidence maps an observation count to a confidence tier:
// 0 none, 1-2 low, 3-5 medium, 6+ high.
func EstimateConfidence(count int) model.Confidence {
	switch {
	case count <= 0:
		return model.ConfidenceNone
	case count <= 2:
		return model.ConfidenceLow
	case count <= 5:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceHigh
	}
}
