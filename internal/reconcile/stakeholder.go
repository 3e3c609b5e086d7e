package reconcile

import (
	"strings"
	"time"

	"github.com/sells-group/account-engine/internal/model"
)

// Stakeholders resolves each observation against the stakeholders seen so
// far by case-insensitive name. A match is updated in place: title and
// department only from non-empty values, role only from a known non-Unknown
// role, notes appended. A miss creates a new stakeholder whose role is
// Unknown unless a known role was given. Roles are stored in their canonical
// spelling. Observations without a name are skipped.
func Stakeholders(existing []model.Stakeholder, incoming []model.PersonObservation, ids IDGenerator, now time.Time) []model.Stakeholder {
	out := make([]model.Stakeholder, 0, len(existing)+len(incoming))
	out = append(out, existing...)

	for _, obs := range incoming {
		name := strings.TrimSpace(obs.Name)
		if name == "" {
			continue
		}

		idx := FindStakeholder(out, name)
		if idx < 0 {
			role, ok := model.ParseRole(string(obs.Role))
			if !ok {
				role = model.RoleUnknown
			}
			out = append(out, model.Stakeholder{
				ID:         ids.Next(),
				Name:       name,
				Title:      obs.Title,
				Department: obs.Department,
				Role:       role,
				Notes:      strings.TrimSpace(obs.Notes),
				AddedAt:    now,
			})
			continue
		}

		s := out[idx]
		if obs.Title != "" {
			s.Title = obs.Title
		}
		if obs.Department != "" {
			s.Department = obs.Department
		}
		if role, ok := promotedRole(obs.Role); ok {
			s.Role = role
		}
		if n := strings.TrimSpace(obs.Notes); n != "" {
			s.Notes = strings.TrimSpace(s.Notes + " " + n)
		}
		stamp := now
		s.LastUpdated = &stamp
		out[idx] = s
	}
	return out
}

// FindStakeholder returns the index of the first stakeholder whose name
// matches case-insensitively, or -1.
func FindStakeholder(stakeholders []model.Stakeholder, name string) int {
	key := Normalize(strings.TrimSpace(name))
	if key == "" {
		return -1
	}
	for i, s := range stakeholders {
		if Normalize(strings.TrimSpace(s.Name)) == key {
			return i
		}
	}
	return -1
}

// promotedRole returns the canonical role an observation may replace the
// current one with. Empty, unrecognised and Unknown roles never do, so a
// known role cannot regress.
func promotedRole(r model.Role) (model.Role, bool) {
	role, ok := model.ParseRole(string(r))
	if !ok || role == model.RoleUnknown {
		return "", false
	}
	return role, true
}
