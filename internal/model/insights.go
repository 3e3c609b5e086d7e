package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Insights is one batch of observations extracted from a call transcript.
// Decoding is lenient: a field of the wrong type decodes to its empty value
// and a malformed list element is skipped, so one bad value never discards
// the rest of the batch.
type Insights struct {
	BusinessAreas   map[string]AreaObservation `json:"businessAreas"`
	Stakeholders    []PersonObservation        `json:"stakeholders"`
	Metrics         map[string]any             `json:"metrics"`
	MetricsContext  map[string]string          `json:"metricsContext"`
	InformationGaps []GapInput                 `json:"informationGaps"`
	Transcript      *TranscriptRef             `json:"transcript,omitempty"`
}

// AreaObservation holds the incoming observations for one business area.
type AreaObservation struct {
	CurrentState  []string `json:"currentState"`
	Opportunities []string `json:"opportunities"`
	Quotes        []string `json:"quotes"`
}

// PersonObservation is an incoming mention of a stakeholder.
type PersonObservation struct {
	Name       string `json:"name"`
	Title      string `json:"title,omitempty"`
	Department string `json:"department,omitempty"`
	Role       Role   `json:"role,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// GapInput is an incoming open question. On the wire it is either a bare
// string or an object.
type GapInput struct {
	Question        string `json:"question"`
	Category        string `json:"category,omitempty"`
	MEDDICCCategory string `json:"meddiccCategory,omitempty"`
}

// UnmarshalJSON accepts both the legacy string shape and the object shape.
// Anything else decodes to an empty question.
func (g *GapInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*g = GapInput{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &g.Question)
	}
	if data[0] != '{' {
		return nil
	}
	type plain GapInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return nil //nolint:nilerr // malformed gaps are dropped, not fatal
	}
	*g = GapInput(p)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (in *Insights) UnmarshalJSON(data []byte) error {
	*in = Insights{}
	fields := looseObject(data)
	if fields == nil {
		return nil
	}

	if areas := looseObject(fields["businessAreas"]); areas != nil {
		in.BusinessAreas = make(map[string]AreaObservation, len(areas))
		for key, raw := range areas {
			if obs, ok := decodeArea(raw); ok {
				in.BusinessAreas[key] = obs
			}
		}
	}

	for _, raw := range looseArray(fields["stakeholders"]) {
		if p, ok := decodePerson(raw); ok {
			in.Stakeholders = append(in.Stakeholders, p)
		}
	}

	if metrics := looseObject(fields["metrics"]); metrics != nil {
		in.Metrics = make(map[string]any, len(metrics))
		for key, raw := range metrics {
			var v any
			if err := json.Unmarshal(raw, &v); err == nil {
				in.Metrics[key] = v
			}
		}
	}

	if ctx := looseObject(fields["metricsContext"]); ctx != nil {
		in.MetricsContext = make(map[string]string, len(ctx))
		for key, raw := range ctx {
			if v, ok := stringValue(raw); ok {
				in.MetricsContext[key] = v
			}
		}
	}

	for _, raw := range looseArray(fields["informationGaps"]) {
		var g GapInput
		_ = g.UnmarshalJSON(raw)
		in.InformationGaps = append(in.InformationGaps, g)
	}

	if t := looseObject(fields["transcript"]); t != nil {
		ref := &TranscriptRef{
			CallID:  looseString(t["callId"]),
			Title:   looseString(t["title"]),
			Summary: looseString(t["summary"]),
		}
		var at time.Time
		if raw, ok := t["occurredAt"]; ok && json.Unmarshal(raw, &at) == nil && !at.IsZero() {
			ref.OccurredAt = &at
		}
		in.Transcript = ref
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. Non-string list items are dropped.
func (a *AreaObservation) UnmarshalJSON(data []byte) error {
	*a, _ = decodeArea(data)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. Fields of the wrong type are
// left empty.
func (p *PersonObservation) UnmarshalJSON(data []byte) error {
	*p, _ = decodePerson(data)
	return nil
}

func decodeArea(data []byte) (AreaObservation, bool) {
	fields := looseObject(data)
	if fields == nil {
		return AreaObservation{}, false
	}
	return AreaObservation{
		CurrentState:  looseStrings(fields["currentState"]),
		Opportunities: looseStrings(fields["opportunities"]),
		Quotes:        looseStrings(fields["quotes"]),
	}, true
}

func decodePerson(data []byte) (PersonObservation, bool) {
	fields := looseObject(data)
	if fields == nil {
		return PersonObservation{}, false
	}
	return PersonObservation{
		Name:       looseString(fields["name"]),
		Title:      looseString(fields["title"]),
		Department: looseString(fields["department"]),
		Role:       Role(looseString(fields["role"])),
		Notes:      looseString(fields["notes"]),
	}, true
}

// looseObject returns the members of a JSON object, or nil for anything else.
func looseObject(data []byte) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &m) != nil {
		return nil
	}
	return m
}

// looseArray returns the elements of a JSON array, or nil for anything else.
func looseArray(data []byte) []json.RawMessage {
	var items []json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &items) != nil {
		return nil
	}
	return items
}

func stringValue(data []byte) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false
	}
	return s, true
}

func looseString(data []byte) string {
	s, _ := stringValue(data)
	return s
}

func looseStrings(data []byte) []string {
	items := looseArray(data)
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, raw := range items {
		if s, ok := stringValue(raw); ok {
			out = append(out, s)
		}
	}
	return out
}

// TranscriptRef identifies the call an Insights batch was extracted from.
type TranscriptRef struct {
	CallID     string     `json:"callId"`
	Title      string     `json:"title,omitempty"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
	Summary    string     `json:"summary,omitempty"`
}

// Transcript is a raw call transcript submitted for analysis.
type Transcript struct {
	CallID     string     `json:"callId"`
	Title      string     `json:"title,omitempty"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
	Text       string     `json:"text"`
}
