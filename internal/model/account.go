package model

import "time"

// Confidence is a coarse tier derived from observation volume.
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Priority ranks a business area for the account owner.
type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// GapStatus represents the lifecycle of an information gap.
type GapStatus string

const (
	GapStatusOpen     GapStatus = "open"
	GapStatusResolved GapStatus = "resolved"
)

// DefaultGapCategory is assigned to gaps extracted without a category.
const DefaultGapCategory = "business"

// Account is the root aggregate for everything known about a customer.
type Account struct {
	ID              string                   `json:"id"`
	Name            string                   `json:"name"`
	Stage           Stage                    `json:"stage"`
	Vertical        string                   `json:"vertical,omitempty"`
	Ownership       string                   `json:"ownership,omitempty"`
	SalesforceID    string                   `json:"salesforceId,omitempty"`
	BusinessAreas   map[string]*BusinessArea `json:"businessAreas"`
	Metrics         map[string]*Metric       `json:"metrics"`
	Stakeholders    []Stakeholder            `json:"stakeholders"`
	InformationGaps []InformationGap         `json:"informationGaps"`
	Notes           []Note                   `json:"notes"`
	Transcripts     []TranscriptSummary      `json:"transcripts"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

// BusinessArea accumulates qualitative observations for one topic.
type BusinessArea struct {
	CurrentState     []string   `json:"currentState"`
	Opportunities    []string   `json:"opportunities"`
	Quotes           []string   `json:"quotes"`
	Confidence       Confidence `json:"confidence"`
	Priority         Priority   `json:"priority,omitempty"`
	Irrelevant       bool       `json:"irrelevant,omitempty"`
	IrrelevantReason string     `json:"irrelevantReason,omitempty"`
	LastUpdated      *time.Time `json:"lastUpdated,omitempty"`
}

// Stakeholder is a person at the account. Name is the identity key.
type Stakeholder struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Title       string     `json:"title,omitempty"`
	Department  string     `json:"department,omitempty"`
	Role        Role       `json:"role"`
	Notes       string     `json:"notes,omitempty"`
	AddedAt     time.Time  `json:"addedAt"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// Metric is a named scalar measurement. Value is nil until first observed.
type Metric struct {
	Value       any        `json:"value"`
	Context     *string    `json:"context"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// InformationGap is an open question the account owner still needs answered.
type InformationGap struct {
	ID              string     `json:"id"`
	Question        string     `json:"question"`
	Category        string     `json:"category"`
	MEDDICCCategory string     `json:"meddiccCategory,omitempty"`
	Status          GapStatus  `json:"status"`
	Resolution      string     `json:"resolution,omitempty"`
	AddedAt         time.Time  `json:"addedAt"`
	ResolvedAt      *time.Time `json:"resolvedAt,omitempty"`
}

// Note is a free-text remark attached to the account.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

// TranscriptSummary records a processed call. The reconcilers never read it
// beyond CallID.
type TranscriptSummary struct {
	CallID      string     `json:"callId"`
	Title       string     `json:"title,omitempty"`
	OccurredAt  *time.Time `json:"occurredAt,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	ProcessedAt time.Time  `json:"processedAt"`
}

// NewAccount creates an account with every known topic and metric present in
// its zero state.
func NewAccount(id, name string, now time.Time) Account {
	a := Account{
		ID:        id,
		Name:      name,
		Stage:     StageProspect,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.Normalize()
	return a
}

// Normalize fills absent maps and collections so merges never see a
// partially constructed account.
func (a *Account) Normalize() {
	if a.BusinessAreas == nil {
		a.BusinessAreas = make(map[string]*BusinessArea, len(TopicIDs))
	}
	for _, id := range TopicIDs {
		if a.BusinessAreas[id] == nil {
			a.BusinessAreas[id] = EmptyBusinessArea()
		}
	}
	if a.Metrics == nil {
		a.Metrics = make(map[string]*Metric, len(MetricIDs))
	}
	for _, id := range MetricIDs {
		if a.Metrics[id] == nil {
			a.Metrics[id] = &Metric{}
		}
	}
	if a.Stakeholders == nil {
		a.Stakeholders = []Stakeholder{}
	}
	if a.InformationGaps == nil {
		a.InformationGaps = []InformationGap{}
	}
	if a.Notes == nil {
		a.Notes = []Note{}
	}
	if a.Transcripts == nil {
		a.Transcripts = []TranscriptSummary{}
	}
	if a.Stage == "" {
		a.Stage = StageProspect
	}
}

// EmptyBusinessArea returns a business area with no observations.
func EmptyBusinessArea() *BusinessArea {
	return &BusinessArea{
		CurrentState:  []string{},
		Opportunities: []string{},
		Quotes:        []string{},
		Confidence:    ConfidenceNone,
	}
}

// Clone returns a deep copy of the account.
func (a Account) Clone() Account {
	out := a
	if a.BusinessAreas != nil {
		out.BusinessAreas = make(map[string]*BusinessArea, len(a.BusinessAreas))
		for k, v := range a.BusinessAreas {
			if v == nil {
				out.BusinessAreas[k] = nil
				continue
			}
			out.BusinessAreas[k] = v.Clone()
		}
	}
	if a.Metrics != nil {
		out.Metrics = make(map[string]*Metric, len(a.Metrics))
		for k, v := range a.Metrics {
			if v == nil {
				out.Metrics[k] = nil
				continue
			}
			m := *v
			out.Metrics[k] = &m
		}
	}
	out.Stakeholders = cloneSlice(a.Stakeholders)
	out.InformationGaps = cloneSlice(a.InformationGaps)
	out.Notes = cloneSlice(a.Notes)
	out.Transcripts = cloneSlice(a.Transcripts)
	return out
}

// Clone returns a deep copy of the business area.
func (b *BusinessArea) Clone() *BusinessArea {
	out := *b
	out.CurrentState = cloneSlice(b.CurrentState)
	out.Opportunities = cloneSlice(b.Opportunities)
	out.Quotes = cloneSlice(b.Quotes)
	return &out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// OpenGaps returns the gaps still awaiting an answer.
func (a *Account) OpenGaps() []InformationGap {
	var out []InformationGap
	for _, g := range a.InformationGaps {
		if g.Status != GapStatusResolved {
			out = append(out, g)
		}
	}
	return out
}
