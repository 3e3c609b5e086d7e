// Package analyze extracts account Insights from call transcripts with Claude.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/account-engine/internal/model"
	"github.com/sells-group/account-engine/internal/resilience"
	"github.com/sells-group/account-engine/pkg/anthropic"
)

// Config controls the model call.
type Config struct {
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// Analyzer turns a transcript into Insights.
type Analyzer struct {
	client  anthropic.Client
	cfg     Config
	retry   resilience.RetryConfig
	breaker *resilience.Breaker
}

// New creates an Analyzer.
func New(client anthropic.Client, cfg Config) *Analyzer {
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5-20250929"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	retry := resilience.DefaultRetryConfig()
	retry.ShouldRetry = retryable
	retry.OnRetry = resilience.LogRetries("anthropic", "analyze")
	return &Analyzer{
		client:  client,
		cfg:     cfg,
		retry:   retry,
		breaker: resilience.NewBreaker(resilience.BreakerConfig{Name: "anthropic"}),
	}
}

func retryable(err error) bool {
	return resilience.IsTransient(err) || resilience.IsTransientHTTPStatus(anthropic.StatusCode(err))
}

// Analyze asks the model for Insights about t. acct supplies the names and
// open questions the model should reuse so entity resolution lines up.
func (a *Analyzer) Analyze(ctx context.Context, acct *model.Account, t model.Transcript) (*model.Insights, error) {
	if strings.TrimSpace(t.Text) == "" {
		return nil, eris.New("analyze: empty transcript")
	}

	temp := 0.0
	req := anthropic.MessageRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		System:      []anthropic.SystemBlock{{Text: systemPrompt(), Cached: true}},
		Messages:    []anthropic.Message{{Role: "user", Content: userPrompt(acct, t)}},
		Temperature: &temp,
	}

	var resp *anthropic.MessageResponse
	err := a.breaker.Execute(ctx, func(ctx context.Context) error {
		var callErr error
		resp, callErr = resilience.DoVal(ctx, a.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return a.client.CreateMessage(ctx, req)
		})
		return callErr
	})
	if err != nil {
		return nil, eris.Wrap(err, "analyze: create message")
	}
	resp.Usage.LogCost(a.cfg.Model, "analyze")

	in, err := ParseInsights(resp.Text())
	if err != nil {
		return nil, err
	}
	if in.Transcript == nil && t.CallID != "" {
		in.Transcript = &model.TranscriptRef{CallID: t.CallID, Title: t.Title, OccurredAt: t.OccurredAt}
	}
	if in.Transcript != nil && in.Transcript.CallID == "" {
		in.Transcript.CallID = t.CallID
	}

	zap.L().Info("analyze: extracted insights",
		zap.String("account_id", acct.ID),
		zap.String("call_id", t.CallID),
		zap.Int("areas", len(in.BusinessAreas)),
		zap.Int("stakeholders", len(in.Stakeholders)),
		zap.Int("gaps", len(in.InformationGaps)),
	)
	return in, nil
}

// ParseInsights decodes a model reply. Business-area keys given as labels are
// mapped to topic ids; unknown areas are dropped.
func ParseInsights(reply string) (*model.Insights, error) {
	raw := cleanJSON(reply)
	if raw == "" || raw[0] != '{' {
		return nil, eris.New("analyze: reply contains no JSON object")
	}

	var in model.Insights
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, eris.Wrap(err, "analyze: decode insights")
	}

	if len(in.BusinessAreas) > 0 {
		areas := make(map[string]model.AreaObservation, len(in.BusinessAreas))
		for key, obs := range in.BusinessAreas {
			topic, ok := model.LookupTopic(key)
			if !ok {
				zap.L().Debug("analyze: dropping unknown business area", zap.String("area", key))
				continue
			}
			prev := areas[topic.ID]
			prev.CurrentState = append(prev.CurrentState, obs.CurrentState...)
			prev.Opportunities = append(prev.Opportunities, obs.Opportunities...)
			prev.Quotes = append(prev.Quotes, obs.Quotes...)
			areas[topic.ID] = prev
		}
		in.BusinessAreas = areas
	}
	return &in, nil
}

// cleanJSON extracts a JSON object from text that may carry markdown fences
// or commentary around it.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func systemPrompt() string {
	var b strings.Builder
	b.WriteString(`You analyze sales discovery call transcripts for a construction-finance software vendor.
Return ONLY a JSON object with this shape:
{
  "businessAreas": {"<area id>": {"currentState": [string], "opportunities": [string], "quotes": [string]}},
  "stakeholders": [{"name": string, "title": string, "department": string, "role": string, "notes": string}],
  "metrics": {"<metric id>": number | string},
  "metricsContext": {"<metric id>": string},
  "informationGaps": [{"question": string, "category": string, "meddiccCategory": string}]
}
Only include what the transcript supports. Omit empty sections. Quotes must be verbatim.
`)
	b.WriteString("\nBusiness area ids:\n")
	for _, t := range model.Topics {
		fmt.Fprintf(&b, "- %s (%s)\n", t.ID, t.Label)
	}
	b.WriteString("\nMetric ids:\n")
	for _, m := range model.MetricDefs {
		fmt.Fprintf(&b, "- %s (%s)\n", m.ID, m.Label)
	}
	b.WriteString("\nStakeholder roles: ")
	roles := make([]string, len(model.Roles))
	for i, r := range model.Roles {
		roles[i] = string(r)
	}
	b.WriteString(strings.Join(roles, ", "))
	b.WriteString("\nMEDDICC categories: ")
	b.WriteString(strings.Join(model.MEDDICCCategories, ", "))
	b.WriteString("\n")
	return b.String()
}

func userPrompt(acct *model.Account, t model.Transcript) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Account: %s\n", acct.Name)
	if len(acct.Stakeholders) > 0 {
		b.WriteString("Known stakeholders (reuse these exact names):\n")
		for _, s := range acct.Stakeholders {
			fmt.Fprintf(&b, "- %s", s.Name)
			if s.Title != "" {
				fmt.Fprintf(&b, ", %s", s.Title)
			}
			b.WriteString("\n")
		}
	}
	if open := acct.OpenGaps(); len(open) > 0 {
		b.WriteString("Open questions (do not repeat them unless still unanswered):\n")
		for _, g := range open {
			fmt.Fprintf(&b, "- %s\n", g.Question)
		}
	}
	if t.Title != "" {
		fmt.Fprintf(&b, "\nCall: %s\n", t.Title)
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(t.Text)
	return b.String()
}
