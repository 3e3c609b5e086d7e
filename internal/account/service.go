// Package account orchestrates load, reconcile, and save for accounts. Every
// mutation of one account runs under that account's lock; different accounts
// proceed concurrently.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/account-engine/internal/action"
	"github.com/sells-group/account-engine/internal/command"
	"github.com/sells-group/account-engine/internal/model"
	"github.com/sells-group/account-engine/internal/reconcile"
	"github.com/sells-group/account-engine/internal/store"
)

// ErrNoAnalyzer is returned by AnalyzeTranscript when no analyzer is configured.
var ErrNoAnalyzer = eris.New("account: transcript analyzer not configured")

// ErrInvalidName is returned by Create for a blank name.
var ErrInvalidName = eris.New("account: name is required")

// Analyzer extracts Insights from a raw transcript.
type Analyzer interface {
	Analyze(ctx context.Context, acct *model.Account, t model.Transcript) (*model.Insights, error)
}

// Outcome is the result of one mutation.
type Outcome struct {
	Account  *model.Account  `json:"account,omitempty"`
	Messages []model.Message `json:"messages"`
	// Warnings lists sub-entity writes that failed while the account row
	// itself was saved.
	Warnings []string `json:"warnings,omitempty"`
	Deleted  bool     `json:"deleted,omitempty"`
}

// Option configures a Service.
type Option func(*Service)

// WithIDs overrides the id generator.
func WithIDs(ids reconcile.IDGenerator) Option {
	return func(s *Service) { s.ids = ids }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithAnalyzer enables AnalyzeTranscript.
func WithAnalyzer(a Analyzer) Option {
	return func(s *Service) { s.analyzer = a }
}

// Service is the single entry point for reading and mutating accounts.
type Service struct {
	store    store.Store
	analyzer Analyzer
	ids      reconcile.IDGenerator
	now      func() time.Time
	locks    *keyedMutex
}

// NewService creates a Service over st.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		ids:   reconcile.UUIDs(),
		now:   func() time.Time { return time.Now().UTC() },
		locks: newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists a new account with every topic and metric in its zero state.
func (s *Service) Create(ctx context.Context, name string) (*model.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	acct := model.NewAccount(s.ids.Next(), name, s.now())
	if _, err := s.store.Save(ctx, &acct); err != nil {
		return nil, eris.Wrap(err, "account: create")
	}
	zap.L().Info("account: created", zap.String("account_id", acct.ID), zap.String("name", name))
	return &acct, nil
}

// Get loads one account.
func (s *Service) Get(ctx context.Context, id string) (*model.Account, error) {
	return s.store.Load(ctx, id)
}

// List returns every account.
func (s *Service) List(ctx context.Context) ([]model.Account, error) {
	return s.store.List(ctx)
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	zap.L().Info("account: deleted", zap.String("account_id", id))
	return nil
}

// Ingest folds one batch of transcript insights into the account.
func (s *Service) Ingest(ctx context.Context, id string, in model.Insights) (*Outcome, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	acct, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := reconcile.Insights(*acct, in, s.ids, s.now())

	out := &Outcome{Account: &merged, Messages: []model.Message{}}
	if err := s.save(ctx, &merged, out); err != nil {
		return nil, err
	}
	zap.L().Info("account: ingested insights",
		zap.String("account_id", id),
		zap.Int("areas", len(in.BusinessAreas)),
		zap.Int("stakeholders", len(in.Stakeholders)),
		zap.Int("gaps", len(in.InformationGaps)),
	)
	return out, nil
}

// Execute applies a batch of actions. A batch carrying delete_account
// removes the account and applies nothing else.
func (s *Service) Execute(ctx context.Context, id string, actions []model.Action) (*Outcome, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	acct, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	res := action.Apply(actions, *acct, action.Env{IDs: s.ids, Now: s.now()})

	out := &Outcome{Messages: res.Messages}
	if res.Deleted {
		if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, eris.Wrapf(err, "account: delete %s", id)
		}
		out.Deleted = true
		zap.L().Info("account: deleted by action", zap.String("account_id", id))
		return out, nil
	}

	out.Account = &res.Account
	if err := s.save(ctx, &res.Account, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Command interprets free text as one action and executes it.
func (s *Service) Command(ctx context.Context, id, text string) (*Outcome, error) {
	return s.Execute(ctx, id, command.Interpret(text))
}

// AnalyzeTranscript runs the analyzer over a raw transcript and ingests the
// result. The analyzer call happens outside the account lock.
func (s *Service) AnalyzeTranscript(ctx context.Context, id string, t model.Transcript) (*Outcome, error) {
	if s.analyzer == nil {
		return nil, ErrNoAnalyzer
	}
	acct, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	in, err := s.analyzer.Analyze(ctx, acct, t)
	if err != nil {
		return nil, eris.Wrapf(err, "account: analyze transcript for %s", id)
	}
	if in.Transcript == nil && t.CallID != "" {
		in.Transcript = &model.TranscriptRef{CallID: t.CallID, Title: t.Title, OccurredAt: t.OccurredAt}
	}
	return s.Ingest(ctx, id, *in)
}

// LinkSalesforce records the CRM id for an account.
func (s *Service) LinkSalesforce(ctx context.Context, id, sfID string) (*model.Account, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	acct, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	acct.SalesforceID = sfID
	acct.UpdatedAt = s.now()
	out := &Outcome{}
	if err := s.save(ctx, acct, out); err != nil {
		return nil, err
	}
	return acct, nil
}

func (s *Service) save(ctx context.Context, acct *model.Account, out *Outcome) error {
	res, err := s.store.Save(ctx, acct)
	if err != nil {
		return eris.Wrapf(err, "account: save %s", acct.ID)
	}
	if res.Partial() {
		out.Warnings = res.Messages()
		zap.L().Warn("account: save succeeded with errors",
			zap.String("account_id", acct.ID),
			zap.Int("errors", len(out.Warnings)),
		)
	}
	return nil
}
