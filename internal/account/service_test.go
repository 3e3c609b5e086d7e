package account

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/account-engine/internal/model"
	"github.com/sells-group/account-engine/internal/reconcile"
	"github.com/sells-group/account-engine/internal/store"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	st := store.NewKVStore(repo)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	base := []Option{
		WithIDs(reconcile.SequentialIDs("id")),
		WithClock(func() time.Time { return testNow }),
	}
	return NewService(st, append(base, opts...)...)
}

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, acct *model.Account, t model.Transcript) (*model.Insights, error) {
	args := m.Called(ctx, acct, t)
	if v := args.Get(0); v != nil {
		return v.(*model.Insights), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestService_CreateAndGet(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	acct, err := svc.Create(ctx, "  Acme Builders ")
	require.NoError(t, err)
	assert.Equal(t, "id-1", acct.ID)
	assert.Equal(t, "Acme Builders", acct.Name)

	got, err := svc.Get(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, acct.Name, got.Name)
	assert.Len(t, got.BusinessAreas, len(model.TopicIDs))

	_, err = svc.Create(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestService_IngestIsIdempotent(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	acct, err := svc.Create(ctx, "Acme")
	require.NoError(t, err)

	in := model.Insights{
		BusinessAreas: map[string]model.AreaObservation{
			"budgeting": {CurrentState: []string{"Excel", "Email approvals"}, Opportunities: []string{"Automate"}},
		},
		Stakeholders:    []model.PersonObservation{{Name: "Ana Ruiz", Title: "CFO", Role: model.RoleEconomicBuyer}},
		Metrics:         map[string]any{"projects_per_year": 40.0},
		InformationGaps: []model.GapInput{{Question: "Who signs?"}},
		Transcript:      &model.TranscriptRef{CallID: "call-1"},
	}

	first, err := svc.Ingest(ctx, acct.ID, in)
	require.NoError(t, err)
	assert.Empty(t, first.Warnings)
	assert.Equal(t, model.ConfidenceMedium, first.Account.BusinessAreas["budgeting"].Confidence)

	second, err := svc.Ingest(ctx, acct.ID, in)
	require.NoError(t, err)
	a := second.Account
	assert.Len(t, a.Stakeholders, 1)
	assert.Len(t, a.InformationGaps, 1)
	assert.Len(t, a.Transcripts, 1)
	assert.Equal(t, []string{"Excel", "Email approvals"}, a.BusinessAreas["budgeting"].CurrentState)
	assert.Equal(t, 40.0, a.Metrics["projects_per_year"].Value)
}

func TestService_CommandAndExecute(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	acct, err := svc.Create(ctx, "Acme")
	require.NoError(t, err)

	_, err = svc.Ingest(ctx, acct.ID, model.Insights{Stakeholders: []model.PersonObservation{{Name: "Sarah Lee"}}})
	require.NoError(t, err)

	out, err := svc.Command(ctx, acct.ID, "Sarah Lee is the champion")
	require.NoError(t, err)
	require.Len(t, out.Messages, 1)
	assert.Equal(t, model.MessageSuccess, out.Messages[0].Level)
	assert.Equal(t, model.RoleChampion, out.Account.Stakeholders[0].Role)

	out, err = svc.Command(ctx, acct.ID, "Nobody is the champion")
	require.NoError(t, err)
	assert.Equal(t, model.MessageWarning, out.Messages[0].Level)

	out, err = svc.Command(ctx, acct.ID, "Budget is about $2M this year")
	require.NoError(t, err)
	require.Len(t, out.Account.Notes, 1)
	assert.Equal(t, "Budget", out.Account.Notes[0].Category)

	stored, err := svc.Get(ctx, acct.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Notes, 1)
}

func TestService_ExecuteDelete(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	acct, err := svc.Create(ctx, "Acme")
	require.NoError(t, err)

	out, err := svc.Execute(ctx, acct.ID, []model.Action{model.RenameAccount{Name: "X"}, model.DeleteAccount{}})
	require.NoError(t, err)
	assert.True(t, out.Deleted)
	assert.Nil(t, out.Account)

	_, err = svc.Get(ctx, acct.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestService_MissingAccount(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "nope", model.Insights{})
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = svc.Command(ctx, "nope", "hello")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "nope"), store.ErrNotFound)
}

func TestService_ConcurrentCommandsSerializePerAccount(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, WithIDs(reconcile.UUIDs()))
	ctx := context.Background()
	acct, err := svc.Create(ctx, "Acme")
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Command(ctx, acct.ID, fmt.Sprintf("follow up item %d", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := svc.Get(ctx, acct.ID)
	require.NoError(t, err)
	assert.Len(t, got.Notes, n)
	assert.Equal(t, 0, svc.locks.size())
}

func TestService_AnalyzeTranscript(t *testing.T) {
	t.Parallel()

	an := &mockAnalyzer{}
	svc := newTestService(t, WithAnalyzer(an))
	ctx := context.Background()
	acct, err := svc.Create(ctx, "Acme")
	require.NoError(t, err)

	tr := model.Transcript{CallID: "c-9", Title: "Discovery", Text: "We use spreadsheets for budgets."}
	an.On("Analyze", mock.Anything, mock.Anything, tr).Return(&model.Insights{
		BusinessAreas: map[string]model.AreaObservation{"budgeting": {CurrentState: []string{"Spreadsheets"}}},
	}, nil)

	out, err := svc.AnalyzeTranscript(ctx, acct.ID, tr)
	require.NoError(t, err)
	assert.Equal(t, []string{"Spreadsheets"}, out.Account.BusinessAreas["budgeting"].CurrentState)
	require.Len(t, out.Account.Transcripts, 1)
	assert.Equal(t, "c-9", out.Account.Transcripts[0].CallID)
	an.AssertExpectations(t)
}

func TestService_AnalyzeTranscriptErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	svc := newTestService(t)
	acct, err := svc.Create(ctx, "Acme")
	require.NoError(t, err)
	_, err = svc.AnalyzeTranscript(ctx, acct.ID, model.Transcript{Text: "x"})
	assert.ErrorIs(t, err, ErrNoAnalyzer)

	an := &mockAnalyzer{}
	an.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("model overloaded"))
	svc = newTestService(t, WithAnalyzer(an))
	acct, err = svc.Create(ctx, "Acme")
	require.NoError(t, err)
	_, err = svc.AnalyzeTranscript(ctx, acct.ID, model.Transcript{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestService_LinkSalesforce(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	acct, err := svc.Create(ctx, "Acme")
	require.NoError(t, err)

	got, err := svc.LinkSalesforce(ctx, acct.ID, "001ABC")
	require.NoError(t, err)
	assert.Equal(t, "001ABC", got.SalesforceID)

	stored, err := svc.Get(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "001ABC", stored.SalesforceID)
}

// partialStore reports every sub-entity write as failed.
type partialStore struct {
	store.Store
}

func (p partialStore) Save(ctx context.Context, acct *model.Account) (*store.SaveResult, error) {
	res, err := p.Store.Save(ctx, acct)
	if err != nil {
		return nil, err
	}
	res.Fail(errors.New("stakeholder:s1: timeout"))
	return res, nil
}

func TestService_PartialSaveSurfacesWarnings(t *testing.T) {
	t.Parallel()

	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	kv := store.NewKVStore(repo)
	require.NoError(t, kv.Migrate(context.Background()))
	t.Cleanup(func() { _ = kv.Close() })

	svc := NewService(partialStore{kv}, WithClock(func() time.Time { return testNow }))
	ctx := context.Background()
	acct, err := svc.Create(ctx, "Acme")
	require.NoError(t, err)

	out, err := svc.Command(ctx, acct.ID, "note this")
	require.NoError(t, err)
	assert.Equal(t, []string{"stakeholder:s1: timeout"}, out.Warnings)
}
