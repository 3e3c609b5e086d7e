package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/account-engine/internal/db"
	"github.com/sells-group/account-engine/internal/model"
	"github.com/sells-group/account-engine/internal/resilience"
)

// PostgresStore keeps accounts in normalized tables. Save issues one call for
// the account row and one per stakeholder, gap, note, and transcript, so a
// failed child write does not undo the others.
type PostgresStore struct {
	pool  db.Pool
	retry resilience.RetryConfig
}

// NewPostgres wraps an open pool.
func NewPostgres(pool db.Pool) *PostgresStore {
	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.LogRetries("postgres", "save")
	return &PostgresStore{pool: pool, retry: cfg}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS accounts (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	stage          TEXT NOT NULL DEFAULT 'prospect',
	vertical       TEXT NOT NULL DEFAULT '',
	ownership      TEXT NOT NULL DEFAULT '',
	salesforce_id  TEXT NOT NULL DEFAULT '',
	business_areas JSONB NOT NULL DEFAULT '{}',
	metrics        JSONB NOT NULL DEFAULT '{}',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS stakeholders (
	id           TEXT PRIMARY KEY,
	account_id   TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	position     INTEGER NOT NULL,
	name         TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	department   TEXT NOT NULL DEFAULT '',
	role         TEXT NOT NULL DEFAULT 'Unknown',
	notes        TEXT NOT NULL DEFAULT '',
	added_at     TIMESTAMPTZ NOT NULL,
	last_updated TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS information_gaps (
	id               TEXT PRIMARY KEY,
	account_id       TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	position         INTEGER NOT NULL,
	question         TEXT NOT NULL,
	category         TEXT NOT NULL DEFAULT 'business',
	meddicc_category TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'open',
	resolution       TEXT NOT NULL DEFAULT '',
	added_at         TIMESTAMPTZ NOT NULL,
	resolved_at      TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	content    TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT 'General',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS transcripts (
	account_id   TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	call_id      TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	occurred_at  TIMESTAMPTZ,
	summary      TEXT NOT NULL DEFAULT '',
	processed_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (account_id, call_id)
);

CREATE INDEX IF NOT EXISTS idx_stakeholders_account ON stakeholders(account_id, position);
CREATE INDEX IF NOT EXISTS idx_gaps_account ON information_gaps(account_id, position);
CREATE INDEX IF NOT EXISTS idx_notes_account ON notes(account_id, created_at);
`

var (
	upsertAccount = db.Upsert{
		Table: "accounts",
		Columns: []string{"id", "name", "stage", "vertical", "ownership", "salesforce_id",
			"business_areas", "metrics", "created_at", "updated_at"},
		ConflictKeys: []string{"id"},
		UpdateCols: []string{"name", "stage", "vertical", "ownership", "salesforce_id",
			"business_areas", "metrics", "updated_at"},
	}.SQL()
	upsertStakeholder = db.Upsert{
		Table: "stakeholders",
		Columns: []string{"id", "account_id", "position", "name", "title", "department",
			"role", "notes", "added_at", "last_updated"},
		ConflictKeys: []string{"id"},
	}.SQL()
	upsertGap = db.Upsert{
		Table: "information_gaps",
		Columns: []string{"id", "account_id", "position", "question", "category",
			"meddicc_category", "status", "resolution", "added_at", "resolved_at"},
		ConflictKeys: []string{"id"},
	}.SQL()
	upsertNote = db.Upsert{
		Table:        "notes",
		Columns:      []string{"id", "account_id", "content", "category", "created_at"},
		ConflictKeys: []string{"id"},
	}.SQL()
	insertTranscript = db.Upsert{
		Table:        "transcripts",
		Columns:      []string{"account_id", "call_id", "title", "occurred_at", "summary", "processed_at"},
		ConflictKeys: []string{"account_id", "call_id"},
		UpdateCols:   []string{},
	}.SQL()
)

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Save writes the account row first; if that fails nothing else is tried.
// Each child row is then written independently with retries on transient
// errors, and failures are collected.
func (s *PostgresStore) Save(ctx context.Context, acct *model.Account) (*SaveResult, error) {
	areas, err := json.Marshal(acct.BusinessAreas)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: encode business areas")
	}
	metrics, err := json.Marshal(acct.Metrics)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: encode metrics")
	}

	err = s.exec(ctx, upsertAccount,
		acct.ID, acct.Name, string(acct.Stage), acct.Vertical, acct.Ownership, acct.SalesforceID,
		areas, metrics, acct.CreatedAt, acct.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: save account %s", acct.ID)
	}

	res := &SaveResult{}
	res.Ok("account:" + acct.ID)

	for i, sh := range acct.Stakeholders {
		res.Record("stakeholder:"+sh.ID, s.exec(ctx, upsertStakeholder,
			sh.ID, acct.ID, i, sh.Name, sh.Title, sh.Department,
			string(sh.Role), sh.Notes, sh.AddedAt, sh.LastUpdated,
		))
	}
	for i, g := range acct.InformationGaps {
		res.Record("gap:"+g.ID, s.exec(ctx, upsertGap,
			g.ID, acct.ID, i, g.Question, g.Category,
			g.MEDDICCCategory, string(g.Status), g.Resolution, g.AddedAt, g.ResolvedAt,
		))
	}
	for _, n := range acct.Notes {
		res.Record("note:"+n.ID, s.exec(ctx, upsertNote,
			n.ID, acct.ID, n.Content, n.Category, n.CreatedAt,
		))
	}
	for _, t := range acct.Transcripts {
		res.Record("transcript:"+t.CallID, s.exec(ctx, insertTranscript,
			acct.ID, t.CallID, t.Title, t.OccurredAt, t.Summary, t.ProcessedAt,
		))
	}

	if res.Partial() {
		zap.L().Warn("postgres: save succeeded with errors",
			zap.String("account_id", acct.ID),
			zap.Int("applied", len(res.Applied)),
			zap.Int("errors", len(res.Errors)),
		)
	}
	return res, nil
}

func (s *PostgresStore) exec(ctx context.Context, sql string, args ...any) error {
	return resilience.Do(ctx, s.retry, func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, sql, args...)
		return err
	})
}

func (s *PostgresStore) Load(ctx context.Context, id string) (*model.Account, error) {
	var (
		acct           model.Account
		stage          string
		areas, metrics []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, stage, vertical, ownership, salesforce_id, business_areas, metrics, created_at, updated_at
		 FROM accounts WHERE id = $1`, id,
	).Scan(&acct.ID, &acct.Name, &stage, &acct.Vertical, &acct.Ownership, &acct.SalesforceID,
		&areas, &metrics, &acct.CreatedAt, &acct.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: load %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load %s", id)
	}
	acct.Stage = model.Stage(stage)
	if err := json.Unmarshal(areas, &acct.BusinessAreas); err != nil {
		return nil, eris.Wrap(err, "postgres: decode business areas")
	}
	if err := json.Unmarshal(metrics, &acct.Metrics); err != nil {
		return nil, eris.Wrap(err, "postgres: decode metrics")
	}

	if acct.Stakeholders, err = s.loadStakeholders(ctx, id); err != nil {
		return nil, err
	}
	if acct.InformationGaps, err = s.loadGaps(ctx, id); err != nil {
		return nil, err
	}
	if acct.Notes, err = s.loadNotes(ctx, id); err != nil {
		return nil, err
	}
	if acct.Transcripts, err = s.loadTranscripts(ctx, id); err != nil {
		return nil, err
	}
	acct.Normalize()
	return &acct, nil
}

func (s *PostgresStore) loadStakeholders(ctx context.Context, id string) ([]model.Stakeholder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, title, department, role, notes, added_at, last_updated
		 FROM stakeholders WHERE account_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query stakeholders")
	}
	defer rows.Close()

	var out []model.Stakeholder
	for rows.Next() {
		var (
			sh   model.Stakeholder
			role string
			upd  *time.Time
		)
		if err := rows.Scan(&sh.ID, &sh.Name, &sh.Title, &sh.Department, &role, &sh.Notes, &sh.AddedAt, &upd); err != nil {
			return nil, eris.Wrap(err, "postgres: scan stakeholder")
		}
		sh.Role = model.Role(role)
		sh.LastUpdated = upd
		out = append(out, sh)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate stakeholders")
}

func (s *PostgresStore) loadGaps(ctx context.Context, id string) ([]model.InformationGap, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, question, category, meddicc_category, status, resolution, added_at, resolved_at
		 FROM information_gaps WHERE account_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query gaps")
	}
	defer rows.Close()

	var out []model.InformationGap
	for rows.Next() {
		var (
			g        model.InformationGap
			status   string
			resolved *time.Time
		)
		if err := rows.Scan(&g.ID, &g.Question, &g.Category, &g.MEDDICCCategory, &status, &g.Resolution, &g.AddedAt, &resolved); err != nil {
			return nil, eris.Wrap(err, "postgres: scan gap")
		}
		g.Status = model.GapStatus(status)
		g.ResolvedAt = resolved
		out = append(out, g)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate gaps")
}

func (s *PostgresStore) loadNotes(ctx context.Context, id string) ([]model.Note, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, content, category, created_at FROM notes WHERE account_id = $1 ORDER BY created_at, id`, id)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query notes")
	}
	defer rows.Close()

	var out []model.Note
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.Content, &n.Category, &n.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan note")
		}
		out = append(out, n)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate notes")
}

func (s *PostgresStore) loadTranscripts(ctx context.Context, id string) ([]model.TranscriptSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT call_id, title, occurred_at, summary, processed_at
		 FROM transcripts WHERE account_id = $1 ORDER BY processed_at, call_id`, id)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query transcripts")
	}
	defer rows.Close()

	var out []model.TranscriptSummary
	for rows.Next() {
		var (
			t        model.TranscriptSummary
			occurred *time.Time
		)
		if err := rows.Scan(&t.CallID, &t.Title, &occurred, &t.Summary, &t.ProcessedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan transcript")
		}
		t.OccurredAt = occurred
		out = append(out, t)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate transcripts")
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: delete %s", id)
	}
	return nil
}

// List loads every account ordered by name.
func (s *PostgresStore) List(ctx context.Context) ([]model.Account, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM accounts ORDER BY name, id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list accounts")
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, eris.Wrap(err, "postgres: scan account id")
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate accounts")
	}

	out := make([]model.Account, 0, len(ids))
	for _, id := range ids {
		acct, err := s.Load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *acct)
	}
	return out, nil
}
