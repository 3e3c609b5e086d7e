// Package store persists accounts behind a load/save port. Key-value
// backends write the whole account atomically; the relational backend writes
// each sub-entity with its own call and reports partial failures.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/account-engine/internal/model"
	"github.com/sells-group/account-engine/internal/resilience"
)

// ErrNotFound is returned by Load and Delete when no account has the id.
var ErrNotFound = eris.New("account not found")

// SaveResult lists the writes that landed ("account:<id>", "stakeholder:<id>",
// ...) and the ones that failed.
type SaveResult = resilience.BatchResult[string]

// Store is the persistence port used by the account service.
type Store interface {
	Load(ctx context.Context, id string) (*model.Account, error)
	// Save returns an error only when nothing was persisted. Failures of
	// individual sub-entity writes are reported in SaveResult.Errors.
	Save(ctx context.Context, acct *model.Account) (*SaveResult, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Account, error)

	Migrate(ctx context.Context) error
	Close() error
}
