package resilience

import (
	"errors"
	"sync"

	"github.com/rotisserie/eris"
)

// BatchResult collects the outcome of a best-effort batch: every operation
// is attempted and failures are recorded rather than aborting the rest.
type BatchResult[T any] struct {
	Applied []T     `json:"applied"`
	Errors  []error `json:"-"`

	mu sync.Mutex
}

// Ok records a successful item. Safe for concurrent use.
func (b *BatchResult[T]) Ok(item T) {
	b.mu.Lock()
	b.Applied = append(b.Applied, item)
	b.mu.Unlock()
}

// Fail records a failure. Nil errors are ignored. Safe for concurrent use.
func (b *BatchResult[T]) Fail(err error) {
	if err == nil {
		return
	}
	b.mu.Lock()
	b.Errors = append(b.Errors, err)
	b.mu.Unlock()
}

// Record calls Ok or Fail depending on err.
func (b *BatchResult[T]) Record(item T, err error) {
	if err != nil {
		b.Fail(eris.Wrapf(err, "%v", item))
		return
	}
	b.Ok(item)
}

// Partial reports whether at least one operation failed.
func (b *BatchResult[T]) Partial() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Errors) > 0
}

// Err joins every recorded error, or returns nil.
func (b *BatchResult[T]) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return errors.Join(b.Errors...)
}

// Messages returns the error strings, for JSON responses.
func (b *BatchResult[T]) Messages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.Errors))
	for i, e := range b.Errors {
		out[i] = e.Error()
	}
	return out
}
