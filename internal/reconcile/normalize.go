package reconcile

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// Normalize converts any value to its lower-cased string form for identity
// comparison. nil, including a typed nil pointer, becomes "".
func Normalize(v any) string {
	if isNil(v) {
		return ""
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		return Normalize(rv.Elem().Interface())
	}
	return strings.ToLower(fmt.Sprint(v))
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// SameIdentity reports whether two values normalize to the same string.
func SameIdentity(a, b any) bool {
	return Normalize(a) == Normalize(b)
}

// IDGenerator yields a fresh identifier on every call.
type IDGenerator func() string

// UUIDs returns an IDGenerator backed by random UUIDs.
func UUIDs() IDGenerator {
	return func() string { return uuid.New().String() }
}

// SequentialIDs returns a deterministic generator: prefix-1, prefix-2, ...
func SequentialIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// Next returns a fresh id, falling back to a random UUID when g is nil.
func (g IDGenerator) Next() string {
	if g == nil {
		return uuid.New().String()
	}
	return g()
}
