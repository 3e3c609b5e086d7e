// Package reconcile folds batches of extracted observations into an Account
// without duplicating or losing what is already known.
//
// Every function here is pure: inputs are never mutated, and time and id
// generation are supplied by the caller. Identity comparisons go through
// Normalize and nothing else.
package reconcile
