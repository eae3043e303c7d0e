package catalog

import "fmt"

// ValidationError reports bad user input (empty name, non-positive price,
// malformed permutation, out-of-range index).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ReferenceError reports a category parent reference that does not resolve,
// points at the category itself, or would close a cycle.
type ReferenceError struct {
	Reason string
}

func (e *ReferenceError) Error() string {
	return e.Reason
}

// ConflictError reports a mutation blocked by existing dependents,
// e.g. deleting a category that still has children or products.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// TransportError wraps a network or server failure from a collaborator
// (database, blob store). The cause is kept for logs; user-facing handlers
// surface only Op.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
