package shared

import (
	"errors"
	"fmt"
)

// ErrUnauthorized indicates the acting identity is absent or lacks the
// rights for the requested fund movement. The reason is user-facing and
// surfaced verbatim.
type ErrUnauthorized struct {
	Reason string
}

func (e ErrUnauthorized) Error() string {
	return e.Reason
}

func (e ErrUnauthorized) Is(target error) bool {
	t, ok := target.(ErrUnauthorized)
	if !ok {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// ErrValidation indicates malformed or inconsistent order input. The
// reason is user-facing and surfaced verbatim.
type ErrValidation struct {
	Reason string
}

func (e ErrValidation) Error() string {
	return e.Reason
}

func (e ErrValidation) Is(target error) bool {
	t, ok := target.(ErrValidation)
	if !ok {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// ErrNotFound indicates a referenced entity does not exist
type ErrNotFound struct {
	Resource string
	Ref      string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Ref)
}

func (e ErrNotFound) Is(target error) bool {
	t, ok := target.(ErrNotFound)
	if !ok {
		return false
	}
	if t.Resource == "" && t.Ref == "" {
		return true
	}
	return t.Resource == e.Resource && (t.Ref == "" || t.Ref == e.Ref)
}

// ErrTransient indicates an atomic unit of work could not commit. The
// operation is safe to retry unchanged a bounded number of times.
type ErrTransient struct {
	Err error
}

func (e ErrTransient) Error() string {
	return "transient failure: " + e.Err.Error()
}

func (e ErrTransient) Unwrap() error {
	return e.Err
}

// ErrFatal indicates an invariant violation such as an entry pair that
// fails to balance. It must never be persisted; detection aborts the
// unit of work and the order is handed to operator investigation.
type ErrFatal struct {
	Reason string
}

func (e ErrFatal) Error() string {
	return "fatal: " + e.Reason
}

// IsRetryable reports whether err may be retried unchanged
func IsRetryable(err error) bool {
	var transient ErrTransient
	return errors.As(err, &transient)
}
