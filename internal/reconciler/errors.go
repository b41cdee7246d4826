package reconciler

import (
	"errors"
	"fmt"

	"github.com/darkbrains/netip-controller/internal/cloud"
)

// ErrorKind is the taxonomy surfaced to metrics and logs, per §7.
type ErrorKind string

const (
	ErrKindNone        ErrorKind = ""
	ErrKindTransient   ErrorKind = "transient"
	ErrKindAuth        ErrorKind = "auth"
	ErrKindConflict    ErrorKind = "conflict"
	ErrKindInvalidSpec ErrorKind = "invalid_spec"
	ErrKindInternal    ErrorKind = "internal"
)

// classifyErr maps a cloud driver error (or any other error) to the
// reconciler's taxonomy. An invalidSpecError from spec validation or
// provider lookup is classified invalid_spec; anything else defaults to
// internal so a genuinely unexpected failure is never mistaken for a
// retryable transient one.
func classifyErr(err error) ErrorKind {
	if err == nil {
		return ErrKindNone
	}

	var de *cloud.DriverError
	if errors.As(err, &de) {
		switch de.Class {
		case cloud.ErrClassTransient, cloud.ErrClassNotFound:
			return ErrKindTransient
		case cloud.ErrClassAuth:
			return ErrKindAuth
		case cloud.ErrClassInUseElsewhere:
			return ErrKindConflict
		}
	}

	var invalidSpec *invalidSpecError
	if errors.As(err, &invalidSpec) {
		return ErrKindInvalidSpec
	}

	return ErrKindInternal
}

// invalidSpecError marks a pool spec as rejected rather than failing
// transiently; the pool is skipped until the spec changes, per §7.
type invalidSpecError struct {
	reason string
}

func (e *invalidSpecError) Error() string { return e.reason }

func newInvalidSpecError(reason string) error {
	return &invalidSpecError{reason: reason}
}

// internalError marks an unexpected invariant violation (§7's
// "internal" kind) rather than a transient or config-level failure.
type internalError struct{ reason string }

func (e *internalError) Error() string { return e.reason }

func errInternalf(format string, args ...any) error {
	return &internalError{reason: fmt.Sprintf(format, args...)}
}
