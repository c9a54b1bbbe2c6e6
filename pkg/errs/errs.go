// Package errs defines the uniform error taxonomy shared by every component
// of the memory lifecycle engine.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide whether to retry, degrade,
// or abort without string-matching error messages.
type Kind string

const (
	// KindInvalidInput marks bad text, an empty id, or a sanitizer hit.
	// Never retried; surfaced immediately.
	KindInvalidInput Kind = "invalid_input"

	// KindNotFound marks a missing id on update/delete/get.
	KindNotFound Kind = "not_found"

	// KindProviderUnavailable marks a transport/auth failure. Retriable.
	KindProviderUnavailable Kind = "provider_unavailable"

	// KindProviderTimeout marks a provider call that exceeded its deadline. Retriable.
	KindProviderTimeout Kind = "provider_timeout"

	// KindProviderExhausted marks a rate-limited provider. Retriable with backoff.
	KindProviderExhausted Kind = "provider_exhausted"

	// KindServiceDegraded marks retry exhaustion after ProviderUnavailable/Timeout/Exhausted.
	KindServiceDegraded Kind = "service_degraded"

	// KindStoreInconsistency marks a partial two-phase write (vector committed, graph failed or vice versa).
	KindStoreInconsistency Kind = "store_inconsistency"

	// KindConcurrency marks a per-memory lock wait that exceeded its timeout.
	KindConcurrency Kind = "concurrency"

	// KindFatal marks an unrecoverable configuration error (dimension mismatch, bad provider config).
	KindFatal Kind = "fatal"
)

// Sentinel errors for errors.Is comparisons, mirroring the Kind values above.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("memory not found")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderTimeout    = errors.New("provider timed out")
	ErrProviderExhausted  = errors.New("provider rate limit exhausted")
	ErrServiceDegraded    = errors.New("service degraded after retry exhaustion")
	ErrStoreInconsistency = errors.New("store inconsistency")
	ErrConcurrency        = errors.New("lock wait exceeded")
	ErrFatal              = errors.New("fatal configuration error")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindNotFound:
		return ErrNotFound
	case KindProviderUnavailable:
		return ErrProviderUnavailable
	case KindProviderTimeout:
		return ErrProviderTimeout
	case KindProviderExhausted:
		return ErrProviderExhausted
	case KindServiceDegraded:
		return ErrServiceDegraded
	case KindStoreInconsistency:
		return ErrStoreInconsistency
	case KindConcurrency:
		return ErrConcurrency
	case KindFatal:
		return ErrFatal
	default:
		return errors.New(string(k))
	}
}

// Error wraps an underlying error with an operation name and a Kind,
// generalizing the teacher's MemoryError{Op, Err} with a classification
// retry policies and callers can branch on.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// Error returns "memengine: <Op>: <Kind>: <Err>".
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("memengine: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("memengine: %s: %s", e.Op, e.Kind)
}

// Unwrap lets errors.Is/errors.As see through to the underlying sentinel.
func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return sentinelFor(e.Kind)
}

// Retryable reports whether the caller's retry policy should re-attempt
// the operation that produced this error.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindProviderUnavailable, KindProviderTimeout, KindProviderExhausted:
		return true
	default:
		return false
	}
}

// New builds an *Error. If err is nil, returns nil so call sites can write
//
//	if err != nil { return New("Add", KindProviderUnavailable, err) }
func New(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind == kind
	}
	return false
}
