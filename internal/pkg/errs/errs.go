package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Category is the coarse failure class of a DomainError.
// It determines how callers treat the failure: validation errors are
// non-retryable user-facing failures, processing errors are retryable,
// internal errors are surfaced to operators.
type Category int

const (
	// CategoryUnknown is the zero value and never carried by a constructed error.
	CategoryUnknown Category = iota

	// Validation marks deterministic failures caused by the caller's input
	// or by an illegal action for the order's current state.
	Validation

	// Processing marks transient failures from external collaborators
	// (payment capture, tax, inventory) that are safe to retry with backoff.
	Processing

	// Internal marks defects and unclassified upstream failures.
	Internal
)

// String returns the lowercase name of the category.
func (c Category) String() string {
	switch c {
	case Validation:
		return "validation"
	case Processing:
		return "processing"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per category. errors.Is(err, ErrValidation) is the
// supported way to branch on category without unwrapping the DomainError.
var (
	ErrValidation = errors.New("validation failed")
	ErrProcessing = errors.New("processing failed")
	ErrInternal   = errors.New("internal failure")
)

// DomainError is the structured failure value used throughout the application.
// It carries a category, a code from the closed catalog, optional diagnostic
// context and an optional underlying cause.
type DomainError struct {
	Category Category
	Code     Code
	Context  map[string]any
	Cause    error
}

// newDomainError builds a DomainError, deriving the category from the
// catalog. Codes outside the catalog are coerced to internal/generic with the
// offending code preserved in the context, so an unregistered kind can never
// masquerade as a retryable or user-facing failure.
func newDomainError(code Code, cause error) *DomainError {
	category := code.Category()
	if category == CategoryUnknown {
		return &DomainError{
			Category: Internal,
			Code:     CodeGeneric,
			Context:  map[string]any{"unregistered_code": string(code)},
			Cause:    cause,
		}
	}
	return &DomainError{
		Category: category,
		Code:     code,
		Cause:    cause,
	}
}

// NewValidationError creates a validation-category error for the given code.
func NewValidationError(code Code) *DomainError {
	return newDomainError(code, nil)
}

// NewValidationErrorWithCause creates a validation-category error wrapping a cause.
func NewValidationErrorWithCause(code Code, cause error) *DomainError {
	return newDomainError(code, cause)
}

// NewProcessingError creates a processing-category error for the given code.
func NewProcessingError(code Code) *DomainError {
	return newDomainError(code, nil)
}

// NewProcessingErrorWithCause creates a processing-category error wrapping a cause.
func NewProcessingErrorWithCause(code Code, cause error) *DomainError {
	return newDomainError(code, cause)
}

// NewInternalError creates an internal-category error for the given code.
func NewInternalError(code Code) *DomainError {
	return newDomainError(code, nil)
}

// NewInternalErrorWithCause creates an internal-category error wrapping a cause.
func NewInternalErrorWithCause(code Code, cause error) *DomainError {
	return newDomainError(code, cause)
}

// NewInvalidStateError reports an action that is not legal from the order's
// current state. The current state is carried in the context for diagnostics.
func NewInvalidStateError(currentState string) *DomainError {
	return NewValidationError(CodeInvalidState).With("state", currentState)
}

// NewInvalidStateReasonError reports a reason code that is not acceptable for
// the transition's target state. Distinguishable from an illegal transition
// by the "reason" context key.
func NewInvalidStateReasonError(reason string) *DomainError {
	return NewValidationError(CodeInvalidState).With("reason", reason)
}

// NewLockContentionError reports a failed attempt to acquire the per-order
// lock within the caller's deadline. Contention is transient, so the error is
// processing-category and retryable; no dedicated kind exists in the catalog,
// so the generic code is carried together with the cause.
func NewLockContentionError(cause error) *DomainError {
	return &DomainError{
		Category: Processing,
		Code:     CodeGeneric,
		Cause:    cause,
	}
}

// With attaches a diagnostic context value and returns the error for chaining.
func (e *DomainError) With(key string, value any) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Error formats the error as "category: code", followed by context pairs in
// key order and the cause, if any.
func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString(e.Category.String())
	b.WriteString(": ")
	b.WriteString(string(e.Code))

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s: %s", k, sanitize(fmt.Sprintf("%v", e.Context[k]))))
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(pairs, ", "))
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(" (cause: ")
		b.WriteString(sanitize(e.Cause.Error()))
		b.WriteString(")")
	}

	return b.String()
}

// Unwrap exposes the category sentinel and the cause to errors.Is/errors.As.
func (e *DomainError) Unwrap() []error {
	errsChain := []error{e.sentinel()}
	if e.Cause != nil {
		errsChain = append(errsChain, e.Cause)
	}
	return errsChain
}

func (e *DomainError) sentinel() error {
	switch e.Category {
	case Processing:
		return ErrProcessing
	case Internal:
		return ErrInternal
	default:
		return ErrValidation
	}
}

// CategoryOf returns the category of err if it is (or wraps) a DomainError,
// CategoryUnknown otherwise.
func CategoryOf(err error) Category {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Category
	}
	return CategoryUnknown
}

// CodeOf returns the code of err if it is (or wraps) a DomainError,
// the empty code otherwise.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// sanitize strips newlines so error messages stay single-line in logs.
func sanitize(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "\r", " ")
}
