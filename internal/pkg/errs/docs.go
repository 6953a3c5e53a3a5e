// Package errs provides the structured failure taxonomy for the exchange application.
// Every failure raised by the order lifecycle and its collaborators (payments,
// shipping quotes, inventory, tax) is expressed as a DomainError carrying a
// category and a code drawn from a closed catalog.
//
// The taxonomy is two-level:
//   - Category: coarse failure class (Validation, Processing, Internal) that
//     governs retry and surfacing policy. Validation failures are deterministic
//     and non-retryable; Processing failures are transient and safe to retry
//     with backoff; Internal failures indicate a defect and go to operators.
//   - Code: a precise, named failure kind within its category.
//
// Each category has a sentinel error (ErrValidation, ErrProcessing, ErrInternal)
// so callers can branch coarsely with errors.Is, and errors.As against
// *DomainError gives access to the code and diagnostic context.
//
// No ad hoc or free-text error identifiers exist outside this package: a code
// that is not in the catalog is coerced to internal/generic rather than
// silently introducing a new kind.
package errs
