package order

import (
	"fmt"
	"math/rand/v2"

	"exchange/internal/pkg/errs"
)

// CodeLength is the fixed width of an order code.
const CodeLength = 10

// CodeGenerationAttempts bounds how many times creation retries a freshly
// generated code against the uniqueness constraint before giving up with
// validation/failed_order_code_generation.
const CodeGenerationAttempts = 10

// Code is the human-facing order identifier: a fixed-width, zero-padded
// numeric string, unique across all orders. Uniqueness is enforced by the
// persistence layer; the value object only guarantees shape.
type Code string

// NewCode generates a random candidate code. The caller owns the
// uniqueness retry loop.
func NewCode() Code {
	// rand.N upper bound is exclusive, so this yields exactly CodeLength digits.
	return Code(fmt.Sprintf("%0*d", CodeLength, rand.N(int64(1e10))))
}

// CodeFromString parses a persisted or wire-format order code.
func CodeFromString(s string) (Code, error) {
	c := Code(s)
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

// Validate checks the fixed-width numeric shape.
func (c Code) Validate() error {
	if len(c) != CodeLength {
		return errs.NewValidationErrorWithCause(
			errs.CodeInvalidOrder,
			fmt.Errorf("order code must be %d digits, got %d", CodeLength, len(c)),
		)
	}
	for _, r := range c {
		if r < '0' || r > '9' {
			return errs.NewValidationErrorWithCause(
				errs.CodeInvalidOrder,
				fmt.Errorf("order code must be numeric, got %q", string(c)),
			)
		}
	}
	return nil
}

// String returns the wire representation of the code.
func (c Code) String() string {
	return string(c)
}
