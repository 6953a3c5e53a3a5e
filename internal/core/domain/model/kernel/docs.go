// Package kernel provides the shared domain primitives of the exchange system.
// Currently that is UUID, an immutable identifier value object used for
// entities and aggregates throughout the domain model. The zero value of any
// kernel primitive is invalid; construction goes through factory functions
// that enforce validation.
package kernel
