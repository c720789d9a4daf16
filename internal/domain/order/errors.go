package order

import (
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// ErrValidationMismatch is the category every *ValidationError unwraps to.
var ErrValidationMismatch = shared.NewDomainError(shared.CodeValidationMismatch, "order validation failed")

// ValidationError carries every discrepancy found in one validation pass.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationMismatch
}

func newValidationError(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	return &ValidationError{Messages: append([]string(nil), msgs...)}
}
