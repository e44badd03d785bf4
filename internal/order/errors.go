package order

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("order not found")

	// ErrConflict means another writer changed the order since it was read.
	// The caller should refresh and retry.
	ErrConflict = errors.New("order was modified concurrently")

	// ErrCompletionRequired is returned when a plain status transition
	// targets done. Completion goes through CompleteWithInvoice or
	// CompleteWithoutInvoice so invoice creation is always explicit.
	ErrCompletionRequired = errors.New("completing an order requires an explicit completion command")
)

// InvalidTransitionError is returned for an unknown target status or a
// transition out of a terminal state.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order cannot move from %s to %s", e.From, e.To)
}
