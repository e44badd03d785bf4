package billing

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrNoLineItems    = errors.New("document requires at least one line item with a description or amount")
	ErrDocumentFrozen = errors.New("cancelled documents cannot be modified")
	ErrBadPayment     = errors.New("unknown payment method")
	ErrBadDocType     = errors.New("unknown document type")
)

// DuplicateNumberError is returned when an explicitly supplied document
// number is already taken within the store.
type DuplicateNumberError struct {
	Number string
}

func (e *DuplicateNumberError) Error() string {
	return fmt.Sprintf("document number %q already in use", e.Number)
}

// InvalidTransitionError is returned when a status change is not an edge of
// the document's lifecycle graph.
type InvalidTransitionError struct {
	Type DocType
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Type, e.From, e.To)
}
