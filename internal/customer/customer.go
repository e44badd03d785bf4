package customer

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("customer not found")

	// ErrAlreadyPromoted means the order is already linked to a persisted
	// customer record.
	ErrAlreadyPromoted = errors.New("order already has a customer record")
)

// Customer is a persisted customer record. Only persisted customers can be
// edited or deleted.
type Customer struct {
	ID      uuid.UUID
	StoreID uuid.UUID

	Name    string
	Company string
	Email   string
	Phone   string
	Address string
	TaxID   string
	Notes   string

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Derived is a customer known only through a repair order's contact snapshot.
// It has no record of its own and is immutable until promoted; the order id
// is its only handle.
type Derived struct {
	OrderID uuid.UUID
	StoreID uuid.UUID

	Name    string
	Email   string
	Phone   string
	Address string

	FiledAt time.Time
}
