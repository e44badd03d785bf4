package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/tobiaswld/werkstatt/internal/billing"
)

// Status represents the lifecycle state of a repair order.
type Status string

const (
	StatusNew          Status = "new"
	StatusInProgress   Status = "in_progress"
	StatusWaitingParts Status = "waiting_parts"
	StatusDone         Status = "done"
	StatusDelivered    Status = "delivered"
	StatusCancelled    Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusWaitingParts, StatusDone, StatusDelivered, StatusCancelled:
		return true
	}

	return false
}

// Terminal states accept no further transitions.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Contact is the customer contact snapshot taken when the order was filed.
// It stays valid even when no customer record exists yet.
type Contact struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Device describes the item handed in for repair.
type Device struct {
	Brand       string
	Model       string
	Identifier  string // serial or IMEI
	UnlockCode  string
	Attachments []string // image refs, stored elsewhere
}

// Order is a repair ticket. Version implements optimistic concurrency:
// every write checks and increments it, and a losing writer gets ErrConflict.
type Order struct {
	ID         uuid.UUID
	StoreID    uuid.UUID
	CustomerID *uuid.UUID // nil while the customer is only known through this order

	Contact Contact
	Device  Device
	Problem string

	Status    Status
	FinalCost *int64             // set on completion, gross cents
	LineItems []billing.LineItem // set on completion with invoice

	Version   int
	CreatedAt time.Time
	UpdatedAt *time.Time
}
