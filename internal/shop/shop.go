package shop

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tobiaswld/werkstatt/internal/billing"
	"github.com/tobiaswld/werkstatt/internal/order"
)

var (
	ErrNotFound   = errors.New("store not found")
	ErrBadVATRate = errors.New("vat rate must be between 0 and 100")
	ErrBadStatus  = errors.New("notify-set contains an unknown order status")
)

// Shop is one tenant of the back office. Its billing config rules how
// documents are numbered and taxed; its notify-set rules which order status
// changes the customer hears about.
type Shop struct {
	ID   uuid.UUID
	Name string

	Billing   billing.StoreConfig
	NotifySet []order.Status

	CreatedAt time.Time
	UpdatedAt *time.Time
}
