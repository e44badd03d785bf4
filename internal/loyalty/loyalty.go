package loyalty

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmptyReason guards rejections: a rejection always records why.
	ErrEmptyReason = errors.New("rejection requires a reason")

	// ErrAlreadyApproved means the reward was granted; a granted reward is
	// never taken back by a later rejection.
	ErrAlreadyApproved = errors.New("reward is already approved")

	ErrNoPoints = errors.New("credit requires a non-zero point amount")
)

// RewardKind is what a store offers for redeemed points. The workflow only
// records the grant decision; the reward's value is display configuration.
type RewardKind string

const (
	RewardFixedDiscount   RewardKind = "fixed_discount"
	RewardPercentDiscount RewardKind = "percent_discount"
	RewardFreeProduct     RewardKind = "free_product"
)

// Reward is a store-configured redemption offer.
type Reward struct {
	ID             uuid.UUID
	StoreID        uuid.UUID
	Kind           RewardKind
	Title          string
	Value          int64 // cents for fixed discounts, percent for percent discounts
	PointsRequired int
}

// Credit is one points entry in a customer's ledger. The balance is the sum
// of all credits for a (customer, store) pair; there is no stored account row.
type Credit struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	StoreID    uuid.UUID
	Points     int
	Reason     string
	CreatedAt  time.Time
}

// Decision is the redemption decision attached to a repair order. Approved
// and rejected are mutually exclusive; a rejection may later be overridden by
// an approval but never the reverse.
type Decision struct {
	OrderID         uuid.UUID
	Approved        bool
	Rejected        bool
	RejectionReason string
	PointsRequired  int
	DecidedAt       *time.Time
}
