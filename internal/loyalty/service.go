package loyalty

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=loyalty
type Repository interface {
	Balance(ctx context.Context, customerID, storeID uuid.UUID) (int, error)
	CreditPoints(ctx context.Context, credit *Credit) error
	ListRewards(ctx context.Context, storeID uuid.UUID) ([]*Reward, error)

	GetDecision(ctx context.Context, orderID uuid.UUID) (*Decision, error)
	BeginDecision(ctx context.Context, orderID uuid.UUID) (DecisionTx, error)
}

// DecisionTx serializes decision writes per order id: read and write happen
// under one order-scoped lock so concurrent approve/reject calls cannot
// interleave.
type DecisionTx interface {
	Decision(ctx context.Context) (*Decision, error)
	Save(ctx context.Context, d *Decision) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Balance(ctx context.Context, customerID, storeID uuid.UUID) (int, error) {
	return s.repo.Balance(ctx, customerID, storeID)
}

type CreditParams struct {
	CustomerID uuid.UUID
	StoreID    uuid.UUID
	Points     int
	Reason     string
}

// Credit adds points to a customer's ledger. Negative amounts are staff
// corrections.
func (s *Service) Credit(ctx context.Context, params CreditParams) (*Credit, error) {
	if params.Points == 0 {
		return nil, ErrNoPoints
	}

	credit := &Credit{
		CustomerID: params.CustomerID,
		StoreID:    params.StoreID,
		Points:     params.Points,
		Reason:     params.Reason,
	}

	if err := s.repo.CreditPoints(ctx, credit); err != nil {
		return nil, err
	}

	return credit, nil
}

func (s *Service) Rewards(ctx context.Context, storeID uuid.UUID) ([]*Reward, error) {
	return s.repo.ListRewards(ctx, storeID)
}

func (s *Service) Decision(ctx context.Context, orderID uuid.UUID) (*Decision, error) {
	return s.repo.GetDecision(ctx, orderID)
}

// Eligible reports whether the order's customer may redeem a reward costing
// the given points. An order whose customer was never promoted has no ledger,
// so customerID is the nil UUID and the balance is zero.
func (s *Service) Eligible(ctx context.Context, orderID, customerID, storeID uuid.UUID, required int) (bool, error) {
	decision, err := s.repo.GetDecision(ctx, orderID)
	if err != nil {
		return false, err
	}

	if decision.Approved {
		return false, nil
	}

	if customerID == uuid.Nil {
		return required <= 0, nil
	}

	balance, err := s.repo.Balance(ctx, customerID, storeID)
	if err != nil {
		return false, err
	}

	return balance >= required, nil
}

// Approve grants the reward. Approving an already-approved order is a no-op,
// not an error; approving a rejected one overrides the rejection.
func (s *Service) Approve(ctx context.Context, orderID uuid.UUID, pointsRequired int) (*Decision, error) {
	tx, err := s.repo.BeginDecision(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("begin decision: %w", err)
	}
	defer tx.Rollback()

	d, err := tx.Decision(ctx)
	if err != nil {
		return nil, err
	}

	if d.Approved {
		return d, nil
	}

	now := time.Now()

	d.Approved = true
	d.Rejected = false
	d.RejectionReason = ""
	d.PointsRequired = pointsRequired
	d.DecidedAt = &now

	if err := tx.Save(ctx, d); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit decision: %w", err)
	}

	return d, nil
}

// Reject declines the reward with a reason. A granted reward cannot be
// rejected afterwards.
func (s *Service) Reject(ctx context.Context, orderID uuid.UUID, reason string) (*Decision, error) {
	if reason == "" {
		return nil, ErrEmptyReason
	}

	tx, err := s.repo.BeginDecision(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("begin decision: %w", err)
	}
	defer tx.Rollback()

	d, err := tx.Decision(ctx)
	if err != nil {
		return nil, err
	}

	if d.Approved {
		return nil, ErrAlreadyApproved
	}

	now := time.Now()

	d.Rejected = true
	d.RejectionReason = reason
	d.DecidedAt = &now

	if err := tx.Save(ctx, d); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit decision: %w", err)
	}

	return d, nil
}
