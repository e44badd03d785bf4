package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tobiaswld/werkstatt/internal/billing"
	"github.com/tobiaswld/werkstatt/internal/notify"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=order
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateOrder(ctx context.Context, o *Order) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, version int) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error)

	BeginComplete(ctx context.Context, storeID uuid.UUID) (CompleteTx, error)
}

// CompleteTx is the single transaction that finishes an order and issues its
// invoice. Status change and document creation commit or fail together, which
// is what makes a duplicated completion request unable to produce two
// invoices.
type CompleteTx interface {
	billing.IssueTx

	CompleteOrder(ctx context.Context, id uuid.UUID, version int, finalCost int64, lines []billing.LineItem) error
}

// NotifyPolicy exposes the store's configured notify-set: the order statuses
// that should trigger a customer notification.
type NotifyPolicy interface {
	NotifySet(ctx context.Context, storeID uuid.UUID) ([]Status, error)
}

type Service struct {
	repo       Repository
	cfg        billing.ConfigSource
	policy     NotifyPolicy
	dispatcher notify.Dispatcher
}

func NewService(repo Repository, cfg billing.ConfigSource, policy NotifyPolicy, dispatcher notify.Dispatcher) *Service {
	return &Service{repo: repo, cfg: cfg, policy: policy, dispatcher: dispatcher}
}

type CreateParams struct {
	StoreID    uuid.UUID
	CustomerID *uuid.UUID
	Contact    Contact
	Device     Device
	Problem    string
}

type ListFilter struct {
	StoreID uuid.UUID
	Status  *Status
	Search  string // matches contact name, email and device model
	Limit   int
	Offset  int
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Order, error) {
	o := &Order{
		StoreID:    params.StoreID,
		CustomerID: params.CustomerID,
		Contact:    params.Contact,
		Device:     params.Device,
		Problem:    params.Problem,
		Status:     StatusNew,
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	return s.repo.ListOrders(ctx, filter)
}

// Update edits the order's descriptive fields under the optimistic version
// check. Status is not touched here; that is Transition's job.
func (s *Service) Update(ctx context.Context, o *Order) error {
	return s.repo.UpdateOrder(ctx, o)
}

// Delete removes an order permanently. This is an explicit destructive
// operation, not a state-machine transition.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteOrder(ctx, id)
}

// Transition moves an order to a new non-completing status. The version is
// the one the caller last read; zero means "whatever is current". Dispatch
// warnings never fail the transition.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to Status, version int) (*Order, []string, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !to.Valid() || o.Status.Terminal() {
		return nil, nil, &InvalidTransitionError{From: o.Status, To: to}
	}

	if to == StatusDone {
		return nil, nil, ErrCompletionRequired
	}

	if version == 0 {
		version = o.Version
	}

	if err := s.repo.UpdateStatus(ctx, id, to, version); err != nil {
		return nil, nil, err
	}

	o.Status = to
	o.Version = version + 1

	return o, s.notifyStatusChange(ctx, o, to), nil
}

type CompleteParams struct {
	OrderID uuid.UUID
	Version int

	Lines  []billing.LineItem
	Number string // optional explicit invoice number
	Notes  string

	MarginScheme bool

	// MarkPaid records the invoice as settled on the spot.
	MarkPaid      bool
	PaymentMethod billing.PaymentMethod
	PaidAt        *time.Time
}

// CompletionResult is the outcome of a completion command. Warnings carry
// notification failures attached to an otherwise successful completion.
type CompletionResult struct {
	Order    *Order
	Invoice  *billing.Document
	Warnings []string
}

// CompleteWithInvoice sets the order to done and materializes the invoice in
// one transaction under the store's issue lock.
func (s *Service) CompleteWithInvoice(ctx context.Context, params CompleteParams) (*CompletionResult, error) {
	o, err := s.repo.GetOrder(ctx, params.OrderID)
	if err != nil {
		return nil, err
	}

	// Rejecting done here keeps a repeated completion request from issuing a
	// second invoice for the same order.
	if o.Status == StatusDone || o.Status.Terminal() {
		return nil, &InvalidTransitionError{From: o.Status, To: StatusDone}
	}

	if err := billing.ValidateLines(params.Lines); err != nil {
		return nil, err
	}

	if params.PaymentMethod != "" && !params.PaymentMethod.Valid() {
		return nil, billing.ErrBadPayment
	}

	cfg, err := s.cfg.BillingConfig(ctx, o.StoreID)
	if err != nil {
		return nil, fmt.Errorf("loading billing config: %w", err)
	}

	totals := billing.ComputeTotals(params.Lines, billing.VATParams{
		Enabled:      cfg.VATEnabled,
		Rate:         cfg.VATRate,
		MarginScheme: params.MarginScheme,
	})

	doc := &billing.Document{
		StoreID: o.StoreID,
		Type:    billing.DocTypeInvoice,
		Customer: billing.CustomerSnapshot{
			Name:    o.Contact.Name,
			Email:   o.Contact.Email,
			Phone:   o.Contact.Phone,
			Address: o.Contact.Address,
		},
		Lines:        params.Lines,
		NetAmount:    totals.Net,
		VATAmount:    totals.VAT,
		Total:        totals.Gross,
		VATRate:      cfg.VATRate,
		VATExempt:    !cfg.VATEnabled,
		MarginScheme: params.MarginScheme,
		Status:       billing.StatusDraft,
		Notes:        params.Notes,
		OrderID:      &o.ID,
	}

	if params.MarkPaid {
		doc.Status = billing.StatusPaid
		doc.PaymentMethod = params.PaymentMethod
		doc.PaidAt = params.PaidAt
	}

	version := params.Version
	if version == 0 {
		version = o.Version
	}

	tx, err := s.repo.BeginComplete(ctx, o.StoreID)
	if err != nil {
		return nil, fmt.Errorf("begin completion: %w", err)
	}
	defer tx.Rollback()

	if err := tx.CompleteOrder(ctx, o.ID, version, totals.Gross, params.Lines); err != nil {
		return nil, err
	}

	if err := billing.AssignNumber(ctx, tx, cfg, doc, params.Number); err != nil {
		return nil, err
	}

	if err := tx.InsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("inserting invoice: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit completion: %w", err)
	}

	o.Status = StatusDone
	o.FinalCost = &totals.Gross
	o.LineItems = params.Lines
	o.Version = version + 1

	return &CompletionResult{
		Order:    o,
		Invoice:  doc,
		Warnings: s.notifyStatusChange(ctx, o, StatusDone),
	}, nil
}

// CompleteWithoutInvoice finalizes the order without billing ("skip invoice").
func (s *Service) CompleteWithoutInvoice(ctx context.Context, id uuid.UUID, version int) (*CompletionResult, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if o.Status == StatusDone || o.Status.Terminal() {
		return nil, &InvalidTransitionError{From: o.Status, To: StatusDone}
	}

	if version == 0 {
		version = o.Version
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusDone, version); err != nil {
		return nil, err
	}

	o.Status = StatusDone
	o.Version = version + 1

	return &CompletionResult{
		Order:    o,
		Warnings: s.notifyStatusChange(ctx, o, StatusDone),
	}, nil
}

// notifyStatusChange dispatches the status notification when the store's
// notify-set contains the new status. Failures come back as warnings; the
// status change is already committed and stays committed.
func (s *Service) notifyStatusChange(ctx context.Context, o *Order, status Status) []string {
	set, err := s.policy.NotifySet(ctx, o.StoreID)
	if err != nil {
		slog.Warn("loading notify-set failed", "store_id", o.StoreID, "error", err)
		return []string{fmt.Sprintf("notification skipped: %v", err)}
	}

	wanted := false

	for _, st := range set {
		if st == status {
			wanted = true
			break
		}
	}

	if !wanted || o.Contact.Email == "" {
		return nil
	}

	payload := map[string]any{
		"order_id": o.ID,
		"status":   string(status),
		"device":   o.Device.Brand + " " + o.Device.Model,
	}

	if err := s.dispatcher.Notify(ctx, o.Contact.Email, "order_status_changed", payload); err != nil {
		slog.Warn("notification dispatch failed", "order_id", o.ID, "error", err)
		return []string{fmt.Sprintf("notification failed: %v", err)}
	}

	return nil
}
