package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=billing
type Repository interface {
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)
	UpdateDocument(ctx context.Context, doc *Document) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, method PaymentMethod, paidAt *time.Time) error
	DeleteDocument(ctx context.Context, id uuid.UUID) error

	ListDocuments(ctx context.Context, filter ListFilter) ([]*Document, error)
	ListNumbers(ctx context.Context, storeID uuid.UUID, docType DocType) ([]string, error)

	BeginIssue(ctx context.Context, storeID uuid.UUID) (IssueTx, error)
}

// IssueTx serializes document creation per store: the collision check and the
// insert happen under one store-scoped lock so two concurrent creations can
// never claim the same number.
type IssueTx interface {
	NumberExists(ctx context.Context, storeID uuid.UUID, docType DocType, number string) (bool, error)
	InsertDocument(ctx context.Context, doc *Document) error
	SetNextNumber(ctx context.Context, storeID uuid.UUID, docType DocType, next int) error
	Commit() error
	Rollback() error
}

// ConfigSource provides a store's billing configuration.
type ConfigSource interface {
	BillingConfig(ctx context.Context, storeID uuid.UUID) (*StoreConfig, error)
}

type Service struct {
	repo Repository
	cfg  ConfigSource
}

func NewService(repo Repository, cfg ConfigSource) *Service {
	return &Service{repo: repo, cfg: cfg}
}

type CreateParams struct {
	StoreID  uuid.UUID
	Type     DocType
	Number   string // optional; synthesized from the store series when empty
	Customer CustomerSnapshot
	Lines    []LineItem

	MarginScheme bool
	ValidUntil   *time.Time
	Notes        string
	OrderID      *uuid.UUID

	// MarkPaid starts the invoice directly in paid with the supplied
	// payment details instead of draft.
	MarkPaid      bool
	PaymentMethod PaymentMethod
	PaidAt        *time.Time
}

type ListFilter struct {
	StoreID uuid.UUID
	Type    *DocType
	Status  *Status
	Search  string // matches document number and customer name
	Limit   int
	Offset  int
}

// ValidateLines requires at least one line with a description or a non-zero
// amount before a document may be issued.
func ValidateLines(lines []LineItem) error {
	for _, line := range lines {
		if line.Description != "" || line.Amount != 0 {
			return nil
		}
	}

	return ErrNoLineItems
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Document, error) {
	if !params.Type.Valid() {
		return nil, ErrBadDocType
	}

	if err := ValidateLines(params.Lines); err != nil {
		return nil, err
	}

	if params.PaymentMethod != "" && !params.PaymentMethod.Valid() {
		return nil, ErrBadPayment
	}

	// Paid is not a quote status; the immediate-paid shortcut only applies to
	// document types whose lifecycle can reach it.
	if params.MarkPaid && params.Type == DocTypeQuote {
		return nil, &InvalidTransitionError{Type: params.Type, From: StatusDraft, To: StatusPaid}
	}

	cfg, err := s.cfg.BillingConfig(ctx, params.StoreID)
	if err != nil {
		return nil, fmt.Errorf("loading billing config: %w", err)
	}

	totals := ComputeTotals(params.Lines, cfg.vat(params.MarginScheme))

	doc := &Document{
		StoreID:      params.StoreID,
		Type:         params.Type,
		Customer:     params.Customer,
		Lines:        params.Lines,
		NetAmount:    totals.Net,
		VATAmount:    totals.VAT,
		Total:        totals.Gross,
		VATRate:      cfg.VATRate,
		VATExempt:    !cfg.VATEnabled,
		MarginScheme: params.MarginScheme,
		Status:       StatusDraft,
		ValidUntil:   params.ValidUntil,
		Notes:        params.Notes,
		OrderID:      params.OrderID,
	}

	if params.MarkPaid {
		doc.Status = StatusPaid
		doc.PaymentMethod = params.PaymentMethod
		doc.PaidAt = params.PaidAt
	}

	itx, err := s.repo.BeginIssue(ctx, params.StoreID)
	if err != nil {
		return nil, fmt.Errorf("begin issue: %w", err)
	}
	defer itx.Rollback()

	if err := AssignNumber(ctx, itx, cfg, doc, params.Number); err != nil {
		return nil, err
	}

	if err := itx.InsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("inserting document: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit issue: %w", err)
	}

	return doc, nil
}

// AssignNumber sets the document number inside an issue transaction.
//
// An explicit number is taken verbatim and fails on collision. A synthesized
// number starts at the stored counter and advances past any number already in
// use; the counter itself is only an advisory floor (manually created or
// imported documents may have moved the series ahead of it). In both cases
// the stored counter is bumped past the claimed sequence.
func AssignNumber(ctx context.Context, itx IssueTx, cfg *StoreConfig, doc *Document, explicit string) error {
	series := cfg.Series(doc.Type)

	if explicit != "" {
		taken, err := itx.NumberExists(ctx, doc.StoreID, doc.Type, explicit)
		if err != nil {
			return fmt.Errorf("checking number: %w", err)
		}

		if taken {
			return &DuplicateNumberError{Number: explicit}
		}

		doc.Number = explicit

		if seq := trailingSequence(explicit); seq >= series.NextNumber {
			if err := itx.SetNextNumber(ctx, doc.StoreID, doc.Type, seq+1); err != nil {
				return fmt.Errorf("advancing counter: %w", err)
			}
		}

		return nil
	}

	seq := series.NextNumber
	if seq < 1 {
		seq = 1
	}

	for {
		number := FormatNumber(series.Prefix, seq)

		taken, err := itx.NumberExists(ctx, doc.StoreID, doc.Type, number)
		if err != nil {
			return fmt.Errorf("checking number: %w", err)
		}

		if !taken {
			doc.Number = number
			break
		}

		seq++
	}

	if err := itx.SetNextNumber(ctx, doc.StoreID, doc.Type, seq+1); err != nil {
		return fmt.Errorf("advancing counter: %w", err)
	}

	return nil
}

type UpdateParams struct {
	Customer     *CustomerSnapshot
	Lines        []LineItem // nil keeps the existing items
	Notes        *string
	ValidUntil   *time.Time
	MarginScheme *bool
}

// Update edits a document's mutable fields. The number is immutable and
// cancelled documents are frozen. Changed line items recompute the totals
// under the tax regime captured at issue time.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Document, error) {
	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if doc.Status == StatusCancelled {
		return nil, ErrDocumentFrozen
	}

	if params.Customer != nil {
		doc.Customer = *params.Customer
	}

	if params.Notes != nil {
		doc.Notes = *params.Notes
	}

	if params.ValidUntil != nil {
		doc.ValidUntil = params.ValidUntil
	}

	if params.MarginScheme != nil {
		doc.MarginScheme = *params.MarginScheme
	}

	if params.Lines != nil {
		if err := ValidateLines(params.Lines); err != nil {
			return nil, err
		}

		doc.Lines = params.Lines
	}

	totals := ComputeTotals(doc.Lines, VATParams{Enabled: !doc.VATExempt, Rate: doc.VATRate, MarginScheme: doc.MarginScheme})
	doc.NetAmount = totals.Net
	doc.VATAmount = totals.VAT
	doc.Total = totals.Gross

	if err := s.repo.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// TransitionStatus moves a document along its lifecycle graph. Payment
// details are persisted exactly as supplied; whether to prompt for a missing
// method is the caller's concern, not re-derived here.
func (s *Service) TransitionStatus(ctx context.Context, id uuid.UUID, status Status, method PaymentMethod, paidAt *time.Time) error {
	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	if !CanTransition(doc.Type, doc.Status, status) {
		return &InvalidTransitionError{Type: doc.Type, From: doc.Status, To: status}
	}

	if status != StatusPaid {
		method, paidAt = "", nil
	} else if method != "" && !method.Valid() {
		return ErrBadPayment
	}

	return s.repo.UpdateStatus(ctx, id, status, method, paidAt)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	return s.repo.GetDocument(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Document, error) {
	return s.repo.ListDocuments(ctx, filter)
}

// Delete removes a document permanently. There is no soft delete.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteDocument(ctx, id)
}

// BulkResult reports the outcome for one id of a bulk operation. Each item
// succeeds or fails on its own; one failure never aborts the rest.
type BulkResult struct {
	ID  uuid.UUID
	Err error
}

func (s *Service) BulkDelete(ctx context.Context, ids []uuid.UUID) []BulkResult {
	results := make([]BulkResult, len(ids))
	for i, id := range ids {
		results[i] = BulkResult{ID: id, Err: s.Delete(ctx, id)}
	}

	return results
}

func (s *Service) BulkTransition(ctx context.Context, ids []uuid.UUID, status Status, method PaymentMethod, paidAt *time.Time) []BulkResult {
	results := make([]BulkResult, len(ids))
	for i, id := range ids {
		results[i] = BulkResult{ID: id, Err: s.TransitionStatus(ctx, id, status, method, paidAt)}
	}

	return results
}

// Suggestion is the advisory next document number for operator review.
type Suggestion struct {
	Number   string
	Sequence int
}

// SuggestNumber is read-only and idempotent: calling it twice without
// creating a document in between returns the same value.
func (s *Service) SuggestNumber(ctx context.Context, storeID uuid.UUID, docType DocType) (*Suggestion, error) {
	if !docType.Valid() {
		return nil, ErrBadDocType
	}

	cfg, err := s.cfg.BillingConfig(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("loading billing config: %w", err)
	}

	numbers, err := s.repo.ListNumbers(ctx, storeID, docType)
	if err != nil {
		return nil, fmt.Errorf("listing numbers: %w", err)
	}

	series := cfg.Series(docType)
	seq := SuggestNext(numbers, series.Prefix, series.NextNumber)

	return &Suggestion{Number: FormatNumber(series.Prefix, seq), Sequence: seq}, nil
}

type ImportParams struct {
	Number   string
	Type     DocType
	Customer CustomerSnapshot
	Lines    []LineItem
	IssuedAt time.Time
	Notes    string
}

type ImportResult struct {
	Imported  []*Document
	New       []ImportParams
	Conflicts []ImportConflict
}

// ImportConflict is a row whose document number is already present.
type ImportConflict struct {
	Number string
	Type   DocType
}

// ImportLegacy loads documents exported from a predecessor system. The whole
// batch runs under the store's issue lock; when any number collides nothing
// is written and the conflicts are reported for review.
func (s *Service) ImportLegacy(ctx context.Context, storeID uuid.UUID, params []ImportParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	cfg, err := s.cfg.BillingConfig(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("loading billing config: %w", err)
	}

	itx, err := s.repo.BeginIssue(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("begin issue: %w", err)
	}
	defer itx.Rollback()

	var (
		newParams []ImportParams
		conflicts []ImportConflict
		seen      = make(map[DocType]map[string]bool)
	)

	for _, p := range params {
		if seen[p.Type] == nil {
			seen[p.Type] = make(map[string]bool)
		}

		taken, err := itx.NumberExists(ctx, storeID, p.Type, p.Number)
		if err != nil {
			return nil, fmt.Errorf("checking number: %w", err)
		}

		if taken || seen[p.Type][p.Number] {
			conflicts = append(conflicts, ImportConflict{Number: p.Number, Type: p.Type})
			continue
		}

		seen[p.Type][p.Number] = true

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	nextSeq := make(map[DocType]int)

	docs := make([]*Document, len(newParams))

	for i, p := range newParams {
		totals := ComputeTotals(p.Lines, cfg.vat(false))

		docs[i] = &Document{
			StoreID:   storeID,
			Type:      p.Type,
			Number:    p.Number,
			Customer:  p.Customer,
			Lines:     p.Lines,
			NetAmount: totals.Net,
			VATAmount: totals.VAT,
			Total:     totals.Gross,
			VATRate:   cfg.VATRate,
			VATExempt: !cfg.VATEnabled,
			Status:    StatusSent,
			Notes:     p.Notes,
			CreatedAt: p.IssuedAt,
		}

		if err := itx.InsertDocument(ctx, docs[i]); err != nil {
			return nil, fmt.Errorf("inserting document %s: %w", p.Number, err)
		}

		if seq := trailingSequence(p.Number); seq >= nextSeq[p.Type] {
			nextSeq[p.Type] = seq + 1
		}
	}

	// Keep the advisory counters ahead of the imported series.
	for docType, next := range nextSeq {
		if next <= cfg.Series(docType).NextNumber {
			continue
		}

		if err := itx.SetNextNumber(ctx, storeID, docType, next); err != nil {
			return nil, fmt.Errorf("advancing counter: %w", err)
		}
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: docs}, nil
}
