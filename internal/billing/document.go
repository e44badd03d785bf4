package billing

import (
	"time"

	"github.com/google/uuid"
)

// DocType distinguishes the billing document kinds.
type DocType string

const (
	DocTypeInvoice  DocType = "invoice"
	DocTypeQuote    DocType = "quote"
	DocTypePurchase DocType = "purchase"
)

func (t DocType) Valid() bool {
	switch t {
	case DocTypeInvoice, DocTypeQuote, DocTypePurchase:
		return true
	}

	return false
}

// Status represents the lifecycle state of a billing document.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"

	// Quote-only outcomes.
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// PaymentMethod is how an invoice was settled.
type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentCardDebit     PaymentMethod = "card_debit"
	PaymentCardCredit    PaymentMethod = "card_credit"
	PaymentBankTransfer  PaymentMethod = "bank_transfer"
	PaymentOnlinePayment PaymentMethod = "online_payment"
	PaymentOther         PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCardDebit, PaymentCardCredit, PaymentBankTransfer, PaymentOnlinePayment, PaymentOther:
		return true
	}

	return false
}

// LineItem is a single position on a document. Amount is gross (tax-inclusive) cents.
type LineItem struct {
	Description string
	Amount      int64
}

// CustomerSnapshot is an independent copy of the customer's contact data at
// issue time. Editing a customer later never changes an issued document.
type CustomerSnapshot struct {
	Name    string
	Company string
	Email   string
	Phone   string
	Address string
	TaxID   string
}

// Document represents an invoice, quote or purchase receipt.
type Document struct {
	ID      uuid.UUID
	StoreID uuid.UUID
	Type    DocType
	Number  string // immutable once persisted, unique per store+type

	Customer CustomerSnapshot
	Lines    []LineItem

	NetAmount int64
	VATAmount int64
	Total     int64

	// VATRate and VATExempt capture the store's tax regime at issue time so
	// later config edits do not reprice existing documents.
	VATRate      float64
	VATExempt    bool
	MarginScheme bool

	Status        Status
	ValidUntil    *time.Time // quotes only
	PaidAt        *time.Time // invoices only
	PaymentMethod PaymentMethod
	Notes         string

	OrderID *uuid.UUID // set when materialized from a completed repair order

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// LegalNotice reports which annotation the rendered document must carry in
// place of (or next to) the VAT line.
type LegalNotice string

const (
	NoticeNone          LegalNotice = ""
	NoticeSmallBusiness LegalNotice = "small_business" // no VAT charged, §19 UStG style exemption
	NoticeMarginScheme  LegalNotice = "margin_scheme"  // differenzbesteuerung, VAT line suppressed
)

// Notice returns the legal annotation the document requires. Margin scheme
// wins over the exemption notice when both are set.
func (d *Document) Notice() LegalNotice {
	if d.MarginScheme {
		return NoticeMarginScheme
	}

	if d.VATExempt {
		return NoticeSmallBusiness
	}

	return NoticeNone
}

var transitions = map[Status][]Status{
	StatusDraft: {StatusSent, StatusPaid, StatusCancelled},
	StatusSent:  {StatusPaid, StatusCancelled},
}

var quoteTransitions = map[Status][]Status{
	StatusDraft: {StatusSent, StatusCancelled},
	StatusSent:  {StatusAccepted, StatusRejected, StatusExpired, StatusCancelled},
}

// CanTransition reports whether a document of the given type may move from
// one status to another. Terminal states have no outgoing edges.
func CanTransition(docType DocType, from, to Status) bool {
	graph := transitions
	if docType == DocTypeQuote {
		graph = quoteTransitions
	}

	for _, s := range graph[from] {
		if s == to {
			return true
		}
	}

	return false
}
