package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/tobiaswld/werkstatt/internal/billing"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectDocumentColumns = `
	d.id, d.store_id, d.doc_type, d.document_number,
	d.customer_name, d.customer_company, d.customer_email, d.customer_phone, d.customer_address, d.customer_tax_id,
	d.line_items, d.net_amount, d.vat_amount, d.total, d.vat_rate, d.vat_exempt, d.margin_scheme,
	d.status, d.valid_until, d.paid_at, d.payment_method, d.notes, d.order_id,
	d.created_at, d.updated_at
`

func scanDocument(s scanner) (*billing.Document, error) {
	var doc billing.Document

	var (
		typeStr, statusStr string
		lines              []byte
		method             sql.NullString
	)

	if err := s.Scan(
		&doc.ID, &doc.StoreID, &typeStr, &doc.Number,
		&doc.Customer.Name, &doc.Customer.Company, &doc.Customer.Email, &doc.Customer.Phone, &doc.Customer.Address, &doc.Customer.TaxID,
		&lines, &doc.NetAmount, &doc.VATAmount, &doc.Total, &doc.VATRate, &doc.VATExempt, &doc.MarginScheme,
		&statusStr, &doc.ValidUntil, &doc.PaidAt, &method, &doc.Notes, &doc.OrderID,
		&doc.CreatedAt, &doc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	doc.Type = billing.DocType(typeStr)
	doc.Status = billing.Status(statusStr)
	doc.PaymentMethod = billing.PaymentMethod(method.String)

	if err := json.Unmarshal(lines, &doc.Lines); err != nil {
		return nil, fmt.Errorf("decoding line items: %w", err)
	}

	return &doc, nil
}

func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*billing.Document, error) {
	query := `SELECT ` + selectDocumentColumns + ` FROM billing_documents d WHERE d.id = $1`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, billing.ErrNotFound
		}

		return nil, fmt.Errorf("getting document: %w", err)
	}

	return doc, nil
}

func (s *Store) ListDocuments(ctx context.Context, filter billing.ListFilter) ([]*billing.Document, error) {
	query := `SELECT ` + selectDocumentColumns + ` FROM billing_documents d WHERE d.store_id = $1`

	args := []any{filter.StoreID}

	argIdx := 2

	if filter.Type != nil {
		query += fmt.Sprintf(" AND d.doc_type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND d.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (d.document_number ILIKE '%%' || $%d || '%%' OR d.customer_name ILIKE '%%' || $%d || '%%')", argIdx, argIdx)

		args = append(args, filter.Search)
		argIdx++
	}

	query += " ORDER BY d.created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)

		args = append(args, filter.Limit)
		argIdx++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)

		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*billing.Document

	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}

	return docs, nil
}

func (s *Store) ListNumbers(ctx context.Context, storeID uuid.UUID, docType billing.DocType) ([]string, error) {
	query := `SELECT document_number FROM billing_documents WHERE store_id = $1 AND doc_type = $2`

	rows, err := s.db.QueryContext(ctx, query, storeID, docType)
	if err != nil {
		return nil, fmt.Errorf("listing numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string

	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning number: %w", err)
		}

		numbers = append(numbers, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating number rows: %w", err)
	}

	return numbers, nil
}

func (s *Store) UpdateDocument(ctx context.Context, doc *billing.Document) error {
	lines, err := json.Marshal(doc.Lines)
	if err != nil {
		return fmt.Errorf("encoding line items: %w", err)
	}

	query := `
		UPDATE billing_documents
		SET customer_name = $1, customer_company = $2, customer_email = $3, customer_phone = $4,
			customer_address = $5, customer_tax_id = $6,
			line_items = $7, net_amount = $8, vat_amount = $9, total = $10, margin_scheme = $11,
			valid_until = $12, notes = $13, updated_at = NOW()
		WHERE id = $14
	`

	res, err := s.db.ExecContext(ctx, query,
		doc.Customer.Name, doc.Customer.Company, doc.Customer.Email, doc.Customer.Phone,
		doc.Customer.Address, doc.Customer.TaxID,
		lines, doc.NetAmount, doc.VATAmount, doc.Total, doc.MarginScheme,
		doc.ValidUntil, doc.Notes, doc.ID,
	)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}

	return ensureFound(res)
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status billing.Status, method billing.PaymentMethod, paidAt *time.Time) error {
	query := `
		UPDATE billing_documents
		SET status = $1, payment_method = NULLIF($2, ''), paid_at = $3, updated_at = NOW()
		WHERE id = $4
	`

	res, err := s.db.ExecContext(ctx, query, status, string(method), paidAt, id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	return ensureFound(res)
}

func (s *Store) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM billing_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	return ensureFound(res)
}

func ensureFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return billing.ErrNotFound
	}

	return nil
}

// StoreLockKey derives the advisory lock key that serializes document
// issuance per store.
func StoreLockKey(storeID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("billing-issue"))
	h.Write([]byte{0})
	h.Write(storeID[:])

	return int64(h.Sum64())
}

type issueTx struct {
	tx *sql.Tx
}

func (s *Store) BeginIssue(ctx context.Context, storeID uuid.UUID) (billing.IssueTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning issue tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", StoreLockKey(storeID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring issue lock: %w", err)
	}

	return &issueTx{tx: dbTx}, nil
}

func (itx *issueTx) Commit() error   { return itx.tx.Commit() }
func (itx *issueTx) Rollback() error { return itx.tx.Rollback() }

func (itx *issueTx) NumberExists(ctx context.Context, storeID uuid.UUID, docType billing.DocType, number string) (bool, error) {
	return NumberExists(ctx, itx.tx, storeID, docType, number)
}

func (itx *issueTx) InsertDocument(ctx context.Context, doc *billing.Document) error {
	return InsertDocument(ctx, itx.tx, doc)
}

func (itx *issueTx) SetNextNumber(ctx context.Context, storeID uuid.UUID, docType billing.DocType, next int) error {
	return SetNextNumber(ctx, itx.tx, storeID, docType, next)
}

// NumberExists checks a document number inside an open transaction. The order
// completion transaction reuses it, so issuance from either path sees the
// same uniqueness scope.
func NumberExists(ctx context.Context, tx *sql.Tx, storeID uuid.UUID, docType billing.DocType, number string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM billing_documents WHERE store_id = $1 AND doc_type = $2 AND document_number = $3
	)`

	var exists bool
	if err := tx.QueryRowContext(ctx, query, storeID, docType, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking number: %w", err)
	}

	return exists, nil
}

// InsertDocument persists a document inside an open transaction.
func InsertDocument(ctx context.Context, tx *sql.Tx, doc *billing.Document) error {
	lines, err := json.Marshal(doc.Lines)
	if err != nil {
		return fmt.Errorf("encoding line items: %w", err)
	}

	query := `
		INSERT INTO billing_documents (
			store_id, doc_type, document_number,
			customer_name, customer_company, customer_email, customer_phone, customer_address, customer_tax_id,
			line_items, net_amount, vat_amount, total, vat_rate, vat_exempt, margin_scheme,
			status, valid_until, paid_at, payment_method, notes, order_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, NULLIF($20, ''), $21, $22, COALESCE($23, NOW()), NOW())
		RETURNING id, created_at, updated_at
	`

	var createdAt *time.Time
	if !doc.CreatedAt.IsZero() {
		createdAt = &doc.CreatedAt
	}

	err = tx.QueryRowContext(ctx, query,
		doc.StoreID, doc.Type, doc.Number,
		doc.Customer.Name, doc.Customer.Company, doc.Customer.Email, doc.Customer.Phone, doc.Customer.Address, doc.Customer.TaxID,
		lines, doc.NetAmount, doc.VATAmount, doc.Total, doc.VATRate, doc.VATExempt, doc.MarginScheme,
		doc.Status, doc.ValidUntil, doc.PaidAt, string(doc.PaymentMethod), doc.Notes, doc.OrderID, createdAt,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	return nil
}

// SetNextNumber bumps a store's advisory counter for one document type.
func SetNextNumber(ctx context.Context, tx *sql.Tx, storeID uuid.UUID, docType billing.DocType, next int) error {
	var column string

	switch docType {
	case billing.DocTypeQuote:
		column = "quote_next_number"
	case billing.DocTypePurchase:
		column = "purchase_next_number"
	default:
		column = "invoice_next_number"
	}

	query := fmt.Sprintf("UPDATE stores SET %s = $1, updated_at = NOW() WHERE id = $2", column)

	if _, err := tx.ExecContext(ctx, query, next, storeID); err != nil {
		return fmt.Errorf("setting next number: %w", err)
	}

	return nil
}
