package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/tobiaswld/werkstatt/internal/billing"
	billingstore "github.com/tobiaswld/werkstatt/internal/billing/store"
	"github.com/tobiaswld/werkstatt/internal/order"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectOrderColumns = `
	o.id, o.store_id, o.customer_id,
	o.contact_name, o.contact_email, o.contact_phone, o.contact_address,
	o.device_brand, o.device_model, o.device_identifier, o.device_unlock_code, o.device_attachments,
	o.problem, o.status, o.final_cost, o.line_items, o.version,
	o.created_at, o.updated_at
`

func scanOrder(s scanner) (*order.Order, error) {
	var o order.Order

	var (
		statusStr   string
		attachments []byte
		lines       []byte
	)

	if err := s.Scan(
		&o.ID, &o.StoreID, &o.CustomerID,
		&o.Contact.Name, &o.Contact.Email, &o.Contact.Phone, &o.Contact.Address,
		&o.Device.Brand, &o.Device.Model, &o.Device.Identifier, &o.Device.UnlockCode, &attachments,
		&o.Problem, &statusStr, &o.FinalCost, &lines, &o.Version,
		&o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	o.Status = order.Status(statusStr)

	if err := json.Unmarshal(attachments, &o.Device.Attachments); err != nil {
		return nil, fmt.Errorf("decoding attachments: %w", err)
	}

	if lines != nil {
		if err := json.Unmarshal(lines, &o.LineItems); err != nil {
			return nil, fmt.Errorf("decoding line items: %w", err)
		}
	}

	return &o, nil
}

func (s *Store) CreateOrder(ctx context.Context, o *order.Order) error {
	attachments, err := json.Marshal(orEmpty(o.Device.Attachments))
	if err != nil {
		return fmt.Errorf("encoding attachments: %w", err)
	}

	query := `
		INSERT INTO repair_orders (
			store_id, customer_id,
			contact_name, contact_email, contact_phone, contact_address,
			device_brand, device_model, device_identifier, device_unlock_code, device_attachments,
			problem, status, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1, NOW(), NOW())
		RETURNING id, version, created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		o.StoreID, o.CustomerID,
		o.Contact.Name, o.Contact.Email, o.Contact.Phone, o.Contact.Address,
		o.Device.Brand, o.Device.Model, o.Device.Identifier, o.Device.UnlockCode, attachments,
		o.Problem, o.Status,
	).Scan(&o.ID, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}

	return nil
}

func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}

	return ss
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + ` FROM repair_orders o WHERE o.id = $1`

	o, err := scanOrder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, order.ErrNotFound
		}

		return nil, fmt.Errorf("getting order: %w", err)
	}

	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + ` FROM repair_orders o WHERE o.store_id = $1`

	args := []any{filter.StoreID}

	argIdx := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND o.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(
			" AND (o.contact_name ILIKE '%%' || $%d || '%%' OR o.contact_email ILIKE '%%' || $%d || '%%' OR o.device_model ILIKE '%%' || $%d || '%%')",
			argIdx, argIdx, argIdx,
		)

		args = append(args, filter.Search)
		argIdx++
	}

	query += " ORDER BY o.created_at DESC"

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
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, nil
}

func (s *Store) UpdateOrder(ctx context.Context, o *order.Order) error {
	attachments, err := json.Marshal(orEmpty(o.Device.Attachments))
	if err != nil {
		return fmt.Errorf("encoding attachments: %w", err)
	}

	query := `
		UPDATE repair_orders
		SET customer_id = $1,
			contact_name = $2, contact_email = $3, contact_phone = $4, contact_address = $5,
			device_brand = $6, device_model = $7, device_identifier = $8, device_unlock_code = $9,
			device_attachments = $10, problem = $11,
			version = version + 1, updated_at = NOW()
		WHERE id = $12 AND version = $13
	`

	res, err := s.db.ExecContext(ctx, query,
		o.CustomerID,
		o.Contact.Name, o.Contact.Email, o.Contact.Phone, o.Contact.Address,
		o.Device.Brand, o.Device.Model, o.Device.Identifier, o.Device.UnlockCode,
		attachments, o.Problem,
		o.ID, o.Version,
	)
	if err != nil {
		return fmt.Errorf("updating order: %w", err)
	}

	if err := s.versionedOutcome(ctx, res, o.ID); err != nil {
		return err
	}

	o.Version++

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status, version int) error {
	query := `
		UPDATE repair_orders
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`

	res, err := s.db.ExecContext(ctx, query, status, id, version)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	return s.versionedOutcome(ctx, res, id)
}

func (s *Store) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM repair_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return order.ErrNotFound
	}

	return nil
}

// versionedOutcome turns a zero-row version-checked update into the right
// error: the order may be gone, or another writer won the race.
func (s *Store) versionedOutcome(ctx context.Context, res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n > 0 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM repair_orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking order: %w", err)
	}

	if exists {
		return order.ErrConflict
	}

	return order.ErrNotFound
}

type completeTx struct {
	tx *sql.Tx
}

// BeginComplete opens the completion transaction under the store's issue
// lock, the same lock document creation takes, so the invoice number
// assignment is serialized across both paths.
func (s *Store) BeginComplete(ctx context.Context, storeID uuid.UUID) (order.CompleteTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning completion tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", billingstore.StoreLockKey(storeID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring issue lock: %w", err)
	}

	return &completeTx{tx: dbTx}, nil
}

func (c *completeTx) Commit() error   { return c.tx.Commit() }
func (c *completeTx) Rollback() error { return c.tx.Rollback() }

func (c *completeTx) CompleteOrder(ctx context.Context, id uuid.UUID, version int, finalCost int64, lines []billing.LineItem) error {
	encoded, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encoding line items: %w", err)
	}

	query := `
		UPDATE repair_orders
		SET status = $1, final_cost = $2, line_items = $3, version = version + 1, updated_at = NOW()
		WHERE id = $4 AND version = $5 AND status NOT IN ($6, $7, $8)
	`

	res, err := c.tx.ExecContext(ctx, query,
		order.StatusDone, finalCost, encoded,
		id, version, order.StatusDone, order.StatusDelivered, order.StatusCancelled,
	)
	if err != nil {
		return fmt.Errorf("completing order: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n > 0 {
		return nil
	}

	var exists bool
	if err := c.tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM repair_orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking order: %w", err)
	}

	if exists {
		return order.ErrConflict
	}

	return order.ErrNotFound
}

func (c *completeTx) NumberExists(ctx context.Context, storeID uuid.UUID, docType billing.DocType, number string) (bool, error) {
	return billingstore.NumberExists(ctx, c.tx, storeID, docType, number)
}

func (c *completeTx) InsertDocument(ctx context.Context, doc *billing.Document) error {
	return billingstore.InsertDocument(ctx, c.tx, doc)
}

func (c *completeTx) SetNextNumber(ctx context.Context, storeID uuid.UUID, docType billing.DocType, next int) error {
	return billingstore.SetNextNumber(ctx, c.tx, storeID, docType, next)
}
