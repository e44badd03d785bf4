package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tobiaswld/werkstatt/internal/customer"
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

const selectCustomerColumns = `
	c.id, c.store_id, c.name, c.company, c.email, c.phone, c.address, c.tax_id, c.notes,
	c.created_at, c.updated_at
`

func scanCustomer(s scanner) (*customer.Customer, error) {
	var c customer.Customer

	if err := s.Scan(
		&c.ID, &c.StoreID, &c.Name, &c.Company, &c.Email, &c.Phone, &c.Address, &c.TaxID, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (store_id, name, company, email, phone, address, tax_id, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.StoreID, c.Name, c.Company, c.Email, c.Phone, c.Address, c.TaxID, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating customer: %w", err)
	}

	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers c WHERE c.id = $1`

	c, err := scanCustomer(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, customer.ErrNotFound
		}

		return nil, fmt.Errorf("getting customer: %w", err)
	}

	return c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, company = $2, email = $3, phone = $4, address = $5, tax_id = $6, notes = $7, updated_at = NOW()
		WHERE id = $8
	`

	res, err := s.db.ExecContext(ctx, query,
		c.Name, c.Company, c.Email, c.Phone, c.Address, c.TaxID, c.Notes, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating customer: %w", err)
	}

	return ensureFound(res)
}

func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}

	return ensureFound(res)
}

func ensureFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return customer.ErrNotFound
	}

	return nil
}

func (s *Store) ListCustomers(ctx context.Context, filter customer.ListFilter) ([]*customer.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers c WHERE c.store_id = $1`

	args := []any{filter.StoreID}

	argIdx := 2

	if filter.Search != "" {
		query += fmt.Sprintf(
			" AND (c.name ILIKE '%%' || $%d || '%%' OR c.company ILIKE '%%' || $%d || '%%' OR c.email ILIKE '%%' || $%d || '%%')",
			argIdx, argIdx, argIdx,
		)

		args = append(args, filter.Search)
		argIdx++
	}

	query += " ORDER BY c.name ASC"

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
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var customers []*customer.Customer

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}

		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customer rows: %w", err)
	}

	return customers, nil
}

// ListDerived surfaces the contact snapshots of orders that are not linked to
// a customer record yet.
func (s *Store) ListDerived(ctx context.Context, storeID uuid.UUID) ([]*customer.Derived, error) {
	query := `
		SELECT o.id, o.store_id, o.contact_name, o.contact_email, o.contact_phone, o.contact_address, o.created_at
		FROM repair_orders o
		WHERE o.store_id = $1 AND o.customer_id IS NULL
		ORDER BY o.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("listing derived customers: %w", err)
	}
	defer rows.Close()

	var derived []*customer.Derived

	for rows.Next() {
		var d customer.Derived

		if err := rows.Scan(&d.OrderID, &d.StoreID, &d.Name, &d.Email, &d.Phone, &d.Address, &d.FiledAt); err != nil {
			return nil, fmt.Errorf("scanning derived customer: %w", err)
		}

		derived = append(derived, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating derived rows: %w", err)
	}

	return derived, nil
}

// PromoteOrder creates a customer from an order's contact snapshot and links
// the order, in one transaction.
func (s *Store) PromoteOrder(ctx context.Context, orderID uuid.UUID) (*customer.Customer, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning promotion tx: %w", err)
	}
	defer dbTx.Rollback()

	var (
		c          customer.Customer
		customerID *uuid.UUID
	)

	lockQuery := `
		SELECT store_id, customer_id, contact_name, contact_email, contact_phone, contact_address
		FROM repair_orders
		WHERE id = $1
		FOR UPDATE
	`

	err = dbTx.QueryRowContext(ctx, lockQuery, orderID).Scan(
		&c.StoreID, &customerID, &c.Name, &c.Email, &c.Phone, &c.Address,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, customer.ErrNotFound
		}

		return nil, fmt.Errorf("locking order: %w", err)
	}

	if customerID != nil {
		return nil, customer.ErrAlreadyPromoted
	}

	insertQuery := `
		INSERT INTO customers (store_id, name, company, email, phone, address, tax_id, notes, created_at, updated_at)
		VALUES ($1, $2, '', $3, $4, $5, '', '', NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = dbTx.QueryRowContext(ctx, insertQuery,
		c.StoreID, c.Name, c.Email, c.Phone, c.Address,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}

	linkQuery := `
		UPDATE repair_orders
		SET customer_id = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2
	`

	if _, err := dbTx.ExecContext(ctx, linkQuery, c.ID, orderID); err != nil {
		return nil, fmt.Errorf("linking order: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing promotion: %w", err)
	}

	return &c, nil
}
