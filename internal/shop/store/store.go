package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/tobiaswld/werkstatt/internal/billing"
	"github.com/tobiaswld/werkstatt/internal/loyalty"
	"github.com/tobiaswld/werkstatt/internal/order"
	"github.com/tobiaswld/werkstatt/internal/shop"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectShopColumns = `
	s.id, s.name,
	s.invoice_prefix, s.invoice_next_number,
	s.quote_prefix, s.quote_next_number,
	s.purchase_prefix, s.purchase_next_number,
	s.vat_enabled, s.vat_rate, s.notify_set,
	s.created_at, s.updated_at
`

func (s *Store) GetShop(ctx context.Context, id uuid.UUID) (*shop.Shop, error) {
	query := `SELECT ` + selectShopColumns + ` FROM stores s WHERE s.id = $1`

	var (
		sh        shop.Shop
		notifySet []byte
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sh.ID, &sh.Name,
		&sh.Billing.Invoice.Prefix, &sh.Billing.Invoice.NextNumber,
		&sh.Billing.Quote.Prefix, &sh.Billing.Quote.NextNumber,
		&sh.Billing.Purchase.Prefix, &sh.Billing.Purchase.NextNumber,
		&sh.Billing.VATEnabled, &sh.Billing.VATRate, &notifySet,
		&sh.CreatedAt, &sh.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shop.ErrNotFound
		}

		return nil, fmt.Errorf("getting store: %w", err)
	}

	if err := json.Unmarshal(notifySet, &sh.NotifySet); err != nil {
		return nil, fmt.Errorf("decoding notify-set: %w", err)
	}

	return &sh, nil
}

func (s *Store) UpsertShop(ctx context.Context, sh *shop.Shop) error {
	notifySet, err := json.Marshal(orEmpty(sh.NotifySet))
	if err != nil {
		return fmt.Errorf("encoding notify-set: %w", err)
	}

	query := `
		INSERT INTO stores (
			id, name,
			invoice_prefix, invoice_next_number,
			quote_prefix, quote_next_number,
			purchase_prefix, purchase_next_number,
			vat_enabled, vat_rate, notify_set, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			invoice_prefix = EXCLUDED.invoice_prefix,
			invoice_next_number = EXCLUDED.invoice_next_number,
			quote_prefix = EXCLUDED.quote_prefix,
			quote_next_number = EXCLUDED.quote_next_number,
			purchase_prefix = EXCLUDED.purchase_prefix,
			purchase_next_number = EXCLUDED.purchase_next_number,
			vat_enabled = EXCLUDED.vat_enabled,
			vat_rate = EXCLUDED.vat_rate,
			notify_set = EXCLUDED.notify_set,
			updated_at = NOW()
	`

	_, err = s.db.ExecContext(ctx, query,
		sh.ID, sh.Name,
		sh.Billing.Invoice.Prefix, sh.Billing.Invoice.NextNumber,
		sh.Billing.Quote.Prefix, sh.Billing.Quote.NextNumber,
		sh.Billing.Purchase.Prefix, sh.Billing.Purchase.NextNumber,
		sh.Billing.VATEnabled, sh.Billing.VATRate, notifySet,
	)
	if err != nil {
		return fmt.Errorf("upserting store: %w", err)
	}

	return nil
}

func orEmpty(set []order.Status) []order.Status {
	if set == nil {
		return []order.Status{}
	}

	return set
}

func (s *Store) UpdateBillingConfig(ctx context.Context, id uuid.UUID, cfg billing.StoreConfig) error {
	query := `
		UPDATE stores
		SET invoice_prefix = $1, invoice_next_number = $2,
			quote_prefix = $3, quote_next_number = $4,
			purchase_prefix = $5, purchase_next_number = $6,
			vat_enabled = $7, vat_rate = $8, updated_at = NOW()
		WHERE id = $9
	`

	res, err := s.db.ExecContext(ctx, query,
		cfg.Invoice.Prefix, cfg.Invoice.NextNumber,
		cfg.Quote.Prefix, cfg.Quote.NextNumber,
		cfg.Purchase.Prefix, cfg.Purchase.NextNumber,
		cfg.VATEnabled, cfg.VATRate, id,
	)
	if err != nil {
		return fmt.Errorf("updating billing config: %w", err)
	}

	return ensureFound(res)
}

func (s *Store) UpdateNotifySet(ctx context.Context, id uuid.UUID, set []order.Status) error {
	notifySet, err := json.Marshal(orEmpty(set))
	if err != nil {
		return fmt.Errorf("encoding notify-set: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE stores SET notify_set = $1, updated_at = NOW() WHERE id = $2`, notifySet, id)
	if err != nil {
		return fmt.Errorf("updating notify-set: %w", err)
	}

	return ensureFound(res)
}

func ensureFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return shop.ErrNotFound
	}

	return nil
}

func (s *Store) ReplaceRewards(ctx context.Context, storeID uuid.UUID, rewards []loyalty.Reward) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning rewards tx: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM loyalty_rewards WHERE store_id = $1`, storeID); err != nil {
		return fmt.Errorf("clearing rewards: %w", err)
	}

	query := `
		INSERT INTO loyalty_rewards (store_id, kind, title, value, points_required)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, r := range rewards {
		if _, err := dbTx.ExecContext(ctx, query, storeID, r.Kind, r.Title, r.Value, r.PointsRequired); err != nil {
			return fmt.Errorf("inserting reward %q: %w", r.Title, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing rewards: %w", err)
	}

	return nil
}

// BillingConfig satisfies the billing config source consumed by the document
// and order services.
func (s *Store) BillingConfig(ctx context.Context, storeID uuid.UUID) (*billing.StoreConfig, error) {
	sh, err := s.GetShop(ctx, storeID)
	if err != nil {
		return nil, err
	}

	return &sh.Billing, nil
}

// NotifySet satisfies the order service's notify policy.
func (s *Store) NotifySet(ctx context.Context, storeID uuid.UUID) ([]order.Status, error) {
	sh, err := s.GetShop(ctx, storeID)
	if err != nil {
		return nil, err
	}

	return sh.NotifySet, nil
}
