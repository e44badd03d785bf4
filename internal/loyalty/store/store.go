package store

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/tobiaswld/werkstatt/internal/loyalty"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Balance(ctx context.Context, customerID, storeID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(SUM(points), 0)
		FROM loyalty_credits
		WHERE customer_id = $1 AND store_id = $2
	`

	var balance int
	if err := s.db.QueryRowContext(ctx, query, customerID, storeID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("summing points: %w", err)
	}

	return balance, nil
}

func (s *Store) CreditPoints(ctx context.Context, credit *loyalty.Credit) error {
	query := `
		INSERT INTO loyalty_credits (customer_id, store_id, points, reason, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		credit.CustomerID, credit.StoreID, credit.Points, credit.Reason,
	).Scan(&credit.ID, &credit.CreatedAt)
	if err != nil {
		return fmt.Errorf("crediting points: %w", err)
	}

	return nil
}

func (s *Store) ListRewards(ctx context.Context, storeID uuid.UUID) ([]*loyalty.Reward, error) {
	query := `
		SELECT id, store_id, kind, title, value, points_required
		FROM loyalty_rewards
		WHERE store_id = $1
		ORDER BY points_required ASC
	`

	rows, err := s.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("listing rewards: %w", err)
	}
	defer rows.Close()

	var rewards []*loyalty.Reward

	for rows.Next() {
		var (
			r    loyalty.Reward
			kind string
		)

		if err := rows.Scan(&r.ID, &r.StoreID, &kind, &r.Title, &r.Value, &r.PointsRequired); err != nil {
			return nil, fmt.Errorf("scanning reward: %w", err)
		}

		r.Kind = loyalty.RewardKind(kind)

		rewards = append(rewards, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reward rows: %w", err)
	}

	return rewards, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getDecision(ctx context.Context, q querier, orderID uuid.UUID) (*loyalty.Decision, error) {
	query := `
		SELECT order_id, approved, rejected, rejection_reason, points_required, decided_at
		FROM reward_decisions
		WHERE order_id = $1
	`

	var d loyalty.Decision

	err := q.QueryRowContext(ctx, query, orderID).Scan(
		&d.OrderID, &d.Approved, &d.Rejected, &d.RejectionReason, &d.PointsRequired, &d.DecidedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			// No decision recorded yet.
			return &loyalty.Decision{OrderID: orderID}, nil
		}

		return nil, fmt.Errorf("getting decision: %w", err)
	}

	return &d, nil
}

func (s *Store) GetDecision(ctx context.Context, orderID uuid.UUID) (*loyalty.Decision, error) {
	return getDecision(ctx, s.db, orderID)
}

func decisionLockKey(orderID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("reward-decision"))
	h.Write([]byte{0})
	h.Write(orderID[:])

	return int64(h.Sum64())
}

type decisionTx struct {
	tx      *sql.Tx
	orderID uuid.UUID
}

func (s *Store) BeginDecision(ctx context.Context, orderID uuid.UUID) (loyalty.DecisionTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning decision tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", decisionLockKey(orderID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring decision lock: %w", err)
	}

	return &decisionTx{tx: dbTx, orderID: orderID}, nil
}

func (dtx *decisionTx) Commit() error   { return dtx.tx.Commit() }
func (dtx *decisionTx) Rollback() error { return dtx.tx.Rollback() }

func (dtx *decisionTx) Decision(ctx context.Context) (*loyalty.Decision, error) {
	return getDecision(ctx, dtx.tx, dtx.orderID)
}

func (dtx *decisionTx) Save(ctx context.Context, d *loyalty.Decision) error {
	query := `
		INSERT INTO reward_decisions (order_id, approved, rejected, rejection_reason, points_required, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (order_id) DO UPDATE
		SET approved = EXCLUDED.approved,
			rejected = EXCLUDED.rejected,
			rejection_reason = EXCLUDED.rejection_reason,
			points_required = EXCLUDED.points_required,
			decided_at = EXCLUDED.decided_at
	`

	_, err := dtx.tx.ExecContext(ctx, query,
		d.OrderID, d.Approved, d.Rejected, d.RejectionReason, d.PointsRequired, d.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("saving decision: %w", err)
	}

	return nil
}
