package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPurchaseNotFound = errors.New("purchase not found")

type PurchaseRepo struct {
	pool *pgxpool.Pool
}

type PurchaseRecord struct {
	ID         int64
	BuyerID    int64
	ContentID  int64
	PriceCents int64
	CreatedAt  time.Time
}

func NewPurchaseRepo(pool *pgxpool.Pool) *PurchaseRepo {
	return &PurchaseRepo{pool: pool}
}

// Create is idempotent per (buyer, content): buying the same item twice
// returns the original purchase instead of a duplicate row.
func (r *PurchaseRepo) Create(ctx context.Context, buyerID, contentID, priceCents int64) (PurchaseRecord, error) {
	if r.pool == nil {
		return PurchaseRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if buyerID <= 0 || contentID <= 0 {
		return PurchaseRecord{}, fmt.Errorf("invalid purchase payload")
	}

	var record PurchaseRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO purchases (buyer_id, content_id, price_cents, created_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (buyer_id, content_id) DO UPDATE SET buyer_id = EXCLUDED.buyer_id
RETURNING id, buyer_id, content_id, price_cents, created_at
`, buyerID, contentID, priceCents).Scan(
		&record.ID,
		&record.BuyerID,
		&record.ContentID,
		&record.PriceCents,
		&record.CreatedAt,
	)
	if err != nil {
		return PurchaseRecord{}, fmt.Errorf("create purchase: %w", err)
	}

	return record, nil
}

func (r *PurchaseRepo) HasAccess(ctx context.Context, buyerID, contentID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if buyerID <= 0 || contentID <= 0 {
		return false, nil
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM purchases WHERE buyer_id = $1 AND content_id = $2
)
`, buyerID, contentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check purchase access: %w", err)
	}

	return exists, nil
}

func (r *PurchaseRepo) ListByBuyer(ctx context.Context, buyerID int64) ([]PurchaseRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if buyerID <= 0 {
		return nil, fmt.Errorf("invalid buyer id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, buyer_id, content_id, price_cents, created_at
FROM purchases
WHERE buyer_id = $1
ORDER BY created_at DESC, id DESC
`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	records := make([]PurchaseRecord, 0)
	for rows.Next() {
		var record PurchaseRecord
		if err := rows.Scan(
			&record.ID,
			&record.BuyerID,
			&record.ContentID,
			&record.PriceCents,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}

	return records, nil
}

func (r *PurchaseRepo) GetByID(ctx context.Context, id int64) (PurchaseRecord, error) {
	if r.pool == nil {
		return PurchaseRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return PurchaseRecord{}, fmt.Errorf("invalid purchase id")
	}

	var record PurchaseRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, buyer_id, content_id, price_cents, created_at
FROM purchases
WHERE id = $1
LIMIT 1
`, id).Scan(
		&record.ID,
		&record.BuyerID,
		&record.ContentID,
		&record.PriceCents,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseRecord{}, ErrPurchaseNotFound
		}
		return PurchaseRecord{}, fmt.Errorf("query purchase: %w", err)
	}

	return record, nil
}
