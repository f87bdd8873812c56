package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sylveur65/Projet-goodyfans-sub000/internal/domain/enums"
)

var ErrContentNotFound = errors.New("content item not found")

type ContentRepo struct {
	pool *pgxpool.Pool
}

type ContentRecord struct {
	ID          int64
	OwnerID     int64
	Kind        enums.ContentKind
	Title       string
	Description string
	PriceCents  int64
	ObjectKey   string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewContentRepo(pool *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

const contentColumns = `
id, owner_id, kind, title, description, price_cents, object_key, is_active, created_at, updated_at`

// Create inserts a content item in its inactive state; activation is gated
// on the moderation outcome.
func (r *ContentRepo) Create(ctx context.Context, record ContentRecord) (ContentRecord, error) {
	if r.pool == nil {
		return ContentRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if record.OwnerID <= 0 {
		return ContentRecord{}, fmt.Errorf("invalid content payload")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO content_items (
	owner_id,
	kind,
	title,
	description,
	price_cents,
	object_key,
	is_active,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW(), NOW())
RETURNING `+contentColumns,
		record.OwnerID,
		string(record.Kind),
		record.Title,
		record.Description,
		record.PriceCents,
		record.ObjectKey,
	)

	created, err := scanContentRecord(row)
	if err != nil {
		return ContentRecord{}, fmt.Errorf("create content item: %w", err)
	}

	return created, nil
}

func (r *ContentRepo) GetByID(ctx context.Context, id int64) (ContentRecord, error) {
	if r.pool == nil {
		return ContentRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return ContentRecord{}, fmt.Errorf("invalid content id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+contentColumns+`
FROM content_items
WHERE id = $1
LIMIT 1
`, id)

	record, err := scanContentRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ContentRecord{}, ErrContentNotFound
		}
		return ContentRecord{}, fmt.Errorf("query content item: %w", err)
	}

	return record, nil
}

func (r *ContentRepo) ListByOwner(ctx context.Context, ownerID int64) ([]ContentRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if ownerID <= 0 {
		return nil, fmt.Errorf("invalid owner id")
	}

	return r.list(ctx, `
SELECT `+contentColumns+`
FROM content_items
WHERE owner_id = $1
ORDER BY created_at DESC, id DESC
`, ownerID)
}

// ListAll enumerates every content item for a bulk moderation re-scan.
func (r *ContentRepo) ListAll(ctx context.Context) ([]ContentRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	return r.list(ctx, `
SELECT `+contentColumns+`
FROM content_items
ORDER BY id ASC
`)
}

func (r *ContentRepo) SetActive(ctx context.Context, id int64, active bool) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid content id")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE content_items
SET is_active = $2, updated_at = NOW()
WHERE id = $1
`, id, active)
	if err != nil {
		return fmt.Errorf("update content active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContentNotFound
	}

	return nil
}

func (r *ContentRepo) list(ctx context.Context, query string, args ...any) ([]ContentRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content items: %w", err)
	}
	defer rows.Close()

	records := make([]ContentRecord, 0)
	for rows.Next() {
		record, err := scanContentRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content item: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content items: %w", err)
	}

	return records, nil
}

func scanContentRecord(row pgx.Row) (ContentRecord, error) {
	var (
		record ContentRecord
		kind   string
	)

	err := row.Scan(
		&record.ID,
		&record.OwnerID,
		&kind,
		&record.Title,
		&record.Description,
		&record.PriceCents,
		&record.ObjectKey,
		&record.IsActive,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return ContentRecord{}, err
	}

	record.Kind = enums.ContentKind(kind)
	return record, nil
}
