package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sylveur65/Projet-goodyfans-sub000/internal/domain/enums"
	modsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/moderation"
)

type ModerationRepo struct {
	pool *pgxpool.Pool
}

func NewModerationRepo(pool *pgxpool.Pool) *ModerationRepo {
	return &ModerationRepo{pool: pool}
}

const moderationColumns = `
id, content_id, content_kind, status, confidence, categories, flags, reason,
review_decision, review_note, reviewer_id, reviewed_at, created_at, updated_at`

// Upsert inserts or atomically replaces the automated result for one content
// item. The conflict target (content_id, content_kind) guarantees a single
// record per item; on re-moderation the row keeps its id and created_at and
// any stale human review is cleared, since it no longer explains the stored
// result.
func (r *ModerationRepo) Upsert(ctx context.Context, record modsvc.Record) (modsvc.Record, error) {
	if r.pool == nil {
		return modsvc.Record{}, fmt.Errorf("postgres pool is nil")
	}
	if record.ContentID <= 0 || record.ContentKind == "" {
		return modsvc.Record{}, modsvc.ErrValidation
	}

	categories, err := json.Marshal(record.Categories)
	if err != nil {
		return modsvc.Record{}, fmt.Errorf("encode categories: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO moderation_records (
	id,
	content_id,
	content_kind,
	status,
	confidence,
	categories,
	flags,
	reason,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
ON CONFLICT (content_id, content_kind) DO UPDATE SET
	status = EXCLUDED.status,
	confidence = EXCLUDED.confidence,
	categories = EXCLUDED.categories,
	flags = EXCLUDED.flags,
	reason = EXCLUDED.reason,
	review_decision = NULL,
	review_note = NULL,
	reviewer_id = NULL,
	reviewed_at = NULL,
	updated_at = NOW()
RETURNING `+moderationColumns,
		record.ID,
		record.ContentID,
		string(record.ContentKind),
		string(record.Status),
		record.Confidence,
		categories,
		record.Flags,
		record.Reason,
	)

	stored, err := scanModerationRecord(row)
	if err != nil {
		return modsvc.Record{}, fmt.Errorf("upsert moderation record: %w", err)
	}

	return stored, nil
}

func (r *ModerationRepo) GetByID(ctx context.Context, id string) (modsvc.Record, error) {
	if r.pool == nil {
		return modsvc.Record{}, fmt.Errorf("postgres pool is nil")
	}
	if id == "" {
		return modsvc.Record{}, modsvc.ErrValidation
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+moderationColumns+`
FROM moderation_records
WHERE id = $1
LIMIT 1
`, id)

	record, err := scanModerationRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return modsvc.Record{}, modsvc.ErrRecordNotFound
		}
		return modsvc.Record{}, fmt.Errorf("query moderation record: %w", err)
	}

	return record, nil
}

func (r *ModerationRepo) GetByContent(ctx context.Context, contentID int64, kind enums.ContentKind) (modsvc.Record, error) {
	if r.pool == nil {
		return modsvc.Record{}, fmt.Errorf("postgres pool is nil")
	}
	if contentID <= 0 {
		return modsvc.Record{}, modsvc.ErrValidation
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+moderationColumns+`
FROM moderation_records
WHERE content_id = $1 AND content_kind = $2
LIMIT 1
`, contentID, string(kind))

	record, err := scanModerationRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return modsvc.Record{}, modsvc.ErrRecordNotFound
		}
		return modsvc.Record{}, fmt.Errorf("query moderation record by content: %w", err)
	}

	return record, nil
}

// SetHumanReview transitions a record that still awaits a decision. The
// status guard lives in the WHERE clause so a concurrent auto-decision
// cannot be overwritten through this path.
func (r *ModerationRepo) SetHumanReview(ctx context.Context, id string, status enums.ModerationStatus, review modsvc.HumanReview) (modsvc.Record, error) {
	if r.pool == nil {
		return modsvc.Record{}, fmt.Errorf("postgres pool is nil")
	}
	if id == "" {
		return modsvc.Record{}, modsvc.ErrValidation
	}

	row := r.pool.QueryRow(ctx, `
UPDATE moderation_records
SET
	status = $2,
	review_decision = $3,
	review_note = NULLIF($4, ''),
	reviewer_id = $5,
	reviewed_at = $6,
	updated_at = NOW()
WHERE id = $1 AND status IN ('pending', 'reviewing')
RETURNING `+moderationColumns,
		id,
		string(status),
		review.Decision,
		review.Note,
		review.ReviewerID,
		review.ReviewedAt,
	)

	record, err := scanModerationRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return modsvc.Record{}, modsvc.ErrInvalidTransition
			}
			return modsvc.Record{}, modsvc.ErrRecordNotFound
		}
		return modsvc.Record{}, fmt.Errorf("set human review: %w", err)
	}

	return record, nil
}

func (r *ModerationRepo) ListByStatus(ctx context.Context, status enums.ModerationStatus, limit int) ([]modsvc.Record, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+moderationColumns+`
FROM moderation_records
WHERE status = $1
ORDER BY created_at ASC, id ASC
LIMIT $2
`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list moderation records: %w", err)
	}
	defer rows.Close()

	records := make([]modsvc.Record, 0, limit)
	for rows.Next() {
		record, err := scanModerationRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan moderation record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moderation records: %w", err)
	}

	return records, nil
}

func (r *ModerationRepo) Stats(ctx context.Context) (modsvc.Stats, error) {
	if r.pool == nil {
		return modsvc.Stats{}, fmt.Errorf("postgres pool is nil")
	}

	var stats modsvc.Stats
	err := r.pool.QueryRow(ctx, `
SELECT
	COUNT(*),
	COUNT(*) FILTER (WHERE status = 'approved'),
	COUNT(*) FILTER (WHERE status = 'rejected'),
	COUNT(*) FILTER (WHERE status = 'pending'),
	COUNT(*) FILTER (WHERE status = 'reviewing'),
	COUNT(*) FILTER (WHERE status = 'approved' AND review_decision IS NULL),
	COUNT(*) FILTER (WHERE status = 'rejected' AND review_decision IS NULL)
FROM moderation_records
`).Scan(
		&stats.Total,
		&stats.Approved,
		&stats.Rejected,
		&stats.Pending,
		&stats.Reviewing,
		&stats.AutoApproved,
		&stats.AutoRejected,
	)
	if err != nil {
		return modsvc.Stats{}, fmt.Errorf("count moderation records: %w", err)
	}

	return stats, nil
}

func scanModerationRecord(row pgx.Row) (modsvc.Record, error) {
	var (
		record         modsvc.Record
		kind           string
		status         string
		categoriesRaw  []byte
		reviewDecision *string
		reviewNote     *string
		reviewerID     *int64
		reviewedAt     *time.Time
	)

	err := row.Scan(
		&record.ID,
		&record.ContentID,
		&kind,
		&status,
		&record.Confidence,
		&categoriesRaw,
		&record.Flags,
		&record.Reason,
		&reviewDecision,
		&reviewNote,
		&reviewerID,
		&reviewedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return modsvc.Record{}, err
	}

	record.ContentKind = enums.ContentKind(kind)
	record.Status = enums.ModerationStatus(status)

	if len(categoriesRaw) > 0 {
		if err := json.Unmarshal(categoriesRaw, &record.Categories); err != nil {
			return modsvc.Record{}, fmt.Errorf("decode categories: %w", err)
		}
	}

	if reviewDecision != nil {
		review := modsvc.HumanReview{Decision: *reviewDecision}
		if reviewNote != nil {
			review.Note = *reviewNote
		}
		if reviewerID != nil {
			review.ReviewerID = *reviewerID
		}
		if reviewedAt != nil {
			review.ReviewedAt = *reviewedAt
		}
		record.Review = &review
	}

	return record, nil
}
