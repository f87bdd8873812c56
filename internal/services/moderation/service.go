package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sylveur65/Projet-goodyfans-sub000/internal/domain/enums"
)

const (
	ReviewDecisionApprove = "approve"
	ReviewDecisionReject  = "reject"
)

// RecordStore is the single source of truth for moderation status. Upsert
// must be atomic on (contentID, contentKind) so concurrent re-moderation of
// the same item converges to last-write-wins.
type RecordStore interface {
	Upsert(ctx context.Context, record Record) (Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
	GetByContent(ctx context.Context, contentID int64, kind enums.ContentKind) (Record, error)
	SetHumanReview(ctx context.Context, id string, status enums.ModerationStatus, review HumanReview) (Record, error)
	ListByStatus(ctx context.Context, status enums.ModerationStatus, limit int) ([]Record, error)
	Stats(ctx context.Context) (Stats, error)
}

// ContentRef is the collaborator-owned handle to a moderatable item.
type ContentRef struct {
	ContentID int64
	Kind      enums.ContentKind
	Payload   string
}

// ContentSource enumerates existing content for bulk re-scans.
type ContentSource interface {
	ListForModeration(ctx context.Context) ([]ContentRef, error)
}

// StatsCache is an optional read-through cache for dashboard stats.
type StatsCache interface {
	Get(ctx context.Context) (Stats, bool)
	Set(ctx context.Context, stats Stats)
	Invalidate(ctx context.Context)
}

type Service struct {
	store      RecordStore
	classifier *Classifier
	contents   ContentSource
	statsCache StatsCache
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(store RecordStore, classifier *Classifier, contents ContentSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		classifier: classifier,
		contents:   contents,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) AttachStatsCache(cache StatsCache) {
	s.statsCache = cache
}

// AttachContentSource wires the collaborator that enumerates items for bulk
// re-scans. Attached late because the content service itself depends on
// this service.
func (s *Service) AttachContentSource(contents ContentSource) {
	s.contents = contents
}

// ModerateOne runs the full pipeline for a single content item and upserts
// the moderation record. Re-invoking it for the same content re-evaluates
// from scratch and overwrites the previous automated result. Classification
// can never fail; the only hard failure is the record write.
func (s *Service) ModerateOne(ctx context.Context, contentID int64, kind enums.ContentKind, payload string) (Record, error) {
	if contentID <= 0 {
		return Record{}, ErrValidation
	}
	if _, ok := enums.ParseContentKind(string(kind)); !ok {
		return Record{}, ErrValidation
	}
	if s.store == nil || s.classifier == nil {
		return Record{}, fmt.Errorf("moderation service dependencies are not configured")
	}

	result := s.classifier.Classify(ctx, kind, payload)

	flags := NormalizeFlags(result.Flags)
	signals := SignalsFromFlags(flags)
	adjusted := AdjustForContext(result.Categories, signals)
	decision := decideAdjusted(adjusted, signals)

	switch {
	case decision.Approved:
		flags = append(flags, FlagAutoApproved)
	case !decision.RequiresHumanReview:
		flags = append(flags, FlagAutoRejected)
	}

	now := s.now().UTC()
	record := Record{
		ID:          uuid.NewString(),
		ContentID:   contentID,
		ContentKind: kind,
		Status:      decision.Status(),
		Confidence:  decision.Confidence,
		Categories:  adjusted,
		Flags:       NormalizeFlags(flags),
		Reason:      decision.Reason,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	stored, err := s.store.Upsert(ctx, record)
	if err != nil {
		return Record{}, fmt.Errorf("upsert moderation record: %w", err)
	}

	s.invalidateStats(ctx)

	s.logger.Debug("content moderated",
		zap.Int64("content_id", contentID),
		zap.String("kind", string(kind)),
		zap.String("status", string(stored.Status)),
		zap.String("reason", stored.Reason),
	)

	return stored, nil
}

// SubmitHumanReview applies a manual decision to a record still awaiting
// one. Terminal records are left untouched: re-moderation is the only way to
// change an auto-decided outcome.
func (s *Service) SubmitHumanReview(ctx context.Context, moderationID string, decision, note string, reviewerID int64) (Record, error) {
	decision = strings.ToLower(strings.TrimSpace(decision))
	if decision != ReviewDecisionApprove && decision != ReviewDecisionReject {
		return Record{}, ErrValidation
	}
	if strings.TrimSpace(moderationID) == "" {
		return Record{}, ErrValidation
	}
	if s.store == nil {
		return Record{}, fmt.Errorf("moderation service dependencies are not configured")
	}

	record, err := s.store.GetByID(ctx, moderationID)
	if err != nil {
		return Record{}, err
	}
	if !record.Status.AwaitsHuman() {
		return Record{}, ErrInvalidTransition
	}

	status := enums.ModerationStatusRejected
	if decision == ReviewDecisionApprove {
		status = enums.ModerationStatusApproved
	}

	updated, err := s.store.SetHumanReview(ctx, moderationID, status, HumanReview{
		Decision:   decision,
		Note:       strings.TrimSpace(note),
		ReviewerID: reviewerID,
		ReviewedAt: s.now().UTC(),
	})
	if err != nil {
		return Record{}, err
	}

	s.invalidateStats(ctx)

	return updated, nil
}

// ModerateAll re-scans every known content item. Items are processed
// independently: one failing write becomes an error entry, not an abort.
func (s *Service) ModerateAll(ctx context.Context) (BulkResult, error) {
	if s.contents == nil {
		return BulkResult{}, fmt.Errorf("moderation content source is not configured")
	}

	refs, err := s.contents.ListForModeration(ctx)
	if err != nil {
		return BulkResult{}, fmt.Errorf("list content for moderation: %w", err)
	}

	result := BulkResult{Processed: len(refs)}
	for _, ref := range refs {
		record, err := s.ModerateOne(ctx, ref.ContentID, ref.Kind, ref.Payload)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("content %d: %v", ref.ContentID, err))
			continue
		}
		switch record.Status {
		case enums.ModerationStatusApproved:
			result.Approved++
		case enums.ModerationStatusRejected:
			result.Rejected++
		default:
			result.Pending++
		}
	}

	s.logger.Info("bulk moderation scan finished",
		zap.Int("processed", result.Processed),
		zap.Int("approved", result.Approved),
		zap.Int("rejected", result.Rejected),
		zap.Int("pending", result.Pending),
		zap.Int("errors", len(result.Errors)),
	)

	return result, nil
}

func (s *Service) GetByContent(ctx context.Context, contentID int64, kind enums.ContentKind) (Record, error) {
	if contentID <= 0 {
		return Record{}, ErrValidation
	}
	if s.store == nil {
		return Record{}, fmt.Errorf("moderation service dependencies are not configured")
	}
	return s.store.GetByContent(ctx, contentID, kind)
}

func (s *Service) ListByStatus(ctx context.Context, status enums.ModerationStatus, limit int) ([]Record, error) {
	if _, ok := enums.ParseModerationStatus(string(status)); !ok {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("moderation service dependencies are not configured")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.ListByStatus(ctx, status, limit)
}

func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	if s.store == nil {
		return Stats{}, fmt.Errorf("moderation service dependencies are not configured")
	}

	if s.statsCache != nil {
		if stats, ok := s.statsCache.Get(ctx); ok {
			return stats, nil
		}
	}

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("load moderation stats: %w", err)
	}

	if s.statsCache != nil {
		s.statsCache.Set(ctx, stats)
	}

	return stats, nil
}

func (s *Service) invalidateStats(ctx context.Context) {
	if s.statsCache != nil {
		s.statsCache.Invalidate(ctx)
	}
}
