package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sylveur65/Projet-goodyfans-sub000/internal/domain/enums"
	"github.com/sylveur65/Projet-goodyfans-sub000/internal/pkg/validate"
	pgrepo "github.com/sylveur65/Projet-goodyfans-sub000/internal/repo/postgres"
	modsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/moderation"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrContentNotFound = errors.New("content item not found")
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
	moderationURLTTL  = 10 * time.Minute
)

type Store interface {
	Create(ctx context.Context, record pgrepo.ContentRecord) (pgrepo.ContentRecord, error)
	GetByID(ctx context.Context, id int64) (pgrepo.ContentRecord, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]pgrepo.ContentRecord, error)
	ListAll(ctx context.Context) ([]pgrepo.ContentRecord, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// Moderator screens a single item and records the outcome.
type Moderator interface {
	ModerateOne(ctx context.Context, contentID int64, kind enums.ContentKind, payload string) (modsvc.Record, error)
	GetByContent(ctx context.Context, contentID int64, kind enums.ContentKind) (modsvc.Record, error)
}

// URLSigner issues short-lived download URLs for stored objects so the
// remote classifier can fetch visual payloads.
type URLSigner interface {
	SignGet(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

type Service struct {
	store  Store
	mods   Moderator
	signer URLSigner
	logger *zap.Logger
}

type CreateInput struct {
	OwnerID     int64
	Kind        enums.ContentKind
	Title       string
	Description string
	PriceCents  int64
	ObjectKey   string
}

// Item pairs a content row with its current moderation record.
type Item struct {
	Content    pgrepo.ContentRecord
	Moderation modsvc.Record
	HasRecord  bool
}

func NewService(store Store, mods Moderator, signer URLSigner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, mods: mods, signer: signer, logger: logger}
}

// Create persists a new item in its inactive state, runs it through
// moderation and activates it when moderation approves. Items that need
// human review stay inactive until the review lands.
func (s *Service) Create(ctx context.Context, in CreateInput) (Item, error) {
	if s.store == nil || s.mods == nil {
		return Item{}, fmt.Errorf("content dependencies are not configured")
	}
	if err := validateCreate(in); err != nil {
		return Item{}, err
	}

	record, err := s.store.Create(ctx, pgrepo.ContentRecord{
		OwnerID:     in.OwnerID,
		Kind:        in.Kind,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		ObjectKey:   strings.TrimSpace(in.ObjectKey),
	})
	if err != nil {
		return Item{}, fmt.Errorf("create content item: %w", err)
	}

	payload := s.moderationPayload(ctx, record)
	modRecord, err := s.mods.ModerateOne(ctx, record.ID, record.Kind, payload)
	if err != nil {
		// The item exists but stays inactive; the rescan job or an
		// explicit re-moderation picks it up later.
		s.logger.Warn("moderation failed on create",
			zap.Int64("content_id", record.ID),
			zap.Error(err))
		return Item{Content: record}, nil
	}

	if modRecord.Status == enums.ModerationStatusApproved {
		if err := s.store.SetActive(ctx, record.ID, true); err != nil {
			return Item{}, fmt.Errorf("activate content item: %w", err)
		}
		record.IsActive = true
	}

	return Item{Content: record, Moderation: modRecord, HasRecord: true}, nil
}

// ApplyModeration syncs an item's active flag with a moderation outcome.
// Called after human review or re-moderation lands a terminal status.
func (s *Service) ApplyModeration(ctx context.Context, record modsvc.Record) error {
	if s.store == nil {
		return fmt.Errorf("content dependencies are not configured")
	}

	active := record.Status == enums.ModerationStatusApproved
	if err := s.store.SetActive(ctx, record.ContentID, active); err != nil {
		if errors.Is(err, pgrepo.ErrContentNotFound) {
			return ErrContentNotFound
		}
		return fmt.Errorf("set content active: %w", err)
	}
	return nil
}

// Rescan re-runs moderation for a single item and syncs activation with
// the fresh outcome.
func (s *Service) Rescan(ctx context.Context, contentID int64) (Item, error) {
	if s.store == nil || s.mods == nil {
		return Item{}, fmt.Errorf("content dependencies are not configured")
	}

	record, err := s.store.GetByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrContentNotFound) {
			return Item{}, ErrContentNotFound
		}
		return Item{}, fmt.Errorf("get content item: %w", err)
	}

	payload := s.moderationPayload(ctx, record)
	modRecord, err := s.mods.ModerateOne(ctx, record.ID, record.Kind, payload)
	if err != nil {
		return Item{}, fmt.Errorf("moderate content item: %w", err)
	}

	if err := s.ApplyModeration(ctx, modRecord); err != nil {
		return Item{}, err
	}
	record.IsActive = modRecord.Status == enums.ModerationStatusApproved

	return Item{Content: record, Moderation: modRecord, HasRecord: true}, nil
}

func (s *Service) Get(ctx context.Context, contentID int64) (Item, error) {
	if s.store == nil {
		return Item{}, fmt.Errorf("content dependencies are not configured")
	}

	record, err := s.store.GetByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrContentNotFound) {
			return Item{}, ErrContentNotFound
		}
		return Item{}, fmt.Errorf("get content item: %w", err)
	}

	item := Item{Content: record}
	if s.mods != nil {
		modRecord, err := s.mods.GetByContent(ctx, record.ID, record.Kind)
		if err == nil {
			item.Moderation = modRecord
			item.HasRecord = true
		} else if !errors.Is(err, modsvc.ErrRecordNotFound) {
			return Item{}, fmt.Errorf("get moderation record: %w", err)
		}
	}

	return item, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]pgrepo.ContentRecord, error) {
	if s.store == nil {
		return nil, fmt.Errorf("content dependencies are not configured")
	}
	if ownerID <= 0 {
		return nil, ErrValidation
	}
	return s.store.ListByOwner(ctx, ownerID)
}

// ListForModeration enumerates every item with a classifier-ready payload.
// It backs bulk re-scans.
func (s *Service) ListForModeration(ctx context.Context) ([]modsvc.ContentRef, error) {
	if s.store == nil {
		return nil, fmt.Errorf("content dependencies are not configured")
	}

	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content items: %w", err)
	}

	refs := make([]modsvc.ContentRef, 0, len(records))
	for _, record := range records {
		refs = append(refs, modsvc.ContentRef{
			ContentID: record.ID,
			Kind:      record.Kind,
			Payload:   s.moderationPayload(ctx, record),
		})
	}
	return refs, nil
}

// moderationPayload builds what the classifier sees: a signed download URL
// for visual items, the title plus description otherwise. A signing failure
// degrades to an empty payload so local heuristics still run.
func (s *Service) moderationPayload(ctx context.Context, record pgrepo.ContentRecord) string {
	if record.Kind.IsVisual() {
		if s.signer == nil || record.ObjectKey == "" {
			return ""
		}
		url, err := s.signer.SignGet(ctx, record.ObjectKey, moderationURLTTL)
		if err != nil {
			s.logger.Warn("sign moderation url",
				zap.Int64("content_id", record.ID),
				zap.Error(err))
			return ""
		}
		return url
	}

	if record.Description == "" {
		return record.Title
	}
	return record.Title + "\n" + record.Description
}

func validateCreate(in CreateInput) error {
	if in.OwnerID <= 0 {
		return fmt.Errorf("%w: owner id is required", ErrValidation)
	}
	if _, ok := enums.ParseContentKind(string(in.Kind)); !ok {
		return fmt.Errorf("%w: unknown content kind %q", ErrValidation, in.Kind)
	}
	if title := strings.TrimSpace(in.Title); !validate.Required(title) || len(title) > maxTitleLen {
		return fmt.Errorf("%w: title must be 1-%d characters", ErrValidation, maxTitleLen)
	}
	if len(in.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description too long", ErrValidation)
	}
	if in.PriceCents < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if in.Kind.IsVisual() && strings.TrimSpace(in.ObjectKey) == "" {
		return fmt.Errorf("%w: visual content requires an uploaded object", ErrValidation)
	}
	return nil
}
