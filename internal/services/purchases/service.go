package purchases

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgrepo "github.com/sylveur65/Projet-goodyfans-sub000/internal/repo/postgres"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrContentNotFound  = errors.New("content item not found")
	ErrContentInactive  = errors.New("content item is not for sale")
	ErrOwnPurchase      = errors.New("creators cannot buy their own content")
	ErrPurchaseNotFound = errors.New("purchase not found")
)

const signedAccessTTL = 5 * time.Minute

type Store interface {
	Create(ctx context.Context, buyerID, contentID, priceCents int64) (pgrepo.PurchaseRecord, error)
	HasAccess(ctx context.Context, buyerID, contentID int64) (bool, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]pgrepo.PurchaseRecord, error)
}

type ContentStore interface {
	GetByID(ctx context.Context, id int64) (pgrepo.ContentRecord, error)
}

// URLSigner issues buyer-facing download URLs for purchased objects.
type URLSigner interface {
	SignGet(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

type Service struct {
	store    Store
	contents ContentStore
	signer   URLSigner
}

// Access is what a buyer gets back when opening a purchased item.
type Access struct {
	Content   pgrepo.ContentRecord
	SignedURL string
}

func NewService(store Store, contents ContentStore, signer URLSigner) *Service {
	return &Service{store: store, contents: contents, signer: signer}
}

// Buy grants a buyer access to an active item. Repeat purchases of the same
// item are idempotent and return the original purchase.
func (s *Service) Buy(ctx context.Context, buyerID, contentID int64) (pgrepo.PurchaseRecord, error) {
	if s.store == nil || s.contents == nil {
		return pgrepo.PurchaseRecord{}, fmt.Errorf("purchase dependencies are not configured")
	}
	if buyerID <= 0 || contentID <= 0 {
		return pgrepo.PurchaseRecord{}, ErrValidation
	}

	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrContentNotFound) {
			return pgrepo.PurchaseRecord{}, ErrContentNotFound
		}
		return pgrepo.PurchaseRecord{}, fmt.Errorf("get content item: %w", err)
	}
	if content.OwnerID == buyerID {
		return pgrepo.PurchaseRecord{}, ErrOwnPurchase
	}
	if !content.IsActive {
		return pgrepo.PurchaseRecord{}, ErrContentInactive
	}

	purchase, err := s.store.Create(ctx, buyerID, contentID, content.PriceCents)
	if err != nil {
		return pgrepo.PurchaseRecord{}, fmt.Errorf("create purchase: %w", err)
	}
	return purchase, nil
}

// Open verifies access and returns the item, with a fresh signed URL for
// stored objects. Items deactivated after purchase stay accessible to their
// buyers.
func (s *Service) Open(ctx context.Context, buyerID, contentID int64) (Access, error) {
	if s.store == nil || s.contents == nil {
		return Access{}, fmt.Errorf("purchase dependencies are not configured")
	}
	if buyerID <= 0 || contentID <= 0 {
		return Access{}, ErrValidation
	}

	ok, err := s.store.HasAccess(ctx, buyerID, contentID)
	if err != nil {
		return Access{}, fmt.Errorf("check purchase access: %w", err)
	}
	if !ok {
		return Access{}, ErrPurchaseNotFound
	}

	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrContentNotFound) {
			return Access{}, ErrContentNotFound
		}
		return Access{}, fmt.Errorf("get content item: %w", err)
	}

	access := Access{Content: content}
	if content.ObjectKey != "" && s.signer != nil {
		url, err := s.signer.SignGet(ctx, content.ObjectKey, signedAccessTTL)
		if err != nil {
			return Access{}, fmt.Errorf("sign content url: %w", err)
		}
		access.SignedURL = url
	}
	return access, nil
}

func (s *Service) ListByBuyer(ctx context.Context, buyerID int64) ([]pgrepo.PurchaseRecord, error) {
	if s.store == nil {
		return nil, fmt.Errorf("purchase dependencies are not configured")
	}
	if buyerID <= 0 {
		return nil, ErrValidation
	}
	return s.store.ListByBuyer(ctx, buyerID)
}
