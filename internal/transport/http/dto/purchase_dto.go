package dto

import "time"

type BuyRequest struct {
	ContentID int64 `json:"content_id"`
}

type PurchaseResponse struct {
	ID         int64     `json:"id"`
	ContentID  int64     `json:"content_id"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

type PurchaseListResponse struct {
	Items []PurchaseResponse `json:"items"`
}

type PurchaseAccessResponse struct {
	Content   ContentResponse `json:"content"`
	SignedURL string          `json:"signed_url,omitempty"`
}
