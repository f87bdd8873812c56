package dto

import "time"

type CreateContentRequest struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	ObjectKey   string `json:"object_key"`
}

type ContentResponse struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`

	Moderation *ModerationRecordResponse `json:"moderation,omitempty"`
}

type ContentListResponse struct {
	Items []ContentResponse `json:"items"`
}
