package dto

import "time"

type ModerationRecordResponse struct {
	ID          string               `json:"id"`
	ContentID   int64                `json:"content_id"`
	ContentKind string               `json:"content_kind"`
	Status      string               `json:"status"`
	Confidence  float64              `json:"confidence"`
	Categories  map[string]float64   `json:"categories"`
	Flags       []string             `json:"flags"`
	Reason      string               `json:"reason"`
	Review      *HumanReviewResponse `json:"review,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

type HumanReviewResponse struct {
	Decision   string    `json:"decision"`
	Note       string    `json:"note,omitempty"`
	ReviewerID int64     `json:"reviewer_id"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

type HumanReviewRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

type ModerationListResponse struct {
	Items []ModerationRecordResponse `json:"items"`
}

type ModerationStatsResponse struct {
	Total            int     `json:"total"`
	Approved         int     `json:"approved"`
	Rejected         int     `json:"rejected"`
	Pending          int     `json:"pending"`
	Reviewing        int     `json:"reviewing"`
	AutoApproved     int     `json:"auto_approved"`
	AutoRejected     int     `json:"auto_rejected"`
	AutoApprovalRate float64 `json:"auto_approval_rate"`
}

type ModerationBulkResponse struct {
	Processed int      `json:"processed"`
	Approved  int      `json:"approved"`
	Rejected  int      `json:"rejected"`
	Pending   int      `json:"pending"`
	Errors    []string `json:"errors,omitempty"`
}
