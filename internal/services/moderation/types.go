package moderation

import (
	"errors"
	"time"

	"github.com/sylveur65/Projet-goodyfans-sub000/internal/domain/enums"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrRecordNotFound    = errors.New("moderation record not found")
	ErrInvalidTransition = errors.New("moderation record is not awaiting review")
)

// Risk categories emitted by every classification strategy. Strategies may
// add provider-specific categories on top; the policy ignores names it does
// not know.
const (
	CategoryAdult    = "adult"
	CategoryViolence = "violence"
	CategoryHate     = "hate"
	CategorySelfHarm = "self_harm"
)

const (
	FlagStudioContext        = "studio_context"
	FlagTechnicalEquipment   = "technical_equipment"
	FlagAdultContentPlatform = "adult_content_platform"
	FlagAutoApproved         = "auto_approved"
	FlagAutoRejected         = "auto_rejected"
	FlagLocalHeuristics      = "local_heuristics"
	FlagRemoteClassifier     = "remote_classifier"
)

// ContextSignals are domain cues extracted from a content reference that
// discount noisy risk scores.
type ContextSignals struct {
	IsStudioContext      bool
	IsTechnicalEquipment bool
}

func (c ContextSignals) Any() bool {
	return c.IsStudioContext || c.IsTechnicalEquipment
}

// Result is the normalized classification output shared by the remote and
// local strategies.
type Result struct {
	Confidence float64
	Categories map[string]float64
	Flags      []string
	Reason     string
}

// Decision is the pure policy outcome for one classification result.
type Decision struct {
	Approved            bool
	RequiresHumanReview bool
	Confidence          float64
	Reason              string
}

func (d Decision) Status() enums.ModerationStatus {
	switch {
	case d.RequiresHumanReview:
		return enums.ModerationStatusReviewing
	case d.Approved:
		return enums.ModerationStatusApproved
	default:
		return enums.ModerationStatusRejected
	}
}

type HumanReview struct {
	Decision   string
	Note       string
	ReviewerID int64
	ReviewedAt time.Time
}

// Record is the persisted moderation outcome for one content item. The
// stored category scores are post-adjustment: the audit trail reflects the
// numbers the policy actually evaluated.
type Record struct {
	ID          string
	ContentID   int64
	ContentKind enums.ContentKind
	Status      enums.ModerationStatus
	Confidence  float64
	Categories  map[string]float64
	Flags       []string
	Reason      string
	Review      *HumanReview
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Stats struct {
	Total        int
	Approved     int
	Rejected     int
	Pending      int
	Reviewing    int
	AutoApproved int
	AutoRejected int
}

// AutoApprovalRate is the share of all records approved without a human in
// the loop.
func (s Stats) AutoApprovalRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.AutoApproved) / float64(s.Total)
}

type BulkResult struct {
	Processed int
	Approved  int
	Rejected  int
	Pending   int
	Errors    []string
}
