package enums

import "strings"

type ModerationStatus string

const (
	ModerationStatusPending   ModerationStatus = "pending"
	ModerationStatusApproved  ModerationStatus = "approved"
	ModerationStatusRejected  ModerationStatus = "rejected"
	ModerationStatusReviewing ModerationStatus = "reviewing"
)

func ParseModerationStatus(raw string) (ModerationStatus, bool) {
	switch ModerationStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case ModerationStatusPending:
		return ModerationStatusPending, true
	case ModerationStatusApproved:
		return ModerationStatusApproved, true
	case ModerationStatusRejected:
		return ModerationStatusRejected, true
	case ModerationStatusReviewing:
		return ModerationStatusReviewing, true
	default:
		return "", false
	}
}

// IsTerminal reports whether the status can no longer change without an
// explicit re-moderation.
func (s ModerationStatus) IsTerminal() bool {
	return s == ModerationStatusApproved || s == ModerationStatusRejected
}

// AwaitsHuman reports whether a human review submission is valid for the
// status.
func (s ModerationStatus) AwaitsHuman() bool {
	return s == ModerationStatusPending || s == ModerationStatusReviewing
}
