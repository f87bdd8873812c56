package moderation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sylveur65/Projet-goodyfans-sub000/internal/domain/enums"
)

type fakeRecordStore struct {
	records     map[string]Record
	upsertCalls int
	failUpserts map[int64]error
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{
		records:     make(map[string]Record),
		failUpserts: make(map[int64]error),
	}
}

func storeKey(contentID int64, kind enums.ContentKind) string {
	return fmt.Sprintf("%d:%s", contentID, kind)
}

func (f *fakeRecordStore) Upsert(_ context.Context, record Record) (Record, error) {
	f.upsertCalls++
	if err, ok := f.failUpserts[record.ContentID]; ok {
		return Record{}, err
	}

	key := storeKey(record.ContentID, record.ContentKind)
	if existing, ok := f.records[key]; ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	}
	record.Review = nil
	f.records[key] = record
	return record, nil
}

func (f *fakeRecordStore) GetByID(_ context.Context, id string) (Record, error) {
	for _, record := range f.records {
		if record.ID == id {
			return record, nil
		}
	}
	return Record{}, ErrRecordNotFound
}

func (f *fakeRecordStore) GetByContent(_ context.Context, contentID int64, kind enums.ContentKind) (Record, error) {
	record, ok := f.records[storeKey(contentID, kind)]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeRecordStore) SetHumanReview(_ context.Context, id string, status enums.ModerationStatus, review HumanReview) (Record, error) {
	for key, record := range f.records {
		if record.ID != id {
			continue
		}
		record.Status = status
		record.Review = &review
		record.UpdatedAt = review.ReviewedAt
		f.records[key] = record
		return record, nil
	}
	return Record{}, ErrRecordNotFound
}

func (f *fakeRecordStore) ListByStatus(_ context.Context, status enums.ModerationStatus, _ int) ([]Record, error) {
	out := make([]Record, 0)
	for _, record := range f.records {
		if record.Status == status {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeRecordStore) Stats(_ context.Context) (Stats, error) {
	stats := Stats{}
	for _, record := range f.records {
		stats.Total++
		switch record.Status {
		case enums.ModerationStatusApproved:
			stats.Approved++
			if record.Review == nil {
				stats.AutoApproved++
			}
		case enums.ModerationStatusRejected:
			stats.Rejected++
			if record.Review == nil {
				stats.AutoRejected++
			}
		case enums.ModerationStatusReviewing:
			stats.Reviewing++
		default:
			stats.Pending++
		}
	}
	return stats, nil
}

type fakeContentSource struct {
	refs []ContentRef
}

func (f *fakeContentSource) ListForModeration(_ context.Context) ([]ContentRef, error) {
	return f.refs, nil
}

func newTestService(store RecordStore, contents ContentSource) *Service {
	classifier := NewClassifier(ClassifierConfig{}, nil)
	return NewService(store, classifier, contents, nil)
}

func TestModerateOneUpsertIdempotent(t *testing.T) {
	store := newFakeRecordStore()
	svc := newTestService(store, nil)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	first, err := svc.ModerateOne(context.Background(), 42, enums.ContentKindImage, "https://cdn.example.com/42.jpg")
	if err != nil {
		t.Fatalf("moderate once: %v", err)
	}

	svc.now = func() time.Time { return base.Add(time.Hour) }
	second, err := svc.ModerateOne(context.Background(), 42, enums.ContentKindImage, "https://cdn.example.com/42.jpg")
	if err != nil {
		t.Fatalf("moderate twice: %v", err)
	}

	if len(store.records) != 1 {
		t.Fatalf("expected a single stored record, got %d", len(store.records))
	}
	if second.ID != first.ID {
		t.Fatalf("record id changed on re-moderation: %s -> %s", first.ID, second.ID)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("updated_at did not advance: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
	if second.CreatedAt != first.CreatedAt {
		t.Fatalf("created_at changed on re-moderation")
	}
}

func TestModerateOneImageFallbackApproves(t *testing.T) {
	store := newFakeRecordStore()
	svc := newTestService(store, nil)

	record, err := svc.ModerateOne(context.Background(), 7, enums.ContentKindImage, "https://cdn.example.com/7.jpg")
	if err != nil {
		t.Fatalf("moderate: %v", err)
	}

	if record.Status != enums.ModerationStatusApproved {
		t.Fatalf("unexpected status: %s", record.Status)
	}
	if record.Reason != ReasonThresholdApproved {
		t.Fatalf("unexpected reason: %q", record.Reason)
	}
	if record.Categories[CategoryAdult] != localAdultBaseline {
		t.Fatalf("unexpected adult score: %v", record.Categories[CategoryAdult])
	}
	if !containsFlag(record.Flags, FlagAutoApproved) {
		t.Fatalf("expected auto_approved flag, got %v", record.Flags)
	}
}

func TestModerateOneStudioTextApproves(t *testing.T) {
	store := newFakeRecordStore()
	svc := newTestService(store, nil)

	record, err := svc.ModerateOne(context.Background(), 8, enums.ContentKindText, "find the best microphone and recording studio setup")
	if err != nil {
		t.Fatalf("moderate: %v", err)
	}

	if record.Status != enums.ModerationStatusApproved {
		t.Fatalf("unexpected status: %s", record.Status)
	}
	if record.Reason != ReasonContextApproved {
		t.Fatalf("unexpected reason: %q", record.Reason)
	}
	for _, name := range []string{CategoryViolence, CategoryHate, CategorySelfHarm} {
		if record.Categories[name] > 0.01 {
			t.Fatalf("stored %s score not discounted: %v", name, record.Categories[name])
		}
	}
}

func TestModerateOneSelfHarmTextGoesToReview(t *testing.T) {
	store := newFakeRecordStore()
	svc := newTestService(store, nil)

	record, err := svc.ModerateOne(context.Background(), 9, enums.ContentKindText, "a story about suicide")
	if err != nil {
		t.Fatalf("moderate: %v", err)
	}

	if record.Status != enums.ModerationStatusReviewing {
		t.Fatalf("unexpected status: %s", record.Status)
	}
	if record.Reason != ReasonNeedsReview {
		t.Fatalf("unexpected reason: %q", record.Reason)
	}
}

func TestModerateOneValidation(t *testing.T) {
	svc := newTestService(newFakeRecordStore(), nil)

	if _, err := svc.ModerateOne(context.Background(), 0, enums.ContentKindImage, "x"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for content id, got %v", err)
	}
	if _, err := svc.ModerateOne(context.Background(), 1, "gif", "x"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for kind, got %v", err)
	}
}

func TestSubmitHumanReview(t *testing.T) {
	store := newFakeRecordStore()
	svc := newTestService(store, nil)

	record, err := svc.ModerateOne(context.Background(), 9, enums.ContentKindText, "a story about suicide")
	if err != nil {
		t.Fatalf("moderate: %v", err)
	}
	if record.Status != enums.ModerationStatusReviewing {
		t.Fatalf("precondition failed, status %s", record.Status)
	}

	updated, err := svc.SubmitHumanReview(context.Background(), record.ID, ReviewDecisionApprove, "context makes it fine", 1001)
	if err != nil {
		t.Fatalf("submit review: %v", err)
	}
	if updated.Status != enums.ModerationStatusApproved {
		t.Fatalf("unexpected status after review: %s", updated.Status)
	}
	if updated.Review == nil || updated.Review.ReviewerID != 1001 {
		t.Fatalf("review payload not stored: %+v", updated.Review)
	}

	// Terminal records cannot be reviewed again.
	_, err = svc.SubmitHumanReview(context.Background(), record.ID, ReviewDecisionReject, "", 1001)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	stored, err := store.GetByID(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("reload record: %v", err)
	}
	if stored.Status != enums.ModerationStatusApproved {
		t.Fatalf("record mutated by rejected transition: %s", stored.Status)
	}
}

func TestSubmitHumanReviewValidation(t *testing.T) {
	svc := newTestService(newFakeRecordStore(), nil)

	if _, err := svc.SubmitHumanReview(context.Background(), "some-id", "maybe", "", 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for decision, got %v", err)
	}
	if _, err := svc.SubmitHumanReview(context.Background(), "missing", ReviewDecisionApprove, "", 1); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestModerateAllIsolatesFailures(t *testing.T) {
	store := newFakeRecordStore()
	store.failUpserts[2] = fmt.Errorf("connection reset")

	contents := &fakeContentSource{refs: []ContentRef{
		{ContentID: 1, Kind: enums.ContentKindImage, Payload: "https://cdn.example.com/1.jpg"},
		{ContentID: 2, Kind: enums.ContentKindImage, Payload: "https://cdn.example.com/2.jpg"},
		{ContentID: 3, Kind: enums.ContentKindText, Payload: "a story about suicide"},
	}}

	svc := newTestService(store, contents)

	result, err := svc.ModerateAll(context.Background())
	if err != nil {
		t.Fatalf("moderate all: %v", err)
	}

	if result.Processed != 3 {
		t.Fatalf("unexpected processed count: %d", result.Processed)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error entry, got %v", result.Errors)
	}
	if result.Approved != 1 || result.Pending != 1 {
		t.Fatalf("unexpected aggregate: %+v", result)
	}
	if len(store.records) != 2 {
		t.Fatalf("expected records for items 1 and 3, got %d", len(store.records))
	}
}

func TestGetStats(t *testing.T) {
	store := newFakeRecordStore()
	contents := &fakeContentSource{refs: []ContentRef{
		{ContentID: 1, Kind: enums.ContentKindImage, Payload: "https://cdn.example.com/1.jpg"},
		{ContentID: 2, Kind: enums.ContentKindText, Payload: "a story about suicide"},
	}}
	svc := newTestService(store, contents)

	if _, err := svc.ModerateAll(context.Background()); err != nil {
		t.Fatalf("moderate all: %v", err)
	}

	stats, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.Total != 2 || stats.Approved != 1 || stats.Reviewing != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.AutoApproved != 1 {
		t.Fatalf("unexpected auto approved count: %d", stats.AutoApproved)
	}
	if rate := stats.AutoApprovalRate(); rate != 0.5 {
		t.Fatalf("unexpected auto approval rate: %v", rate)
	}
}

func containsFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}
