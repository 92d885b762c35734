package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/micromatch/micromatch"
	"github.com/micromatch/micromatch/internal/domain"
)

func seedRecord(t *testing.T, store *memStore, record micromatch.Record) {
	t.Helper()
	raw, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("seed marshal failed: %v", err)
	}
	if err := store.Create(context.Background(), record.ID, raw); err != nil {
		t.Fatalf("seed create failed: %v", err)
	}
}

func loadRecord(t *testing.T, store *memStore, key string) micromatch.Record {
	t.Helper()
	raw, _, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("load %s failed: %v", key, err)
	}
	var record micromatch.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		t.Fatalf("decode %s failed: %v", key, err)
	}
	return record
}

func testBusiness() micromatch.Record {
	return micromatch.Record{
		ID:       "business_1",
		Email:    "glow@cosmetics.example",
		UserType: micromatch.UserTypeBusiness,
		Profile: map[string]string{
			"firstName": "Glow",
			"lastName":  "Labs",
			"plan":      "Free",
		},
		Partnerships: []micromatch.Partnership{},
	}
}

func testInfluencer() micromatch.Record {
	return micromatch.Record{
		ID:       "influencer_1",
		Email:    "ava@example.com",
		UserType: micromatch.UserTypeInfluencer,
		Profile: map[string]string{
			"firstName": "Ava",
			"lastName":  "Smith",
			"niches":    "Skincare",
		},
		Partnerships: []micromatch.Partnership{},
		Requests:     []micromatch.ConnectionRequest{},
	}
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestInitiateConnection(t *testing.T) {
	store := newMemStore()
	seedRecord(t, store, testBusiness())
	seedRecord(t, store, testInfluencer())

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc := NewLifecycleUsecase(store)
	uc.now = fixedClock(at)

	if err := uc.InitiateConnection(context.Background(), "business_1", "influencer_1"); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	influencer := loadRecord(t, store, "influencer_1")
	if len(influencer.Requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(influencer.Requests))
	}
	request := influencer.Requests[0]
	if request.Status != micromatch.StatusPending {
		t.Fatalf("expected pending, got %s", request.Status)
	}
	if request.BusinessID != "business_1" {
		t.Fatalf("expected businessId business_1, got %s", request.BusinessID)
	}
	if request.BusinessName != "Glow Labs" {
		t.Fatalf("expected snapshot name, got %s", request.BusinessName)
	}
	if request.ID != at.UnixMilli() {
		t.Fatalf("expected request id %d, got %d", at.UnixMilli(), request.ID)
	}
	if request.CreatedAt != at.Format(time.RFC3339) {
		t.Fatalf("unexpected createdAt %s", request.CreatedAt)
	}

	business := loadRecord(t, store, "business_1")
	if len(business.Partnerships) != 1 {
		t.Fatalf("expected 1 partnership, got %d", len(business.Partnerships))
	}
	partnership := business.Partnerships[0]
	if partnership.Status != micromatch.StatusConnected {
		t.Fatalf("expected connected, got %s", partnership.Status)
	}
	if partnership.InfluencerID != "influencer_1" {
		t.Fatalf("expected influencerId influencer_1, got %s", partnership.InfluencerID)
	}
	if partnership.ID != at.UnixMilli()+1 {
		t.Fatalf("expected partnership id %d, got %d", at.UnixMilli()+1, partnership.ID)
	}
	if partnership.InfluencerProfile["niches"] != "Skincare" {
		t.Fatalf("expected profile snapshot to be copied")
	}
}

func TestInitiateConnectionMissingInfluencer(t *testing.T) {
	store := newMemStore()
	seedRecord(t, store, testBusiness())

	uc := NewLifecycleUsecase(store)
	err := uc.InitiateConnection(context.Background(), "business_1", "influencer_9")
	if !isNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAcceptRequest(t *testing.T) {
	store := newMemStore()
	seedRecord(t, store, testBusiness())
	seedRecord(t, store, testInfluencer())

	connectAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc := NewLifecycleUsecase(store)
	uc.now = fixedClock(connectAt)
	if err := uc.InitiateConnection(context.Background(), "business_1", "influencer_1"); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	acceptAt := connectAt.Add(time.Hour)
	uc.now = fixedClock(acceptAt)
	if err := uc.AcceptRequest(context.Background(), "influencer_1", connectAt.UnixMilli()); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	influencer := loadRecord(t, store, "influencer_1")
	if len(influencer.Requests) != 0 {
		t.Fatalf("expected requests cleared, got %d", len(influencer.Requests))
	}
	if len(influencer.Partnerships) != 1 {
		t.Fatalf("expected 1 partnership, got %d", len(influencer.Partnerships))
	}
	partnership := influencer.Partnerships[0]
	if partnership.Status != micromatch.StatusConnected {
		t.Fatalf("expected connected, got %s", partnership.Status)
	}
	if partnership.BusinessID != "business_1" {
		t.Fatalf("expected businessId business_1, got %s", partnership.BusinessID)
	}
	// the accepted partnership carries the request over wholesale
	if partnership.ID != connectAt.UnixMilli() {
		t.Fatalf("expected request id carried over, got %d", partnership.ID)
	}
	if partnership.CreatedAt != connectAt.Format(time.RFC3339) {
		t.Fatalf("expected request createdAt carried over, got %s", partnership.CreatedAt)
	}
	if partnership.AcceptedAt != acceptAt.Format(time.RFC3339) {
		t.Fatalf("unexpected acceptedAt %s", partnership.AcceptedAt)
	}

	// the business ends up with two entries for the same influencer:
	// the one written at connect time plus the mirror appended on
	// accept. This duplication is the shipped behavior.
	business := loadRecord(t, store, "business_1")
	if len(business.Partnerships) != 2 {
		t.Fatalf("expected 2 partnerships, got %d", len(business.Partnerships))
	}
	mirror := business.Partnerships[1]
	if mirror.ID != 0 {
		t.Fatalf("mirror entry must carry no id, got %d", mirror.ID)
	}
	if mirror.RequestedAt != "" {
		t.Fatalf("mirror entry must carry no requestedAt, got %s", mirror.RequestedAt)
	}
	if mirror.InfluencerID != "influencer_1" || mirror.Status != micromatch.StatusConnected {
		t.Fatalf("unexpected mirror entry %+v", mirror)
	}
	if mirror.AcceptedAt != acceptAt.Format(time.RFC3339) {
		t.Fatalf("unexpected mirror acceptedAt %s", mirror.AcceptedAt)
	}
}

func TestAcceptRequestUnknownID(t *testing.T) {
	store := newMemStore()
	seedRecord(t, store, testInfluencer())

	uc := NewLifecycleUsecase(store)
	err := uc.AcceptRequest(context.Background(), "influencer_1", 42)
	if !isNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeclineRequest(t *testing.T) {
	store := newMemStore()
	seedRecord(t, store, testBusiness())
	seedRecord(t, store, testInfluencer())

	connectAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc := NewLifecycleUsecase(store)
	uc.now = fixedClock(connectAt)
	if err := uc.InitiateConnection(context.Background(), "business_1", "influencer_1"); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	if err := uc.DeclineRequest(context.Background(), "influencer_1", connectAt.UnixMilli()); err != nil {
		t.Fatalf("decline failed: %v", err)
	}

	influencer := loadRecord(t, store, "influencer_1")
	if len(influencer.Requests) != 0 {
		t.Fatalf("expected requests cleared, got %d", len(influencer.Requests))
	}
	if len(influencer.Partnerships) != 0 {
		t.Fatalf("decline must not create partnerships, got %d", len(influencer.Partnerships))
	}

	// the business side keeps its connect-time entry; decline never
	// reaches back to retract it
	business := loadRecord(t, store, "business_1")
	if len(business.Partnerships) != 1 {
		t.Fatalf("expected business entry left in place, got %d", len(business.Partnerships))
	}
	if business.Partnerships[0].Status != micromatch.StatusConnected {
		t.Fatalf("expected stale connected entry, got %s", business.Partnerships[0].Status)
	}
}

func TestSetPartnershipStatus(t *testing.T) {
	store := newMemStore()
	seedRecord(t, store, testBusiness())
	seedRecord(t, store, testInfluencer())

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc := NewLifecycleUsecase(store)
	uc.now = fixedClock(at)
	if err := uc.InitiateConnection(context.Background(), "business_1", "influencer_1"); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	err := uc.SetPartnershipStatus(context.Background(), "business_1", at.UnixMilli()+1, micromatch.StatusPast)
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	business := loadRecord(t, store, "business_1")
	if business.Partnerships[0].Status != micromatch.StatusPast {
		t.Fatalf("expected past, got %s", business.Partnerships[0].Status)
	}
}

func TestSetPartnershipStatusUnknownID(t *testing.T) {
	store := newMemStore()
	seedRecord(t, store, testBusiness())

	uc := NewLifecycleUsecase(store)
	err := uc.SetPartnershipStatus(context.Background(), "business_1", 42, micromatch.StatusPast)
	if !isNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// conflictingStore forces version conflicts on the first replace
// attempts to exercise the re-read retry.
type conflictingStore struct {
	*memStore
	conflicts int
}

func (s *conflictingStore) Replace(ctx context.Context, key string, doc json.RawMessage, expected int64) error {
	if s.conflicts > 0 {
		s.conflicts--
		return domain.ConflictError{Key: key, Expected: expected}
	}
	return s.memStore.Replace(ctx, key, doc, expected)
}

func TestUpdateRetriesOnConflict(t *testing.T) {
	inner := newMemStore()
	seedRecord(t, inner, testInfluencer())
	store := &conflictingStore{memStore: inner, conflicts: 2}

	uc := NewLifecycleUsecase(store)
	err := uc.update(context.Background(), "influencer_1", func(record *micromatch.Record) error {
		record.Profile["location"] = "Seattle"
		return nil
	})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}

	got := loadRecord(t, inner, "influencer_1")
	if got.Profile["location"] != "Seattle" {
		t.Fatalf("expected mutation applied after retries")
	}
}

func TestUpdateGivesUpAfterRetries(t *testing.T) {
	inner := newMemStore()
	seedRecord(t, inner, testInfluencer())
	store := &conflictingStore{memStore: inner, conflicts: maxReplaceRetries}

	uc := NewLifecycleUsecase(store)
	err := uc.update(context.Background(), "influencer_1", func(record *micromatch.Record) error {
		return nil
	})
	if !isConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func isConflict(err error) bool {
	return errors.Is(err, domain.ErrConflict)
}
