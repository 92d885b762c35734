package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/micromatch/micromatch"
	"github.com/micromatch/micromatch/internal/domain"
)

// maxReplaceRetries bounds the re-read loop when a versioned replace
// loses a race.
const maxReplaceRetries = 3

// LifecycleUsecase orchestrates the multi-document updates of the
// connection workflow. Each record write is individually protected by a
// version check, but a sequence of writes is not atomic: a failure
// between the two writes of InitiateConnection or AcceptRequest leaves
// the first write in place, exactly as the product behaves.
type LifecycleUsecase struct {
	store RecordStore
	now   func() time.Time
}

func NewLifecycleUsecase(store RecordStore) *LifecycleUsecase {
	return &LifecycleUsecase{
		store: store,
		now:   time.Now,
	}
}

// update runs a read-modify-write cycle on one record, retrying on
// version conflicts with a fresh read each time.
func (u *LifecycleUsecase) update(ctx context.Context, key string, mutate func(*micromatch.Record) error) error {
	for attempt := 0; attempt < maxReplaceRetries; attempt++ {
		record, version, err := fetchRecord(ctx, u.store, key)
		if err != nil {
			return err
		}

		if err := mutate(&record); err != nil {
			return err
		}

		err = storeRecord(ctx, u.store, record, version)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		return err
	}
	return domain.ConflictError{Key: key}
}

// InitiateConnection appends a pending ConnectionRequest to the
// influencer's record, then appends a Partnership to the business's own
// record. The business-side entry is written with status "connected"
// immediately, before the influencer has resolved anything; the
// influencer still sees a pending request.
func (u *LifecycleUsecase) InitiateConnection(ctx context.Context, businessID, influencerID string) error {
	ctx, span := tracer.Start(ctx, "Lifecycle.Usecase.InitiateConnection")
	defer span.End()

	business, _, err := fetchRecord(ctx, u.store, businessID)
	if err != nil {
		span.RecordError(errors.Wrap(err, "business lookup failed"))
		return err
	}

	now := u.now().UTC()
	var influencer micromatch.Record

	err = u.update(ctx, influencerID, func(record *micromatch.Record) error {
		record.Requests = append(record.Requests, micromatch.ConnectionRequest{
			ID:              now.UnixMilli(),
			BusinessID:      business.ID,
			BusinessName:    business.DisplayName(),
			BusinessEmail:   business.Email,
			BusinessProfile: business.Profile,
			Status:          micromatch.StatusPending,
			CreatedAt:       now.Format(time.RFC3339),
		})
		influencer = *record
		return nil
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "influencer request write failed"))
		return err
	}

	err = u.update(ctx, businessID, func(record *micromatch.Record) error {
		record.Partnerships = append(record.Partnerships, micromatch.Partnership{
			ID:                now.UnixMilli() + 1,
			InfluencerID:      influencer.ID,
			InfluencerName:    influencer.DisplayName(),
			InfluencerEmail:   influencer.Email,
			InfluencerProfile: influencer.Profile,
			Status:            micromatch.StatusConnected,
			RequestedAt:       now.Format(time.RFC3339),
		})
		return nil
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "business partnership write failed"))
		return err
	}
	return nil
}

// AcceptRequest resolves a pending request: the request is removed and
// becomes a connected Partnership on the influencer's record, and a
// mirrored Partnership is appended to the business record. The mirror
// is appended unconditionally, so a business that already holds the
// entry written at connect time ends up with two entries for the same
// influencer. That is the shipped behavior and callers depend on it.
func (u *LifecycleUsecase) AcceptRequest(ctx context.Context, influencerID string, requestID int64) error {
	ctx, span := tracer.Start(ctx, "Lifecycle.Usecase.AcceptRequest")
	defer span.End()

	now := u.now().UTC()
	var (
		influencer micromatch.Record
		accepted   micromatch.ConnectionRequest
	)

	err := u.update(ctx, influencerID, func(record *micromatch.Record) error {
		request, rest, ok := takeRequest(record.Requests, requestID)
		if !ok {
			return domain.NotFoundError{Key: fmt.Sprintf("request %d", requestID)}
		}
		record.Requests = rest
		record.Partnerships = append(record.Partnerships, micromatch.Partnership{
			ID:              request.ID,
			BusinessID:      request.BusinessID,
			BusinessName:    request.BusinessName,
			BusinessEmail:   request.BusinessEmail,
			BusinessProfile: request.BusinessProfile,
			Status:          micromatch.StatusConnected,
			CreatedAt:       request.CreatedAt,
			AcceptedAt:      now.Format(time.RFC3339),
		})
		accepted = request
		influencer = *record
		return nil
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "influencer accept write failed"))
		return err
	}

	err = u.update(ctx, accepted.BusinessID, func(record *micromatch.Record) error {
		record.Partnerships = append(record.Partnerships, micromatch.Partnership{
			InfluencerID:      influencer.ID,
			InfluencerName:    influencer.DisplayName(),
			InfluencerEmail:   influencer.Email,
			InfluencerProfile: influencer.Profile,
			Status:            micromatch.StatusConnected,
			AcceptedAt:        now.Format(time.RFC3339),
		})
		return nil
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "business mirror write failed"))
		return err
	}
	return nil
}

// DeclineRequest removes a pending request from the influencer's record.
// The business record is not touched: the "connected" entry written at
// connect time stays behind, as it does in the product.
func (u *LifecycleUsecase) DeclineRequest(ctx context.Context, influencerID string, requestID int64) error {
	ctx, span := tracer.Start(ctx, "Lifecycle.Usecase.DeclineRequest")
	defer span.End()

	err := u.update(ctx, influencerID, func(record *micromatch.Record) error {
		_, rest, ok := takeRequest(record.Requests, requestID)
		if !ok {
			return domain.NotFoundError{Key: fmt.Sprintf("request %d", requestID)}
		}
		record.Requests = rest
		return nil
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "decline write failed"))
		return err
	}
	return nil
}

// SetPartnershipStatus rewrites the status of one Partnership in the
// owner's record. The mutation is local; the counterpart's mirrored
// entry is never updated.
func (u *LifecycleUsecase) SetPartnershipStatus(ctx context.Context, recordID string, partnershipID int64, status string) error {
	ctx, span := tracer.Start(ctx, "Lifecycle.Usecase.SetPartnershipStatus")
	defer span.End()

	err := u.update(ctx, recordID, func(record *micromatch.Record) error {
		for i := range record.Partnerships {
			if record.Partnerships[i].ID == partnershipID {
				record.Partnerships[i].Status = status
				return nil
			}
		}
		return domain.NotFoundError{Key: fmt.Sprintf("partnership %d", partnershipID)}
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "status write failed"))
		return err
	}
	return nil
}

func takeRequest(requests []micromatch.ConnectionRequest, id int64) (micromatch.ConnectionRequest, []micromatch.ConnectionRequest, bool) {
	for i, request := range requests {
		if request.ID == id {
			rest := make([]micromatch.ConnectionRequest, 0, len(requests)-1)
			rest = append(rest, requests[:i]...)
			rest = append(rest, requests[i+1:]...)
			return request, rest, true
		}
	}
	return micromatch.ConnectionRequest{}, requests, false
}
