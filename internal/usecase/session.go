package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/micromatch/micromatch"
	"github.com/micromatch/micromatch/internal/domain"
)

const (
	sessionTTL     = 10 * time.Minute
	sessionCleanup = 15 * time.Minute
)

// SessionUsecase owns the current-user snapshot for a calling context.
// The cache keeps the last-known-good copy per user id; Refresh falls
// back to it when the store cannot be reached, which is the same
// recovery the web client performs from its local copy.
type SessionUsecase struct {
	store RecordStore
	cache *cache.Cache
	now   func() time.Time
}

func NewSessionUsecase(store RecordStore) *SessionUsecase {
	return &SessionUsecase{
		store: store,
		cache: cache.New(sessionTTL, sessionCleanup),
		now:   time.Now,
	}
}

// Login scans the store for a record matching email and user type.
// Stored values that are not user documents are skipped.
func (u *SessionUsecase) Login(ctx context.Context, email, userType string) (domain.Session, error) {
	ctx, span := tracer.Start(ctx, "Session.Usecase.Login")
	defer span.End()

	all, err := u.store.ListAll(ctx)
	if err != nil {
		span.RecordError(errors.Wrap(err, "login listing failed"))
		return domain.Session{}, err
	}

	for _, raw := range all {
		var record micromatch.Record
		if err := json.Unmarshal(raw, &record); err != nil {
			continue
		}
		if record.Email == email && record.UserType == userType {
			return u.remember(record), nil
		}
	}
	return domain.Session{}, domain.NotFoundError{Key: email}
}

// Signup creates a fresh record with the empty profile template for the
// given user type and caches it as the current session.
func (u *SessionUsecase) Signup(ctx context.Context, email, userType string) (domain.Session, error) {
	ctx, span := tracer.Start(ctx, "Session.Usecase.Signup")
	defer span.End()

	record := micromatch.Record{
		ID:           fmt.Sprintf("%s_%d", userType, u.now().UnixMilli()),
		Email:        email,
		UserType:     userType,
		Profile:      profileTemplate(userType),
		Partnerships: []micromatch.Partnership{},
		Requests:     []micromatch.ConnectionRequest{},
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return domain.Session{}, err
	}
	if err := u.store.Create(ctx, record.ID, raw); err != nil {
		span.RecordError(errors.Wrap(err, "signup create failed"))
		return domain.Session{}, err
	}
	return u.remember(record), nil
}

// Refresh re-reads the user's record from the store. When the store is
// unreachable the last-known-good cached copy is returned, marked
// stale; the error is only surfaced when no copy exists.
func (u *SessionUsecase) Refresh(ctx context.Context, userID string) (domain.Session, error) {
	ctx, span := tracer.Start(ctx, "Session.Usecase.Refresh")
	defer span.End()

	record, _, err := fetchRecord(ctx, u.store, userID)
	if err != nil {
		span.RecordError(errors.Wrap(err, "session refresh failed"))
		if session, ok := u.Current(userID); ok {
			session.Stale = true
			return session, nil
		}
		return domain.Session{}, err
	}
	return u.remember(record), nil
}

// Current returns the cached session, if any.
func (u *SessionUsecase) Current(userID string) (domain.Session, bool) {
	cached, ok := u.cache.Get(userID)
	if !ok {
		return domain.Session{}, false
	}
	return cached.(domain.Session), true
}

// Logout drops the cached session.
func (u *SessionUsecase) Logout(userID string) {
	u.cache.Delete(userID)
}

func (u *SessionUsecase) remember(record micromatch.Record) domain.Session {
	session := domain.Session{
		Record:   record,
		CachedAt: u.now(),
	}
	u.cache.Set(record.ID, session, cache.DefaultExpiration)
	return session
}

// profileTemplate reproduces the per-type empty profile the signup page
// seeds before the user fills anything in.
func profileTemplate(userType string) map[string]string {
	profile := map[string]string{
		"firstName":      "",
		"lastName":       "",
		"profilePicture": "",
		"age":            "",
		"location":       "",
		"gender":         "",
	}
	switch userType {
	case micromatch.UserTypeBusiness:
		profile["bio"] = ""
		profile["plan"] = "Free"
		profile["targetAudience"] = ""
		profile["productFocus"] = ""
		profile["brandValues"] = ""
		profile["pricing"] = ""
	case micromatch.UserTypeInfluencer:
		profile["username"] = ""
		profile["targetAudience"] = ""
		profile["platform"] = ""
		profile["followerCount"] = ""
		profile["niches"] = ""
		profile["pricingRange"] = ""
	}
	return profile
}
