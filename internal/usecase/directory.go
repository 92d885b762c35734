package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/micromatch/micromatch"
)

// DirectoryUsecase backs the explore view: listing one side of the
// marketplace and filtering it in memory, plus the administrative
// add/remove affordances for influencer profiles.
type DirectoryUsecase struct {
	store RecordStore
	now   func() time.Time
}

func NewDirectoryUsecase(store RecordStore) *DirectoryUsecase {
	return &DirectoryUsecase{
		store: store,
		now:   time.Now,
	}
}

// ListByType returns every record of the given user type, sorted by id
// for stable output. Values that do not decode as user documents are
// skipped.
func (u *DirectoryUsecase) ListByType(ctx context.Context, userType string) ([]micromatch.Record, error) {
	ctx, span := tracer.Start(ctx, "Directory.Usecase.ListByType")
	defer span.End()

	all, err := u.store.ListAll(ctx)
	if err != nil {
		span.RecordError(errors.Wrap(err, "directory listing failed"))
		return nil, err
	}

	records := make([]micromatch.Record, 0, len(all))
	for _, raw := range all {
		var record micromatch.Record
		if err := json.Unmarshal(raw, &record); err != nil {
			continue
		}
		if record.UserType == userType {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// Filter keeps the records whose display name, email or any profile
// value contains the query, case-insensitively. An empty query keeps
// everything.
func Filter(records []micromatch.Record, query string) []micromatch.Record {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return records
	}

	matched := make([]micromatch.Record, 0, len(records))
	for _, record := range records {
		if matchesQuery(record, query) {
			matched = append(matched, record)
		}
	}
	return matched
}

func matchesQuery(record micromatch.Record, query string) bool {
	if strings.Contains(strings.ToLower(record.DisplayName()), query) {
		return true
	}
	if strings.Contains(strings.ToLower(record.Email), query) {
		return true
	}
	for _, value := range record.Profile {
		if strings.Contains(strings.ToLower(value), query) {
			return true
		}
	}
	return false
}

// AddInfluencer creates an influencer record on behalf of an operator.
func (u *DirectoryUsecase) AddInfluencer(ctx context.Context, email string, profile map[string]string) (micromatch.Record, error) {
	ctx, span := tracer.Start(ctx, "Directory.Usecase.AddInfluencer")
	defer span.End()

	record := micromatch.Record{
		ID:           fmt.Sprintf("%s_%d", micromatch.UserTypeInfluencer, u.now().UnixMilli()),
		Email:        email,
		UserType:     micromatch.UserTypeInfluencer,
		Profile:      profile,
		Partnerships: []micromatch.Partnership{},
		Requests:     []micromatch.ConnectionRequest{},
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return micromatch.Record{}, err
	}
	if err := u.store.Create(ctx, record.ID, raw); err != nil {
		span.RecordError(errors.Wrap(err, "add influencer failed"))
		return micromatch.Record{}, err
	}
	return record, nil
}

// RemoveInfluencer deletes an influencer record. It reports whether a
// record was actually removed.
func (u *DirectoryUsecase) RemoveInfluencer(ctx context.Context, id string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Directory.Usecase.RemoveInfluencer")
	defer span.End()

	removed, err := u.store.Delete(ctx, id)
	if err != nil {
		span.RecordError(errors.Wrap(err, "remove influencer failed"))
		return false, err
	}
	return removed, nil
}
