package usecase

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/micromatch/micromatch"
)

func fetchRecord(ctx context.Context, store RecordStore, key string) (micromatch.Record, int64, error) {
	raw, version, err := store.Get(ctx, key)
	if err != nil {
		return micromatch.Record{}, 0, err
	}
	var record micromatch.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return micromatch.Record{}, 0, errors.Wrapf(err, "record %s is not a user document", key)
	}
	return record, version, nil
}

func storeRecord(ctx context.Context, store RecordStore, record micromatch.Record, expected int64) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return store.Replace(ctx, record.ID, raw, expected)
}
