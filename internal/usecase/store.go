package usecase

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/micromatch/micromatch/internal/domain"
)

// StoreUsecase fronts the record store with the argument checks the API
// promises. Documents stay opaque here; nothing below the lifecycle
// layer interprets them.
type StoreUsecase struct {
	store RecordStore
}

func NewStoreUsecase(store RecordStore) *StoreUsecase {
	return &StoreUsecase{store: store}
}

func (u *StoreUsecase) ListAll(ctx context.Context) (map[string]json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Store.Usecase.ListAll")
	defer span.End()

	data, err := u.store.ListAll(ctx)
	if err != nil {
		span.RecordError(errors.Wrap(err, "list all failed"))
		return nil, err
	}
	return data, nil
}

func (u *StoreUsecase) Get(ctx context.Context, key string) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Store.Usecase.Get")
	defer span.End()

	doc, _, err := u.store.Get(ctx, key)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return doc, nil
}

func (u *StoreUsecase) Create(ctx context.Context, key string, doc json.RawMessage) error {
	ctx, span := tracer.Start(ctx, "Store.Usecase.Create")
	defer span.End()

	if key == "" || emptyDocument(doc) {
		return domain.InvalidArgumentError{Reason: "id and data are required"}
	}
	err := u.store.Create(ctx, key, doc)
	if err != nil {
		span.RecordError(errors.Wrap(err, "create failed"))
		return err
	}
	return nil
}

func (u *StoreUsecase) Replace(ctx context.Context, key string, doc json.RawMessage) error {
	ctx, span := tracer.Start(ctx, "Store.Usecase.Replace")
	defer span.End()

	if emptyDocument(doc) {
		return domain.InvalidArgumentError{Reason: "data is required"}
	}
	err := u.store.Replace(ctx, key, doc, domain.AnyVersion)
	if err != nil {
		span.RecordError(errors.Wrap(err, "replace failed"))
		return err
	}
	return nil
}

func (u *StoreUsecase) Delete(ctx context.Context, key string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Store.Usecase.Delete")
	defer span.End()

	removed, err := u.store.Delete(ctx, key)
	if err != nil {
		span.RecordError(errors.Wrap(err, "delete failed"))
		return false, err
	}
	return removed, nil
}

// emptyDocument mirrors the falsy check of the original API: absent,
// null and empty-string bodies are rejected, `{}` is accepted.
func emptyDocument(doc json.RawMessage) bool {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 {
		return true
	}
	switch string(trimmed) {
	case "null", `""`:
		return true
	}
	return false
}
