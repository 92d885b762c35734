package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/micromatch/micromatch/internal/domain"
)

// memStore is an in-memory RecordStore honoring the version contract.
type memStore struct {
	docs     map[string]json.RawMessage
	versions map[string]int64
	writes   int
	failAll  error // when set, every operation fails with it
}

func newMemStore() *memStore {
	return &memStore{
		docs:     map[string]json.RawMessage{},
		versions: map[string]int64{},
	}
}

func (m *memStore) ListAll(ctx context.Context) (map[string]json.RawMessage, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	out := make(map[string]json.RawMessage, len(m.docs))
	for k, v := range m.docs {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) Get(ctx context.Context, key string) (json.RawMessage, int64, error) {
	if m.failAll != nil {
		return nil, 0, m.failAll
	}
	doc, ok := m.docs[key]
	if !ok {
		return nil, 0, domain.NotFoundError{Key: key}
	}
	return doc, m.versions[key], nil
}

func (m *memStore) Create(ctx context.Context, key string, doc json.RawMessage) error {
	if m.failAll != nil {
		return m.failAll
	}
	m.docs[key] = doc
	m.versions[key]++
	m.writes++
	return nil
}

func (m *memStore) Replace(ctx context.Context, key string, doc json.RawMessage, expected int64) error {
	if m.failAll != nil {
		return m.failAll
	}
	if _, ok := m.docs[key]; !ok {
		return domain.NotFoundError{Key: key}
	}
	if expected != domain.AnyVersion && m.versions[key] != expected {
		return domain.ConflictError{Key: key, Expected: expected}
	}
	m.docs[key] = doc
	m.versions[key]++
	m.writes++
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) (bool, error) {
	if m.failAll != nil {
		return false, m.failAll
	}
	_, ok := m.docs[key]
	delete(m.docs, key)
	delete(m.versions, key)
	return ok, nil
}

func TestStoreCreateThenGet(t *testing.T) {
	store := newMemStore()
	uc := NewStoreUsecase(store)
	ctx := context.Background()

	doc := json.RawMessage(`{"id":"user_1","email":"a@b.c"}`)
	if err := uc.Create(ctx, "user_1", doc); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := uc.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !bytes.Equal(got, doc) {
		t.Fatalf("expected %s got %s", doc, got)
	}
}

func TestStoreCreateRejectsEmptyArgs(t *testing.T) {
	store := newMemStore()
	uc := NewStoreUsecase(store)
	ctx := context.Background()

	cases := []struct {
		name string
		key  string
		doc  json.RawMessage
	}{
		{"empty key", "", json.RawMessage(`{"x":1}`)},
		{"nil doc", "k", nil},
		{"null doc", "k", json.RawMessage(`null`)},
		{"empty string doc", "k", json.RawMessage(`""`)},
	}
	for _, tc := range cases {
		err := uc.Create(ctx, tc.key, tc.doc)
		if !isInvalidArgument(err) {
			t.Fatalf("%s: expected invalid argument, got %v", tc.name, err)
		}
	}
	if len(store.docs) != 0 {
		t.Fatalf("expected no writes, got %d entries", len(store.docs))
	}
}

func TestStoreCreateOverwritesExisting(t *testing.T) {
	store := newMemStore()
	uc := NewStoreUsecase(store)
	ctx := context.Background()

	if err := uc.Create(ctx, "k", json.RawMessage(`{"v":1}`)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := uc.Create(ctx, "k", json.RawMessage(`{"v":2}`)); err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	got, _ := uc.Get(ctx, "k")
	if string(got) != `{"v":2}` {
		t.Fatalf("expected overwrite, got %s", got)
	}
}

func TestStoreReplaceMissingKey(t *testing.T) {
	store := newMemStore()
	uc := NewStoreUsecase(store)
	ctx := context.Background()

	err := uc.Replace(ctx, "absent", json.RawMessage(`{"x":1}`))
	if !isNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, ok := store.docs["absent"]; ok {
		t.Fatalf("replace must not create the key")
	}
}

func TestStoreReplaceIdempotent(t *testing.T) {
	store := newMemStore()
	uc := NewStoreUsecase(store)
	ctx := context.Background()

	doc := json.RawMessage(`{"id":"k","email":"a@b.c"}`)
	if err := uc.Create(ctx, "k", doc); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := uc.Replace(ctx, "k", doc); err != nil {
			t.Fatalf("replace %d failed: %v", i, err)
		}
	}

	got, _ := uc.Get(ctx, "k")
	if !bytes.Equal(got, doc) {
		t.Fatalf("expected %s got %s", doc, got)
	}
}

func TestStoreDeleteMissingKey(t *testing.T) {
	store := newMemStore()
	uc := NewStoreUsecase(store)
	ctx := context.Background()

	removed, err := uc.Delete(ctx, "absent")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if removed {
		t.Fatalf("expected nothing removed")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func isInvalidArgument(err error) bool {
	return errors.Is(err, domain.ErrInvalidArgument)
}
