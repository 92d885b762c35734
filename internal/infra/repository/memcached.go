package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"

	"github.com/micromatch/micromatch/internal/domain"
	"github.com/micromatch/micromatch/internal/usecase"
)

// cacheTTL is deliberately short: cached reads only have to absorb the
// page-load burst of the explore and profile views.
const cacheTTL = 60 // seconds

type cachedDocument struct {
	Version int64           `json:"v"`
	Doc     json.RawMessage `json:"doc"`
}

// MemcachedRecordStore is a read-through decorator over another record
// store. Only single-key reads are cached; listings always hit the
// backend. A cache failure is never surfaced, the read just falls
// through.
type MemcachedRecordStore struct {
	inner usecase.RecordStore
	mc    *memcache.Client
}

func NewMemcachedRecordStore(inner usecase.RecordStore, mc *memcache.Client) *MemcachedRecordStore {
	return &MemcachedRecordStore{inner: inner, mc: mc}
}

// cacheKey hashes the record key: record ids are arbitrary strings,
// memcache keys must be short and free of spaces and control bytes.
func cacheKey(key string) string {
	return fmt.Sprintf("mm:%016x", xxh3.HashString(key))
}

func (r *MemcachedRecordStore) ListAll(ctx context.Context) (map[string]json.RawMessage, error) {
	return r.inner.ListAll(ctx)
}

func (r *MemcachedRecordStore) Get(ctx context.Context, key string) (json.RawMessage, int64, error) {
	if item, err := r.mc.Get(cacheKey(key)); err == nil {
		var cached cachedDocument
		if err := json.Unmarshal(item.Value, &cached); err == nil {
			return cached.Doc, cached.Version, nil
		}
	}

	doc, version, err := r.inner.Get(ctx, key)
	if err != nil {
		return nil, 0, err
	}

	if payload, err := json.Marshal(cachedDocument{Version: version, Doc: doc}); err == nil {
		_ = r.mc.Set(&memcache.Item{
			Key:        cacheKey(key),
			Value:      payload,
			Expiration: cacheTTL,
		})
	}
	return doc, version, nil
}

func (r *MemcachedRecordStore) Create(ctx context.Context, key string, doc json.RawMessage) error {
	err := r.inner.Create(ctx, key, doc)
	if err == nil {
		_ = r.mc.Delete(cacheKey(key))
	}
	return err
}

func (r *MemcachedRecordStore) Replace(ctx context.Context, key string, doc json.RawMessage, expected int64) error {
	err := r.inner.Replace(ctx, key, doc, expected)
	// a conflict means the cached copy is behind the backend; drop it
	// so the caller's re-read sees the current version
	if err == nil || errors.Is(err, domain.ErrConflict) {
		_ = r.mc.Delete(cacheKey(key))
	}
	return err
}

func (r *MemcachedRecordStore) Delete(ctx context.Context, key string) (bool, error) {
	removed, err := r.inner.Delete(ctx, key)
	if err == nil {
		_ = r.mc.Delete(cacheKey(key))
	}
	return removed, err
}
