package repository

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/micromatch/micromatch/internal/domain"
)

// watchRetries bounds optimistic transaction restarts when the watched
// key changes under an unconditional write.
const watchRetries = 5

// redisEnvelope is the persisted value layout: the document wrapped
// with its version stamp. Bare JSON values written by other tools are
// still readable and count as version 0.
type redisEnvelope struct {
	Version int64           `json:"v"`
	Doc     json.RawMessage `json:"doc"`
}

type RedisRecordStore struct {
	rdb *redis.Client
}

func NewRedisRecordStore(rdb *redis.Client) *RedisRecordStore {
	return &RedisRecordStore{rdb: rdb}
}

func decodeStored(key string, raw []byte) (json.RawMessage, int64, error) {
	var env redisEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Doc != nil {
		return env.Doc, env.Version, nil
	}
	if !json.Valid(raw) {
		return nil, 0, domain.MalformedDocumentError{Key: key}
	}
	return json.RawMessage(raw), 0, nil
}

func (r *RedisRecordStore) ListAll(ctx context.Context) (map[string]json.RawMessage, error) {
	keys, err := r.rdb.Keys(ctx, "*").Result()
	if err != nil {
		return nil, domain.StoreUnavailableError{Cause: err}
	}

	data := make(map[string]json.RawMessage, len(keys))
	if len(keys) == 0 {
		return data, nil
	}

	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, domain.StoreUnavailableError{Cause: err}
	}

	for i, value := range values {
		str, ok := value.(string)
		if !ok {
			// key vanished between KEYS and MGET
			continue
		}
		doc, _, err := decodeStored(keys[i], []byte(str))
		if err != nil {
			slog.Warn("skipping malformed stored value",
				slog.String("key", keys[i]),
				slog.String("module", "repository"),
			)
			continue
		}
		data[keys[i]] = doc
	}
	return data, nil
}

func (r *RedisRecordStore) Get(ctx context.Context, key string) (json.RawMessage, int64, error) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, 0, domain.NotFoundError{Key: key}
	}
	if err != nil {
		return nil, 0, domain.StoreUnavailableError{Cause: err}
	}
	return decodeStored(key, raw)
}

func (r *RedisRecordStore) Create(ctx context.Context, key string, doc json.RawMessage) error {
	return r.write(ctx, key, doc, domain.AnyVersion, false)
}

func (r *RedisRecordStore) Replace(ctx context.Context, key string, doc json.RawMessage, expected int64) error {
	return r.write(ctx, key, doc, expected, true)
}

// write performs an optimistic read-increment-set transaction on one
// key. The version check happens inside the WATCH window, so a replace
// that passes the check cannot be overtaken by another writer.
func (r *RedisRecordStore) write(ctx context.Context, key string, doc json.RawMessage, expected int64, mustExist bool) error {
	txf := func(tx *redis.Tx) error {
		version := int64(0)
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
			if mustExist {
				return domain.NotFoundError{Key: key}
			}
		case err != nil:
			return domain.StoreUnavailableError{Cause: err}
		default:
			if _, v, decErr := decodeStored(key, raw); decErr == nil {
				version = v
			}
			// a malformed current value is overwritten from version 0
		}

		if expected != domain.AnyVersion && version != expected {
			return domain.ConflictError{Key: key, Expected: expected}
		}

		payload, err := json.Marshal(redisEnvelope{Version: version + 1, Doc: doc})
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return domain.StoreUnavailableError{Cause: err}
		}
		return nil
	}

	for i := 0; i < watchRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return nil
		case err == redis.TxFailedErr:
			if expected != domain.AnyVersion {
				return domain.ConflictError{Key: key, Expected: expected}
			}
			continue
		case errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrConflict),
			errors.Is(err, domain.ErrStoreUnavailable):
			return err
		default:
			return domain.StoreUnavailableError{Cause: err}
		}
	}
	return domain.StoreUnavailableError{Cause: errors.Errorf("write contention on %s", key)}
}

func (r *RedisRecordStore) Delete(ctx context.Context, key string) (bool, error) {
	removed, err := r.rdb.Del(ctx, key).Result()
	if err != nil {
		return false, domain.StoreUnavailableError{Cause: err}
	}
	return removed > 0, nil
}
