package usecase

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("usecase")

// RecordStore defines keyed storage of opaque JSON documents. Get
// returns the stored document together with its version stamp; Replace
// fails with domain.ConflictError when the stored version no longer
// matches the expected one, and accepts domain.AnyVersion to skip the
// check.
type RecordStore interface {
	ListAll(ctx context.Context) (map[string]json.RawMessage, error)
	Get(ctx context.Context, key string) (json.RawMessage, int64, error)
	Create(ctx context.Context, key string, doc json.RawMessage) error
	Replace(ctx context.Context, key string, doc json.RawMessage, expected int64) error
	Delete(ctx context.Context, key string) (bool, error)
}
