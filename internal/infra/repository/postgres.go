package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/micromatch/micromatch/internal/domain"
	"github.com/micromatch/micromatch/internal/infra/database/models"
)

// PostgresRecordStore keeps each document as one row, with a version
// column backing the conditional replace.
type PostgresRecordStore struct {
	db *gorm.DB
}

func NewPostgresRecordStore(db *gorm.DB) *PostgresRecordStore {
	return &PostgresRecordStore{db: db}
}

func (r *PostgresRecordStore) ListAll(ctx context.Context) (map[string]json.RawMessage, error) {
	var rows []models.Record
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, domain.StoreUnavailableError{Cause: err}
	}

	data := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		if !json.Valid([]byte(row.Document)) {
			slog.Warn("skipping malformed stored value",
				slog.String("key", row.Key),
				slog.String("module", "repository"),
			)
			continue
		}
		data[row.Key] = json.RawMessage(row.Document)
	}
	return data, nil
}

func (r *PostgresRecordStore) Get(ctx context.Context, key string) (json.RawMessage, int64, error) {
	var row models.Record
	err := r.db.WithContext(ctx).Take(&row, "key = ?", key).Error
	if err == gorm.ErrRecordNotFound {
		return nil, 0, domain.NotFoundError{Key: key}
	}
	if err != nil {
		return nil, 0, domain.StoreUnavailableError{Cause: err}
	}
	if !json.Valid([]byte(row.Document)) {
		return nil, 0, domain.MalformedDocumentError{Key: key}
	}
	return json.RawMessage(row.Document), row.Version, nil
}

func (r *PostgresRecordStore) Create(ctx context.Context, key string, doc json.RawMessage) error {
	now := time.Now()
	row := models.Record{
		Key:      key,
		Document: string(doc),
		Version:  1,
		CDate:    now,
		MDate:    now,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"document": string(doc),
			"version":  gorm.Expr("records.version + 1"),
			"m_date":   now,
		}),
	}).Create(&row).Error
	if err != nil {
		return domain.StoreUnavailableError{Cause: err}
	}
	return nil
}

func (r *PostgresRecordStore) Replace(ctx context.Context, key string, doc json.RawMessage, expected int64) error {
	query := r.db.WithContext(ctx).Model(&models.Record{}).Where("key = ?", key)
	if expected != domain.AnyVersion {
		query = query.Where("version = ?", expected)
	}

	res := query.Updates(map[string]any{
		"document": string(doc),
		"version":  gorm.Expr("version + 1"),
		"m_date":   time.Now(),
	})
	if res.Error != nil {
		return domain.StoreUnavailableError{Cause: res.Error}
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Record{}).Where("key = ?", key).Count(&count).Error
	if err != nil {
		return domain.StoreUnavailableError{Cause: err}
	}
	if count == 0 {
		return domain.NotFoundError{Key: key}
	}
	return domain.ConflictError{Key: key, Expected: expected}
}

func (r *PostgresRecordStore) Delete(ctx context.Context, key string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Record{}, "key = ?", key)
	if res.Error != nil {
		return false, domain.StoreUnavailableError{Cause: res.Error}
	}
	return res.RowsAffected > 0, nil
}
