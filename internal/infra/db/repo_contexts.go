package db

import (
	"context"
	"errors"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"

	"gorm.io/gorm"
)

type ContextRepository struct {
	db *gorm.DB
}

func NewContextRepository(db *gorm.DB) *ContextRepository {
	return &ContextRepository{db: db}
}

func (r *ContextRepository) Get(ctx context.Context, requestID string) (domain.DecryptionContext, error) {
	if r.db == nil {
		return domain.DecryptionContext{}, errDBUnavailable
	}
	var model DecryptionContextModel
	if err := r.db.WithContext(ctx).First(&model, "request_id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DecryptionContext{}, domain.ErrNotFound
		}
		return domain.DecryptionContext{}, err
	}
	return contextFromModel(model), nil
}

func (r *ContextRepository) Create(ctx context.Context, dc domain.DecryptionContext) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := DecryptionContextModel{
		RequestID:  dc.RequestID,
		BatchID:    dc.BatchID,
		Commitment: copyBytes(dc.Commitment),
		Processed:  dc.Processed,
		CreatedAt:  dc.CreatedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// MarkProcessed flips the processed flag with a guarded UPDATE so that two
// concurrent callbacks for the same request id cannot both succeed.
func (r *ContextRepository) MarkProcessed(ctx context.Context, requestID string, processedAt time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	processedAt = processedAt.UTC()
	result := r.db.WithContext(ctx).
		Model(&DecryptionContextModel{}).
		Where("request_id = ? AND processed = ?", requestID, false).
		Updates(map[string]any{
			"processed":    true,
			"processed_at": processedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&DecryptionContextModel{}).
			Where("request_id = ?", requestID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrRequestProcessed
	}
	return nil
}

func contextFromModel(model DecryptionContextModel) domain.DecryptionContext {
	dc := domain.DecryptionContext{
		RequestID:  model.RequestID,
		BatchID:    model.BatchID,
		Commitment: copyBytes(model.Commitment),
		Processed:  model.Processed,
		CreatedAt:  model.CreatedAt.UTC(),
	}
	if model.ProcessedAt != nil {
		processed := model.ProcessedAt.UTC()
		dc.ProcessedAt = &processed
	}
	return dc
}
