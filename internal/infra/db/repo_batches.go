package db

import (
	"context"
	"errors"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"

	"gorm.io/gorm"
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) CurrentID(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var maxID *int64
	err := r.db.WithContext(ctx).
		Model(&BatchModel{}).
		Select("MAX(id)").
		Scan(&maxID).Error
	if err != nil {
		return 0, err
	}
	if maxID == nil {
		return 0, nil
	}
	return *maxID, nil
}

func (r *BatchRepository) Get(ctx context.Context, id int64) (domain.Batch, error) {
	if r.db == nil {
		return domain.Batch{}, errDBUnavailable
	}
	var model BatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Batch{}, domain.ErrNotFound
		}
		return domain.Batch{}, err
	}
	return batchFromModel(model), nil
}

func (r *BatchRepository) Open(ctx context.Context, batch domain.Batch) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := BatchModel{
		ID:       batch.ID,
		Status:   string(batch.Status),
		OpenedAt: batch.OpenedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *BatchRepository) Close(ctx context.Context, id int64, closedAt time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	closedAt = closedAt.UTC()
	result := r.db.WithContext(ctx).
		Model(&BatchModel{}).
		Where("id = ? AND status = ?", id, string(domain.BatchOpen)).
		Updates(map[string]any{
			"status":    string(domain.BatchClosed),
			"closed_at": closedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrBatchClosed
	}
	return nil
}

func batchFromModel(model BatchModel) domain.Batch {
	batch := domain.Batch{
		ID:       model.ID,
		Status:   domain.BatchStatus(model.Status),
		OpenedAt: model.OpenedAt.UTC(),
	}
	if model.ClosedAt != nil {
		closed := model.ClosedAt.UTC()
		batch.ClosedAt = &closed
	}
	return batch
}
