package db

import (
	"context"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"

	"gorm.io/gorm"
)

type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) Exists(ctx context.Context, addr domain.Address) (bool, error) {
	if r.db == nil {
		return false, errDBUnavailable
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ProviderModel{}).
		Where("address = ?", addr.String()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ProviderRepository) Add(ctx context.Context, provider domain.Provider) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := ProviderModel{
		Address: provider.Address.String(),
		AddedAt: provider.AddedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *ProviderRepository) Remove(ctx context.Context, addr domain.Address) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).
		Where("address = ?", addr.String()).
		Delete(&ProviderModel{}).Error
}
