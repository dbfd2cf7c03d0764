package db

import (
	"context"
	"errors"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"

	"gorm.io/gorm"
)

const instanceConfigID = 1

type ConfigRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

func (r *ConfigRepository) Get(ctx context.Context) (domain.InstanceConfig, error) {
	if r.db == nil {
		return domain.InstanceConfig{}, errDBUnavailable
	}
	var model InstanceConfigModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", instanceConfigID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.InstanceConfig{}, domain.ErrNotFound
		}
		return domain.InstanceConfig{}, err
	}
	return domain.InstanceConfig{
		Owner:           domain.Address(model.Owner),
		Paused:          model.Paused,
		CooldownSeconds: model.CooldownSeconds,
		InstanceAddress: domain.Address(model.InstanceAddress),
		UpdatedAt:       model.UpdatedAt.UTC(),
	}, nil
}

func (r *ConfigRepository) Save(ctx context.Context, cfg domain.InstanceConfig) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := InstanceConfigModel{
		ID:              instanceConfigID,
		Owner:           cfg.Owner.String(),
		Paused:          cfg.Paused,
		CooldownSeconds: cfg.CooldownSeconds,
		InstanceAddress: cfg.InstanceAddress.String(),
		UpdatedAt:       cfg.UpdatedAt.UTC(),
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

// Bootstrap inserts the config row on first start; it is a no-op once the
// row exists, so env-provided bootstrap values never overwrite live state.
func (r *ConfigRepository) Bootstrap(ctx context.Context, owner, instance domain.Address, cooldownSeconds int) error {
	if r.db == nil {
		return errDBUnavailable
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&InstanceConfigModel{}).Where("id = ?", instanceConfigID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	model := InstanceConfigModel{
		ID:              instanceConfigID,
		Owner:           owner.String(),
		Paused:          false,
		CooldownSeconds: cooldownSeconds,
		InstanceAddress: instance.String(),
		UpdatedAt:       time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&model).Error
}
