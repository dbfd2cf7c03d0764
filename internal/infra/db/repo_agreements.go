package db

import (
	"context"
	"errors"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AgreementRepository struct {
	db *gorm.DB
}

func NewAgreementRepository(db *gorm.DB) *AgreementRepository {
	return &AgreementRepository{db: db}
}

func (r *AgreementRepository) Get(ctx context.Context, batchID int64) (domain.EncryptedAgreement, error) {
	if r.db == nil {
		return domain.EncryptedAgreement{}, errDBUnavailable
	}
	var model AgreementModel
	if err := r.db.WithContext(ctx).First(&model, "batch_id = ?", batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.EncryptedAgreement{}, domain.ErrNotFound
		}
		return domain.EncryptedAgreement{}, err
	}
	return agreementFromModel(model), nil
}

// Upsert overwrites the batch row wholesale: while a batch is open, the
// last submission wins.
func (r *AgreementRepository) Upsert(ctx context.Context, agreement domain.EncryptedAgreement) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := AgreementModel{
		BatchID:      agreement.BatchID,
		Provider:     agreement.Provider.String(),
		AssetID:      copyBytes(agreement.AssetID),
		PricePerDay:  copyBytes(agreement.PricePerDay),
		DurationDays: copyBytes(agreement.DurationDays),
		Collateral:   copyBytes(agreement.Collateral),
		Active:       copyBytes(agreement.Active),
		SubmittedAt:  agreement.SubmittedAt.UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "batch_id"}},
			UpdateAll: true,
		}).
		Create(&model).Error
}

func agreementFromModel(model AgreementModel) domain.EncryptedAgreement {
	return domain.EncryptedAgreement{
		BatchID:      model.BatchID,
		Provider:     domain.Address(model.Provider),
		AssetID:      domain.Handle(copyBytes(model.AssetID)),
		PricePerDay:  domain.Handle(copyBytes(model.PricePerDay)),
		DurationDays: domain.Handle(copyBytes(model.DurationDays)),
		Collateral:   domain.Handle(copyBytes(model.Collateral)),
		Active:       domain.Handle(copyBytes(model.Active)),
		SubmittedAt:  model.SubmittedAt.UTC(),
	}
}
