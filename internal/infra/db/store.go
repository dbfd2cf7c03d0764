package db

import (
	"context"
	"fmt"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/config"
	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/usecase"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

func NewStore(cfg config.Config) (*Store, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}
	gdb, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{DB: gdb}, nil
}

func (s *Store) Migrate() error {
	return s.DB.AutoMigrate(
		&InstanceConfigModel{},
		&ProviderModel{},
		&BatchModel{},
		&AgreementModel{},
		&DecryptionContextModel{},
		&EventModel{},
		&EventSeqModel{},
	)
}

// Stores binds one repository set to the given handle, which may be the
// root connection or a transaction.
func Stores(gdb *gorm.DB) usecase.Stores {
	return usecase.Stores{
		Config:     NewConfigRepository(gdb),
		Providers:  NewProviderRepository(gdb),
		Batches:    NewBatchRepository(gdb),
		Agreements: NewAgreementRepository(gdb),
		Contexts:   NewContextRepository(gdb),
		Events:     NewEventRepository(gdb),
	}
}

func (s *Store) Stores() usecase.Stores {
	return Stores(s.DB)
}

// InTransaction satisfies usecase.TxRunner: fn's repositories all ride the
// same database transaction, so a compound mutation commits or rolls back
// as a unit.
func (s *Store) InTransaction(ctx context.Context, fn func(usecase.Stores) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Stores(tx))
	})
}
