package usecase

import (
	"context"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
)

type ConfigRepository interface {
	Get(ctx context.Context) (domain.InstanceConfig, error)
	Save(ctx context.Context, cfg domain.InstanceConfig) error
}

type ProviderRepository interface {
	Exists(ctx context.Context, addr domain.Address) (bool, error)
	Add(ctx context.Context, provider domain.Provider) error
	Remove(ctx context.Context, addr domain.Address) error
}

type BatchRepository interface {
	// CurrentID returns the highest batch id issued so far; 0 before the
	// first batch is opened.
	CurrentID(ctx context.Context) (int64, error)
	Get(ctx context.Context, id int64) (domain.Batch, error)
	Open(ctx context.Context, batch domain.Batch) error
	Close(ctx context.Context, id int64, closedAt time.Time) error
}

type AgreementRepository interface {
	Get(ctx context.Context, batchID int64) (domain.EncryptedAgreement, error)
	// Upsert stores or overwrites the one agreement a batch holds.
	Upsert(ctx context.Context, agreement domain.EncryptedAgreement) error
}

type ContextRepository interface {
	Get(ctx context.Context, requestID string) (domain.DecryptionContext, error)
	Create(ctx context.Context, dc domain.DecryptionContext) error
	// MarkProcessed flips processed false→true; it fails with
	// domain.ErrRequestProcessed if the flag was already set, so the flip is
	// a compare-and-set even under redelivery races.
	MarkProcessed(ctx context.Context, requestID string, processedAt time.Time) error
}

type EventRepository interface {
	Append(ctx context.Context, event domain.Event) (domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
}

// Stores bundles the repositories one operation touches.
type Stores struct {
	Config     ConfigRepository
	Providers  ProviderRepository
	Batches    BatchRepository
	Agreements AgreementRepository
	Contexts   ContextRepository
	Events     EventRepository
}

// TxRunner executes fn with repositories bound to one storage transaction:
// every mutation inside fn commits or rolls back as a unit.
type TxRunner interface {
	InTransaction(ctx context.Context, fn func(Stores) error) error
}
