package db

import "time"

// InstanceConfigModel is a singleton row (id always 1).
type InstanceConfigModel struct {
	ID              int64     `gorm:"primaryKey"`
	Owner           string    `gorm:"not null"`
	Paused          bool      `gorm:"not null"`
	CooldownSeconds int       `gorm:"not null"`
	InstanceAddress string    `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (InstanceConfigModel) TableName() string { return "instance_config" }

type ProviderModel struct {
	Address string    `gorm:"primaryKey"`
	AddedAt time.Time `gorm:"not null"`
}

func (ProviderModel) TableName() string { return "providers" }

type BatchModel struct {
	ID       int64     `gorm:"primaryKey"`
	Status   string    `gorm:"not null"`
	OpenedAt time.Time `gorm:"not null"`
	ClosedAt *time.Time
}

func (BatchModel) TableName() string { return "batches" }

type AgreementModel struct {
	BatchID      int64     `gorm:"primaryKey"`
	Provider     string    `gorm:"index;not null"`
	AssetID      []byte    `gorm:"type:bytea;not null"`
	PricePerDay  []byte    `gorm:"type:bytea;not null"`
	DurationDays []byte    `gorm:"type:bytea;not null"`
	Collateral   []byte    `gorm:"type:bytea;not null"`
	Active       []byte    `gorm:"type:bytea;not null"`
	SubmittedAt  time.Time `gorm:"not null"`
}

func (AgreementModel) TableName() string { return "agreements" }

type DecryptionContextModel struct {
	RequestID   string    `gorm:"primaryKey"`
	BatchID     int64     `gorm:"index;not null"`
	Commitment  []byte    `gorm:"type:bytea;not null"`
	Processed   bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	ProcessedAt *time.Time
}

func (DecryptionContextModel) TableName() string { return "decryption_contexts" }

type EventModel struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	Seq           int64     `gorm:"uniqueIndex;not null"`
	EventType     string    `gorm:"index;not null"`
	PayloadJSON   []byte    `gorm:"type:jsonb;not null"`
	PayloadHash   string    `gorm:"not null"`
	PrevEventHash string    `gorm:"not null"`
	EventHash     string    `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (EventModel) TableName() string { return "events" }

// EventSeqModel is the chain counter row locked FOR UPDATE on append.
type EventSeqModel struct {
	ID  int64 `gorm:"primaryKey"`
	Seq int64 `gorm:"not null"`
}

func (EventSeqModel) TableName() string { return "event_seq" }
