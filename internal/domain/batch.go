package domain

import "time"

type BatchStatus string

const (
	BatchOpen   BatchStatus = "open"
	BatchClosed BatchStatus = "closed"
)

// Batch is the atomic decryption unit. Ids are strictly increasing from 1.
// Closing is one-way; a closed batch is frozen and only then eligible for
// decryption.
type Batch struct {
	ID       int64
	Status   BatchStatus
	OpenedAt time.Time
	ClosedAt *time.Time
}

func (b Batch) Closed() bool {
	return b.Status == BatchClosed
}
