package usecase

import (
	"context"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
)

// BatchService drives the open→closed batch lifecycle. Batches are the
// atomic decryption units: closing one is the owner's signal that no
// further writes will land, which is the precondition the decryption
// commitment depends on.
type BatchService struct {
	Stores Stores
	Tx     TxRunner
	Policy domain.AccessPolicy
	Now    func() time.Time
}

func (s *BatchService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Open issues the next batch id and marks it open. It refuses while the
// current batch is still open: at most one batch is writable at a time.
func (s *BatchService) Open(ctx context.Context, caller domain.Address) (int64, error) {
	if _, err := authorize(ctx, s.Stores, s.Policy, domain.ActionOpenBatch, caller); err != nil {
		return 0, err
	}
	var opened int64
	err := s.Tx.InTransaction(ctx, func(tx Stores) error {
		current, err := tx.Batches.CurrentID(ctx)
		if err != nil {
			return err
		}
		if current > 0 {
			batch, err := tx.Batches.Get(ctx, current)
			if err != nil {
				return err
			}
			if !batch.Closed() {
				return domain.ErrBatchStillOpen
			}
		}
		opened = current + 1
		if err := tx.Batches.Open(ctx, domain.Batch{
			ID:       opened,
			Status:   domain.BatchOpen,
			OpenedAt: s.now(),
		}); err != nil {
			return err
		}
		_, err = tx.Events.Append(ctx, domain.Event{
			EventType: domain.EventBatchOpened,
			Payload:   map[string]any{"batch_id": opened},
			CreatedAt: s.now(),
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	return opened, nil
}

// Close freezes a batch. Closing is terminal: a second close on the same id
// fails, and no write ever lands on a closed batch again.
func (s *BatchService) Close(ctx context.Context, caller domain.Address, batchID int64) error {
	if _, err := authorize(ctx, s.Stores, s.Policy, domain.ActionCloseBatch, caller); err != nil {
		return err
	}
	if batchID <= 0 {
		return domain.ErrInvalidBatch
	}
	return s.Tx.InTransaction(ctx, func(tx Stores) error {
		current, err := tx.Batches.CurrentID(ctx)
		if err != nil {
			return err
		}
		if batchID > current {
			return domain.ErrInvalidBatch
		}
		batch, err := tx.Batches.Get(ctx, batchID)
		if err != nil {
			return err
		}
		if batch.Closed() {
			return domain.ErrBatchClosed
		}
		if err := tx.Batches.Close(ctx, batchID, s.now()); err != nil {
			return err
		}
		_, err = tx.Events.Append(ctx, domain.Event{
			EventType: domain.EventBatchClosed,
			Payload:   map[string]any{"batch_id": batchID},
			CreatedAt: s.now(),
		})
		return err
	})
}
