package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
)

// RequestDecryption issues an oracle decryption request for a closed batch.
// Any address may request: the agreement is already committed and public
// disclosure is the intended end-state, so only the cooldown and the pause
// flag gate the call.
type RequestDecryption struct {
	Stores    Stores
	Tx        TxRunner
	Policy    domain.AccessPolicy
	Cooldowns domain.CooldownGate
	Oracle    domain.OracleGateway
	Now       func() time.Time
}

func (s *RequestDecryption) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *RequestDecryption) Execute(ctx context.Context, caller domain.Address, batchID int64) (domain.DecryptionContext, error) {
	cfg, err := authorize(ctx, s.Stores, s.Policy, domain.ActionRequestDecryption, caller)
	if err != nil {
		return domain.DecryptionContext{}, err
	}
	if batchID <= 0 {
		return domain.DecryptionContext{}, domain.ErrInvalidBatch
	}
	current, err := s.Stores.Batches.CurrentID(ctx)
	if err != nil {
		return domain.DecryptionContext{}, err
	}
	if batchID > current {
		return domain.DecryptionContext{}, domain.ErrInvalidBatch
	}
	batch, err := s.Stores.Batches.Get(ctx, batchID)
	if err != nil {
		return domain.DecryptionContext{}, err
	}
	if !batch.Closed() {
		// Decryption is only meaningful against frozen state.
		return domain.DecryptionContext{}, domain.ErrBatchNotClosed
	}
	agreement, err := s.Stores.Agreements.Get(ctx, batchID)
	if err != nil {
		return domain.DecryptionContext{}, err
	}

	commitment := domain.ComputeCommitment(agreement, cfg.InstanceAddress)

	decision, err := s.Cooldowns.Reserve(ctx, domain.CooldownDecrypt, caller, cfg.Cooldown())
	if err != nil {
		return domain.DecryptionContext{}, err
	}
	if !decision.Allowed {
		return domain.DecryptionContext{}, domain.ErrCooldownActive
	}

	requestID, err := s.Oracle.Request(ctx, agreement.Handles())
	if err != nil {
		return domain.DecryptionContext{}, fmt.Errorf("oracle request: %w", err)
	}

	dc := domain.DecryptionContext{
		RequestID:  requestID,
		BatchID:    batchID,
		Commitment: commitment,
		Processed:  false,
		CreatedAt:  s.now(),
	}
	err = s.Tx.InTransaction(ctx, func(tx Stores) error {
		if err := tx.Contexts.Create(ctx, dc); err != nil {
			return err
		}
		_, err := tx.Events.Append(ctx, domain.Event{
			EventType: domain.EventDecryptionRequested,
			Payload: map[string]any{
				"request_id": requestID,
				"batch_id":   batchID,
			},
			CreatedAt: s.now(),
		})
		return err
	})
	if err != nil {
		return domain.DecryptionContext{}, err
	}
	return dc, nil
}
