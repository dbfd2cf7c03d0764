package usecase

import (
	"context"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
)

type SubmitAgreementRequest struct {
	AssetID      domain.Handle
	PricePerDay  domain.Handle
	DurationDays domain.Handle
	Collateral   domain.Handle
	Active       domain.Handle
}

// SubmitAgreement stores a provider's encrypted rental agreement into the
// current open batch. Resubmission into the same still-open batch
// overwrites the previous record (last write wins); a closed batch rejects
// all writes.
type SubmitAgreement struct {
	Stores    Stores
	Tx        TxRunner
	Policy    domain.AccessPolicy
	Cooldowns domain.CooldownGate
	Now       func() time.Time
}

func (s *SubmitAgreement) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *SubmitAgreement) Execute(ctx context.Context, caller domain.Address, req SubmitAgreementRequest) (int64, error) {
	cfg, err := authorize(ctx, s.Stores, s.Policy, domain.ActionSubmitAgreement, caller)
	if err != nil {
		return 0, err
	}

	agreement := domain.EncryptedAgreement{
		Provider:     caller,
		AssetID:      req.AssetID.Clone(),
		PricePerDay:  req.PricePerDay.Clone(),
		DurationDays: req.DurationDays.Clone(),
		Collateral:   req.Collateral.Clone(),
		Active:       req.Active.Clone(),
	}
	if err := agreement.Validate(); err != nil {
		return 0, err
	}

	current, err := s.Stores.Batches.CurrentID(ctx)
	if err != nil {
		return 0, err
	}
	if current == 0 {
		return 0, domain.ErrInvalidBatch
	}
	batch, err := s.Stores.Batches.Get(ctx, current)
	if err != nil {
		return 0, err
	}
	if batch.Closed() {
		return 0, domain.ErrBatchClosed
	}

	// The cooldown reserves at the gate, before the write: an admitted
	// attempt counts against the window even if the store later fails,
	// matching the limiter semantics elsewhere in the stack.
	decision, err := s.Cooldowns.Reserve(ctx, domain.CooldownSubmit, caller, cfg.Cooldown())
	if err != nil {
		return 0, err
	}
	if !decision.Allowed {
		return 0, domain.ErrCooldownActive
	}

	agreement.BatchID = current
	agreement.SubmittedAt = s.now()
	err = s.Tx.InTransaction(ctx, func(tx Stores) error {
		if err := tx.Agreements.Upsert(ctx, agreement); err != nil {
			return err
		}
		// The event never carries ciphertext bytes, only the provider and
		// the batch the record landed in.
		_, err := tx.Events.Append(ctx, domain.Event{
			EventType: domain.EventAgreementSubmitted,
			Payload: map[string]any{
				"provider": caller.String(),
				"batch_id": current,
			},
			CreatedAt: s.now(),
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	return current, nil
}
