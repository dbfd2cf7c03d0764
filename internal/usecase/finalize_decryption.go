package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
)

// FinalizeDecryption consumes an oracle callback. The three guards run in
// order — replay, state integrity, proof — and the whole exchange commits
// atomically: either every check passes and the processed flag flips once,
// or nothing changes. A failed proof leaves the context pending so the
// oracle may redeliver a corrected callback under the same request id.
type FinalizeDecryption struct {
	Stores   Stores
	Tx       TxRunner
	Verifier domain.ProofVerifier
	Now      func() time.Time
}

func (s *FinalizeDecryption) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

type FinalizeResult struct {
	RequestID string
	BatchID   int64
	Cleartext domain.Cleartext
}

func (s *FinalizeDecryption) Execute(ctx context.Context, requestID string, payload, proof []byte) (FinalizeResult, error) {
	var result FinalizeResult
	err := s.Tx.InTransaction(ctx, func(tx Stores) error {
		dc, err := tx.Contexts.Get(ctx, requestID)
		if err != nil {
			return err
		}
		// The replay guard fires before anything else, so a redelivered
		// callback reports ErrRequestProcessed even while paused.
		if dc.Processed {
			return domain.ErrRequestProcessed
		}
		cfg, err := tx.Config.Get(ctx)
		if err != nil {
			return err
		}
		if cfg.Paused {
			return domain.ErrSystemPaused
		}

		// Re-derive the commitment from the ciphertexts as they exist now.
		// A mismatch means the data drifted between request and fulfillment
		// and the oracle is answering against stale state.
		agreement, err := tx.Agreements.Get(ctx, dc.BatchID)
		if err != nil {
			return err
		}
		recomputed := domain.ComputeCommitment(agreement, cfg.InstanceAddress)
		if !bytes.Equal(recomputed, dc.Commitment) {
			return domain.ErrCommitmentMismatch
		}

		if err := s.Verifier.Verify(requestID, dc.Commitment, payload, proof); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrProofInvalid, err)
		}

		cleartext, err := domain.DecodeCleartext(payload)
		if err != nil {
			return err
		}

		if err := tx.Contexts.MarkProcessed(ctx, requestID, s.now()); err != nil {
			return err
		}
		_, err = tx.Events.Append(ctx, domain.Event{
			EventType: domain.EventDecryptionCompleted,
			Payload: map[string]any{
				"request_id":    requestID,
				"batch_id":      dc.BatchID,
				"asset_id":      cleartext.AssetID,
				"price_per_day": cleartext.PricePerDay,
				"duration_days": cleartext.DurationDays,
				"collateral":    cleartext.Collateral,
				"active":        cleartext.Active,
			},
			CreatedAt: s.now(),
		})
		if err != nil {
			return err
		}
		result = FinalizeResult{
			RequestID: requestID,
			BatchID:   dc.BatchID,
			Cleartext: cleartext,
		}
		return nil
	})
	if err != nil {
		return FinalizeResult{}, err
	}
	return result, nil
}
