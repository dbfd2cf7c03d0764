package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DecryptionContext is the pending-request record for one oracle exchange.
// It is keyed by the request id the oracle integration issued, permanently
// bound to one batch and one commitment, and never deleted: a processed
// context is the replay guard and the audit trail for its request id.
type DecryptionContext struct {
	RequestID   string
	BatchID     int64
	Commitment  []byte
	Processed   bool
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// ComputeCommitment hashes the ordered five-handle tuple together with the
// instance address. The address binding prevents a proof computed for a
// different deployment from being replayed against this one.
func ComputeCommitment(agreement EncryptedAgreement, instance Address) []byte {
	h := sha256.New()
	for _, handle := range agreement.Handles() {
		h.Write(handle)
	}
	h.Write([]byte(instance))
	return h.Sum(nil)
}

// Cleartext is the decoded five-field decryption result.
type Cleartext struct {
	AssetID      uint64 `json:"asset_id"`
	PricePerDay  uint64 `json:"price_per_day"`
	DurationDays uint64 `json:"duration_days"`
	Collateral   uint64 `json:"collateral"`
	Active       bool   `json:"active"`
}

// CleartextSize is the fixed wire size of an oracle payload: four
// big-endian uint64 fields followed by one boolean byte.
const CleartextSize = 33

// DecodeCleartext decodes the fixed-width payload in declared field order.
func DecodeCleartext(payload []byte) (Cleartext, error) {
	if len(payload) != CleartextSize {
		return Cleartext{}, ErrPayloadMalformed
	}
	if payload[32] > 1 {
		return Cleartext{}, ErrPayloadMalformed
	}
	return Cleartext{
		AssetID:      binary.BigEndian.Uint64(payload[0:8]),
		PricePerDay:  binary.BigEndian.Uint64(payload[8:16]),
		DurationDays: binary.BigEndian.Uint64(payload[16:24]),
		Collateral:   binary.BigEndian.Uint64(payload[24:32]),
		Active:       payload[32] == 1,
	}, nil
}

// EncodeCleartext is the inverse of DecodeCleartext. The service never
// produces payloads itself; this exists for the oracle side of tests and
// tooling.
func EncodeCleartext(c Cleartext) []byte {
	out := make([]byte, CleartextSize)
	binary.BigEndian.PutUint64(out[0:8], c.AssetID)
	binary.BigEndian.PutUint64(out[8:16], c.PricePerDay)
	binary.BigEndian.PutUint64(out[16:24], c.DurationDays)
	binary.BigEndian.PutUint64(out[24:32], c.Collateral)
	if c.Active {
		out[32] = 1
	}
	return out
}
