package domain

import "time"

// HandleSize is the width of a ciphertext handle as issued by the FHE
// co-processor. Handles are opaque: equality is defined, arithmetic is not.
const HandleSize = 32

// Handle is an opaque reference to a homomorphically-encrypted value.
type Handle []byte

// Initialized reports whether the handle is a validly-constructed
// ciphertext reference: exactly HandleSize bytes, not all zero.
func (h Handle) Initialized() bool {
	if len(h) != HandleSize {
		return false
	}
	for _, b := range h {
		if b != 0 {
			return true
		}
	}
	return false
}

func (h Handle) Clone() Handle {
	if h == nil {
		return nil
	}
	out := make(Handle, len(h))
	copy(out, h)
	return out
}

// EncryptedAgreement is the one encrypted rental-agreement record a batch
// holds: five ciphertext handles in declared order.
type EncryptedAgreement struct {
	BatchID      int64
	Provider     Address
	AssetID      Handle
	PricePerDay  Handle
	DurationDays Handle
	Collateral   Handle
	Active       Handle
	SubmittedAt  time.Time
}

// Handles returns the five ciphertext handles in declared order. The order
// is load-bearing: commitments and oracle requests both consume it.
func (a EncryptedAgreement) Handles() []Handle {
	return []Handle{a.AssetID, a.PricePerDay, a.DurationDays, a.Collateral, a.Active}
}

// Validate rejects the record if any handle is uninitialized.
func (a EncryptedAgreement) Validate() error {
	for _, h := range a.Handles() {
		if !h.Initialized() {
			return ErrHandleNotInitialized
		}
	}
	return nil
}
