package domain

import (
	"context"
	"time"
)

// CooldownScope names one of the two independently rate-limited actions.
type CooldownScope string

const (
	CooldownSubmit  CooldownScope = "submit"
	CooldownDecrypt CooldownScope = "decrypt"
)

type CooldownDecision struct {
	Allowed     bool
	NextAllowed time.Time
}

// CooldownGate enforces per-address "earliest next allowed" windows.
// Reserve admits the caller iff its window has elapsed and, on admission,
// atomically pushes the next-allowed timestamp out by the window.
type CooldownGate interface {
	Reserve(ctx context.Context, scope CooldownScope, addr Address, window time.Duration) (CooldownDecision, error)
	NextAllowed(ctx context.Context, scope CooldownScope, addr Address) (time.Time, error)
}
