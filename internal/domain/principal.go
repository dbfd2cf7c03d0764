package domain

import (
	"strings"
	"time"
)

// Address identifies a principal. The canonical form is "0x" followed by
// 40 lowercase hex characters, matching the address space the encrypted
// agreements were originally keyed by.
type Address string

const addressHexLen = 40

func ParseAddress(raw string) (Address, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) != addressHexLen+2 {
		return "", ErrInvalidAddress
	}
	if trimmed[0] != '0' || (trimmed[1] != 'x' && trimmed[1] != 'X') {
		return "", ErrInvalidAddress
	}
	body := strings.ToLower(trimmed[2:])
	for _, r := range body {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return "", ErrInvalidAddress
		}
	}
	return Address("0x" + body), nil
}

func (a Address) String() string {
	return string(a)
}

// Provider is an allowlisted submitter of encrypted agreements.
type Provider struct {
	Address Address
	AddedAt time.Time
}

// InstanceConfig is the single mutable configuration record: the owner,
// the pause flag, and the cooldown applied to both rate-limited actions.
// InstanceAddress binds commitments to this deployment and never changes
// after bootstrap.
type InstanceConfig struct {
	Owner           Address
	Paused          bool
	CooldownSeconds int
	InstanceAddress Address
	UpdatedAt       time.Time
}

func (c InstanceConfig) Cooldown() time.Duration {
	if c.CooldownSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CooldownSeconds) * time.Second
}
