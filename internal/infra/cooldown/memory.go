package cooldown

import (
	"context"
	"sync"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
)

type memoryGate struct {
	mu   sync.Mutex
	now  func() time.Time
	data map[string]time.Time
}

type MemoryGateConfig struct {
	Now func() time.Time
}

func NewMemoryGate(cfg MemoryGateConfig) domain.CooldownGate {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &memoryGate{
		now:  cfg.Now,
		data: make(map[string]time.Time),
	}
}

func (m *memoryGate) Reserve(_ context.Context, scope domain.CooldownScope, addr domain.Address, window time.Duration) (domain.CooldownDecision, error) {
	if window <= 0 {
		return domain.CooldownDecision{Allowed: true}, nil
	}
	now := m.now()
	key := gateKey(scope, addr)

	m.mu.Lock()
	defer m.mu.Unlock()

	if next, ok := m.data[key]; ok && now.Before(next) {
		return domain.CooldownDecision{Allowed: false, NextAllowed: next}, nil
	}
	next := now.Add(window)
	m.data[key] = next
	return domain.CooldownDecision{Allowed: true, NextAllowed: next}, nil
}

func (m *memoryGate) NextAllowed(_ context.Context, scope domain.CooldownScope, addr domain.Address) (time.Time, error) {
	now := m.now()
	key := gateKey(scope, addr)

	m.mu.Lock()
	defer m.mu.Unlock()

	next, ok := m.data[key]
	if !ok || !now.Before(next) {
		delete(m.data, key)
		return now, nil
	}
	return next, nil
}

func gateKey(scope domain.CooldownScope, addr domain.Address) string {
	return string(scope) + ":" + addr.String()
}
