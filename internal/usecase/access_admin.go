package usecase

import (
	"context"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
)

// AdminService carries the owner-gated configuration surface: ownership,
// the provider allowlist, the pause flag, and the cooldown value. Admin
// operations stay available while the system is paused; pausing only locks
// the batch, record, and decryption entry points.
type AdminService struct {
	Stores Stores
	Tx     TxRunner
	Policy domain.AccessPolicy
	Now    func() time.Time
}

func (s *AdminService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AdminService) TransferOwnership(ctx context.Context, caller, newOwner domain.Address) error {
	cfg, err := authorize(ctx, s.Stores, s.Policy, domain.ActionTransferOwnership, caller)
	if err != nil {
		return err
	}
	// A transfer to the current owner is not a silent no-op: the config row
	// is rewritten and the event is emitted either way.
	old := cfg.Owner
	return s.Tx.InTransaction(ctx, func(tx Stores) error {
		cfg.Owner = newOwner
		cfg.UpdatedAt = s.now()
		if err := tx.Config.Save(ctx, cfg); err != nil {
			return err
		}
		_, err := tx.Events.Append(ctx, domain.Event{
			EventType: domain.EventOwnershipTransferred,
			Payload: map[string]any{
				"old_owner": old.String(),
				"new_owner": newOwner.String(),
			},
			CreatedAt: s.now(),
		})
		return err
	})
}

func (s *AdminService) AddProvider(ctx context.Context, caller, addr domain.Address) error {
	if _, err := authorize(ctx, s.Stores, s.Policy, domain.ActionAddProvider, caller); err != nil {
		return err
	}
	// The idempotency check rides the insert's transaction so a concurrent
	// add of the same address lands as a no-op, not a duplicate-key error.
	return s.Tx.InTransaction(ctx, func(tx Stores) error {
		exists, err := tx.Providers.Exists(ctx, addr)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if err := tx.Providers.Add(ctx, domain.Provider{Address: addr, AddedAt: s.now()}); err != nil {
			return err
		}
		_, err = tx.Events.Append(ctx, domain.Event{
			EventType: domain.EventProviderAdded,
			Payload:   map[string]any{"address": addr.String()},
			CreatedAt: s.now(),
		})
		return err
	})
}

func (s *AdminService) RemoveProvider(ctx context.Context, caller, addr domain.Address) error {
	if _, err := authorize(ctx, s.Stores, s.Policy, domain.ActionRemoveProvider, caller); err != nil {
		return err
	}
	return s.Tx.InTransaction(ctx, func(tx Stores) error {
		exists, err := tx.Providers.Exists(ctx, addr)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}
		if err := tx.Providers.Remove(ctx, addr); err != nil {
			return err
		}
		_, err = tx.Events.Append(ctx, domain.Event{
			EventType: domain.EventProviderRemoved,
			Payload:   map[string]any{"address": addr.String()},
			CreatedAt: s.now(),
		})
		return err
	})
}

func (s *AdminService) Pause(ctx context.Context, caller domain.Address) error {
	cfg, err := authorize(ctx, s.Stores, s.Policy, domain.ActionPause, caller)
	if err != nil {
		return err
	}
	if cfg.Paused {
		return domain.ErrAlreadyPaused
	}
	return s.setPaused(ctx, cfg, true, domain.EventSystemPaused)
}

func (s *AdminService) Unpause(ctx context.Context, caller domain.Address) error {
	cfg, err := authorize(ctx, s.Stores, s.Policy, domain.ActionUnpause, caller)
	if err != nil {
		return err
	}
	if !cfg.Paused {
		return domain.ErrNotPaused
	}
	return s.setPaused(ctx, cfg, false, domain.EventSystemUnpaused)
}

func (s *AdminService) setPaused(ctx context.Context, cfg domain.InstanceConfig, paused bool, eventType domain.EventType) error {
	return s.Tx.InTransaction(ctx, func(tx Stores) error {
		cfg.Paused = paused
		cfg.UpdatedAt = s.now()
		if err := tx.Config.Save(ctx, cfg); err != nil {
			return err
		}
		_, err := tx.Events.Append(ctx, domain.Event{
			EventType: eventType,
			Payload:   map[string]any{},
			CreatedAt: s.now(),
		})
		return err
	})
}

func (s *AdminService) SetCooldown(ctx context.Context, caller domain.Address, seconds int) error {
	cfg, err := authorize(ctx, s.Stores, s.Policy, domain.ActionSetCooldown, caller)
	if err != nil {
		return err
	}
	if seconds < 0 {
		return domain.ErrInvalidCooldown
	}
	old := cfg.CooldownSeconds
	return s.Tx.InTransaction(ctx, func(tx Stores) error {
		cfg.CooldownSeconds = seconds
		cfg.UpdatedAt = s.now()
		if err := tx.Config.Save(ctx, cfg); err != nil {
			return err
		}
		_, err := tx.Events.Append(ctx, domain.Event{
			EventType: domain.EventCooldownUpdated,
			Payload: map[string]any{
				"old_seconds": old,
				"new_seconds": seconds,
			},
			CreatedAt: s.now(),
		})
		return err
	})
}
