package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
)

func newAdminService(state *memState, clock *fakeClock) *AdminService {
	return &AdminService{
		Stores: state.stores(),
		Tx:     state,
		Policy: stubPolicy{},
		Now:    clock.Now,
	}
}

func TestTransferOwnershipRequiresOwner(t *testing.T) {
	state, clock := newFixture(0)
	svc := newAdminService(state, clock)

	err := svc.TransferOwnership(context.Background(), testOutsider, testProvider)
	if !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestTransferOwnershipToSelfStillEmits(t *testing.T) {
	state, clock := newFixture(0)
	svc := newAdminService(state, clock)

	if err := svc.TransferOwnership(context.Background(), testOwner, testOwner); err != nil {
		t.Fatalf("TransferOwnership: %v", err)
	}
	events, _ := state.stores().Events.List(context.Background())
	if len(events) != 1 || events[0].EventType != domain.EventOwnershipTransferred {
		t.Fatalf("expected one ownership.transferred event, got %+v", events)
	}
}

func TestTransferOwnershipMovesAdminRights(t *testing.T) {
	state, clock := newFixture(0)
	svc := newAdminService(state, clock)

	if err := svc.TransferOwnership(context.Background(), testOwner, testOutsider); err != nil {
		t.Fatalf("TransferOwnership: %v", err)
	}
	if err := svc.Pause(context.Background(), testOwner); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("old owner must lose admin rights, got %v", err)
	}
	if err := svc.Pause(context.Background(), testOutsider); err != nil {
		t.Fatalf("new owner must gain admin rights, got %v", err)
	}
}

func TestAddProviderIsIdempotent(t *testing.T) {
	state, clock := newFixture(0)
	svc := newAdminService(state, clock)

	if err := svc.AddProvider(context.Background(), testOwner, testProvider); err != nil {
		t.Fatalf("AddProvider: %v", err)
	}
	if err := svc.AddProvider(context.Background(), testOwner, testProvider); err != nil {
		t.Fatalf("repeat AddProvider must succeed, got %v", err)
	}
	events, _ := state.stores().Events.List(context.Background())
	if len(events) != 1 {
		t.Fatalf("repeat add must not emit a second event, got %d events", len(events))
	}
}

func TestRemoveProviderIsIdempotent(t *testing.T) {
	state, clock := newFixture(0)
	svc := newAdminService(state, clock)

	if err := svc.AddProvider(context.Background(), testOwner, testProvider); err != nil {
		t.Fatalf("AddProvider: %v", err)
	}
	if err := svc.RemoveProvider(context.Background(), testOwner, testProvider); err != nil {
		t.Fatalf("RemoveProvider: %v", err)
	}
	if err := svc.RemoveProvider(context.Background(), testOwner, testProvider); err != nil {
		t.Fatalf("removing an absent provider must succeed, got %v", err)
	}
	events, _ := state.stores().Events.List(context.Background())
	if len(events) != 2 {
		t.Fatalf("expected add+remove events only, got %d", len(events))
	}
}

// raceTxRunner runs a hook just before the transaction body, standing in for
// a concurrent writer whose transaction commits first.
type raceTxRunner struct {
	state  *memState
	before func()
}

func (r *raceTxRunner) InTransaction(ctx context.Context, fn func(Stores) error) error {
	if r.before != nil {
		r.before()
		r.before = nil
	}
	return r.state.InTransaction(ctx, fn)
}

func TestAddProviderLosingConcurrentRaceIsNoOp(t *testing.T) {
	state, clock := newFixture(0)
	svc := newAdminService(state, clock)
	svc.Tx = &raceTxRunner{state: state, before: func() {
		state.providers[testProvider] = domain.Provider{Address: testProvider, AddedAt: clock.Now()}
	}}

	if err := svc.AddProvider(context.Background(), testOwner, testProvider); err != nil {
		t.Fatalf("add racing an identical add must be a no-op, got %v", err)
	}
	events, _ := state.stores().Events.List(context.Background())
	if len(events) != 0 {
		t.Fatalf("the losing add must not emit an event, got %d", len(events))
	}
}

func TestRemoveProviderLosingConcurrentRaceIsNoOp(t *testing.T) {
	state, clock := newFixture(0)
	svc := newAdminService(state, clock)
	if err := svc.AddProvider(context.Background(), testOwner, testProvider); err != nil {
		t.Fatalf("AddProvider: %v", err)
	}
	svc.Tx = &raceTxRunner{state: state, before: func() {
		delete(state.providers, testProvider)
	}}

	if err := svc.RemoveProvider(context.Background(), testOwner, testProvider); err != nil {
		t.Fatalf("remove racing an identical remove must be a no-op, got %v", err)
	}
	events, _ := state.stores().Events.List(context.Background())
	if len(events) != 1 {
		t.Fatalf("the losing remove must not emit an event, got %d", len(events))
	}
}

func TestPauseUnpauseStateMachine(t *testing.T) {
	state, clock := newFixture(0)
	svc := newAdminService(state, clock)
	ctx := context.Background()

	if err := svc.Unpause(ctx, testOwner); !errors.Is(err, domain.ErrNotPaused) {
		t.Fatalf("unpause while running: expected ErrNotPaused, got %v", err)
	}
	if err := svc.Pause(ctx, testOwner); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := svc.Pause(ctx, testOwner); !errors.Is(err, domain.ErrAlreadyPaused) {
		t.Fatalf("pause while paused: expected ErrAlreadyPaused, got %v", err)
	}
	if err := svc.Unpause(ctx, testOwner); err != nil {
		t.Fatalf("Unpause: %v", err)
	}
	events, _ := state.stores().Events.List(ctx)
	if len(events) != 2 {
		t.Fatalf("expected paused+unpaused events, got %d", len(events))
	}
}

func TestAdminAvailableWhilePaused(t *testing.T) {
	state, clock := newFixture(0)
	svc := newAdminService(state, clock)
	ctx := context.Background()

	if err := svc.Pause(ctx, testOwner); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := svc.AddProvider(ctx, testOwner, testProvider); err != nil {
		t.Fatalf("provider management must work while paused, got %v", err)
	}
	if err := svc.SetCooldown(ctx, testOwner, 30); err != nil {
		t.Fatalf("cooldown update must work while paused, got %v", err)
	}
	if err := svc.Unpause(ctx, testOwner); err != nil {
		t.Fatalf("Unpause while paused must work, got %v", err)
	}
}

func TestSetCooldownValidatesAndEmits(t *testing.T) {
	state, clock := newFixture(60)
	svc := newAdminService(state, clock)
	ctx := context.Background()

	if err := svc.SetCooldown(ctx, testOwner, -1); !errors.Is(err, domain.ErrInvalidCooldown) {
		t.Fatalf("negative cooldown: expected ErrInvalidCooldown, got %v", err)
	}
	if err := svc.SetCooldown(ctx, testOwner, 0); err != nil {
		t.Fatalf("zero cooldown is a valid disable, got %v", err)
	}
	cfg, _ := state.stores().Config.Get(ctx)
	if cfg.CooldownSeconds != 0 {
		t.Fatalf("expected cooldown 0, got %d", cfg.CooldownSeconds)
	}
	events, _ := state.stores().Events.List(ctx)
	if len(events) != 1 || events[0].EventType != domain.EventCooldownUpdated {
		t.Fatalf("expected one cooldown.updated event, got %+v", events)
	}
}
