package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
)

// The fakes below back every usecase test: plain maps guarded by one mutex,
// with the event repository reproducing the hash-chain bookkeeping of the
// database implementation so VerifyEventChain runs against them unchanged.

type memState struct {
	mu sync.Mutex

	cfg        domain.InstanceConfig
	cfgSet     bool
	providers  map[domain.Address]domain.Provider
	batches    map[int64]domain.Batch
	agreements map[int64]domain.EncryptedAgreement
	contexts   map[string]domain.DecryptionContext
	events     []domain.Event

	clock *fakeClock
}

func newMemState(clock *fakeClock) *memState {
	return &memState{
		providers:  make(map[domain.Address]domain.Provider),
		batches:    make(map[int64]domain.Batch),
		agreements: make(map[int64]domain.EncryptedAgreement),
		contexts:   make(map[string]domain.DecryptionContext),
		clock:      clock,
	}
}

func (m *memState) stores() Stores {
	return Stores{
		Config:     (*memConfigRepo)(m),
		Providers:  (*memProviderRepo)(m),
		Batches:    (*memBatchRepo)(m),
		Agreements: (*memAgreementRepo)(m),
		Contexts:   (*memContextRepo)(m),
		Events:     (*memEventRepo)(m),
	}
}

// InTransaction applies fn directly; the fakes do not roll back. Tests that
// exercise atomicity assert on the error paths before any write happens.
func (m *memState) InTransaction(_ context.Context, fn func(Stores) error) error {
	return fn(m.stores())
}

type memConfigRepo memState

func (r *memConfigRepo) Get(context.Context) (domain.InstanceConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.cfgSet {
		return domain.InstanceConfig{}, domain.ErrNotFound
	}
	return r.cfg, nil
}

func (r *memConfigRepo) Save(_ context.Context, cfg domain.InstanceConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
	r.cfgSet = true
	return nil
}

type memProviderRepo memState

func (r *memProviderRepo) Exists(_ context.Context, addr domain.Address) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.providers[addr]
	return ok, nil
}

func (r *memProviderRepo) Add(_ context.Context, provider domain.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Address] = provider
	return nil
}

func (r *memProviderRepo) Remove(_ context.Context, addr domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.providers, addr)
	return nil
}

type memBatchRepo memState

func (r *memBatchRepo) CurrentID(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var max int64
	for id := range r.batches {
		if id > max {
			max = id
		}
	}
	return max, nil
}

func (r *memBatchRepo) Get(_ context.Context, id int64) (domain.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch, ok := r.batches[id]
	if !ok {
		return domain.Batch{}, domain.ErrNotFound
	}
	return batch, nil
}

func (r *memBatchRepo) Open(_ context.Context, batch domain.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[batch.ID] = batch
	return nil
}

func (r *memBatchRepo) Close(_ context.Context, id int64, closedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch, ok := r.batches[id]
	if !ok {
		return domain.ErrNotFound
	}
	if batch.Closed() {
		return domain.ErrBatchClosed
	}
	batch.Status = domain.BatchClosed
	batch.ClosedAt = &closedAt
	r.batches[id] = batch
	return nil
}

type memAgreementRepo memState

func (r *memAgreementRepo) Get(_ context.Context, batchID int64) (domain.EncryptedAgreement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agreement, ok := r.agreements[batchID]
	if !ok {
		return domain.EncryptedAgreement{}, domain.ErrNotFound
	}
	return agreement, nil
}

func (r *memAgreementRepo) Upsert(_ context.Context, agreement domain.EncryptedAgreement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agreements[agreement.BatchID] = agreement
	return nil
}

type memContextRepo memState

func (r *memContextRepo) Get(_ context.Context, requestID string) (domain.DecryptionContext, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dc, ok := r.contexts[requestID]
	if !ok {
		return domain.DecryptionContext{}, domain.ErrNotFound
	}
	return dc, nil
}

func (r *memContextRepo) Create(_ context.Context, dc domain.DecryptionContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts[dc.RequestID] = dc
	return nil
}

func (r *memContextRepo) MarkProcessed(_ context.Context, requestID string, processedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dc, ok := r.contexts[requestID]
	if !ok {
		return domain.ErrNotFound
	}
	if dc.Processed {
		return domain.ErrRequestProcessed
	}
	dc.Processed = true
	dc.ProcessedAt = &processedAt
	r.contexts[requestID] = dc
	return nil
}

type memEventRepo memState

func (r *memEventRepo) Append(_ context.Context, event domain.Event) (domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.clock.Now()
	}
	event.CreatedAt = event.CreatedAt.UTC().Truncate(time.Microsecond)
	if event.Payload == nil {
		event.Payload = map[string]any{}
	}
	payloadJSON, err := json.Marshal(event.Payload)
	if err != nil {
		return domain.Event{}, err
	}
	sum := sha256.Sum256(payloadJSON)
	event.PayloadHash = hex.EncodeToString(sum[:])

	event.Seq = int64(len(r.events)) + 1
	event.ID = fmt.Sprintf("event-%d", event.Seq)
	if event.Seq == 1 {
		event.PrevEventHash = "0000000000000000000000000000000000000000000000000000000000000000"
	} else {
		event.PrevEventHash = r.events[len(r.events)-1].EventHash
	}
	eventHash, err := ComputeEventChainHash(event)
	if err != nil {
		return domain.Event{}, err
	}
	event.EventHash = eventHash
	event.Payload = payloadJSON

	r.events = append(r.events, event)
	return event, nil
}

func (r *memEventRepo) List(context.Context) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// stubPolicy mirrors the embedded rego bundle in Go so usecase tests do not
// depend on the OPA engine; the engine itself has its own tests.
type stubPolicy struct{}

var stubAdminActions = map[domain.PolicyAction]bool{
	domain.ActionTransferOwnership: true,
	domain.ActionAddProvider:       true,
	domain.ActionRemoveProvider:    true,
	domain.ActionPause:             true,
	domain.ActionUnpause:           true,
	domain.ActionSetCooldown:       true,
	domain.ActionOpenBatch:         true,
	domain.ActionCloseBatch:        true,
}

var stubPausedGated = map[domain.PolicyAction]bool{
	domain.ActionOpenBatch:         true,
	domain.ActionCloseBatch:        true,
	domain.ActionSubmitAgreement:   true,
	domain.ActionRequestDecryption: true,
}

func (stubPolicy) Evaluate(_ context.Context, input domain.PolicyInput) (domain.PolicyDecision, error) {
	var deny []domain.PolicyDeny
	if stubPausedGated[input.Action] && input.Paused {
		deny = append(deny, domain.PolicyDeny{Code: "PAUSED"})
	}
	if stubAdminActions[input.Action] && !input.IsOwner {
		deny = append(deny, domain.PolicyDeny{Code: "NOT_OWNER"})
	}
	if input.Action == domain.ActionSubmitAgreement && !input.IsProvider {
		deny = append(deny, domain.PolicyDeny{Code: "NOT_PROVIDER"})
	}
	return domain.PolicyDecision{Allow: len(deny) == 0, Deny: deny}, nil
}

type fakeOracle struct {
	mu       sync.Mutex
	requests [][]domain.Handle
}

func (o *fakeOracle) Request(_ context.Context, handles []domain.Handle) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, handles)
	return fmt.Sprintf("req-%d", len(o.requests)), nil
}

// acceptVerifier approves every proof; tests that exercise proof rejection
// use rejectVerifier or the real ed25519 implementation.
type acceptVerifier struct{}

func (acceptVerifier) Verify(string, []byte, []byte, []byte) error { return nil }

type rejectVerifier struct{}

func (rejectVerifier) Verify(string, []byte, []byte, []byte) error {
	return fmt.Errorf("proof verification failed")
}

const (
	testOwner    = domain.Address("0x00000000000000000000000000000000000000a1")
	testProvider = domain.Address("0x00000000000000000000000000000000000000b2")
	testOutsider = domain.Address("0x00000000000000000000000000000000000000c3")
	testInstance = domain.Address("0x00000000000000000000000000000000000000ee")
)

func testHandle(fill byte) domain.Handle {
	h := make(domain.Handle, domain.HandleSize)
	for i := range h {
		h[i] = fill
	}
	return h
}

func testSubmitRequest() SubmitAgreementRequest {
	return SubmitAgreementRequest{
		AssetID:      testHandle(1),
		PricePerDay:  testHandle(2),
		DurationDays: testHandle(3),
		Collateral:   testHandle(4),
		Active:       testHandle(5),
	}
}

// newFixture seeds the config row and returns the state plus clock.
func newFixture(cooldownSeconds int) (*memState, *fakeClock) {
	clock := newFakeClock()
	state := newMemState(clock)
	state.cfg = domain.InstanceConfig{
		Owner:           testOwner,
		Paused:          false,
		CooldownSeconds: cooldownSeconds,
		InstanceAddress: testInstance,
		UpdatedAt:       clock.Now(),
	}
	state.cfgSet = true
	return state, clock
}
