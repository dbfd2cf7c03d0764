package domain

import (
	"errors"
	"testing"
)

func testHandle(fill byte) Handle {
	h := make(Handle, HandleSize)
	for i := range h {
		h[i] = fill
	}
	return h
}

func TestHandleInitialized(t *testing.T) {
	if !testHandle(0xaa).Initialized() {
		t.Fatalf("expected 32 non-zero bytes to be initialized")
	}
	if testHandle(0x00).Initialized() {
		t.Fatalf("all-zero handle must not count as initialized")
	}
	if Handle(nil).Initialized() {
		t.Fatalf("nil handle must not count as initialized")
	}
	if make(Handle, HandleSize-1).Initialized() {
		t.Fatalf("short handle must not count as initialized")
	}
	if make(Handle, HandleSize+1).Initialized() {
		t.Fatalf("long handle must not count as initialized")
	}
}

func TestAgreementValidateRejectsUninitializedHandle(t *testing.T) {
	agreement := EncryptedAgreement{
		AssetID:      testHandle(1),
		PricePerDay:  testHandle(2),
		DurationDays: testHandle(3),
		Collateral:   testHandle(4),
		Active:       make(Handle, HandleSize),
	}
	if err := agreement.Validate(); !errors.Is(err, ErrHandleNotInitialized) {
		t.Fatalf("expected ErrHandleNotInitialized, got %v", err)
	}
	agreement.Active = testHandle(5)
	if err := agreement.Validate(); err != nil {
		t.Fatalf("expected valid agreement, got %v", err)
	}
}

func TestHandlesOrderIsStable(t *testing.T) {
	agreement := EncryptedAgreement{
		AssetID:      testHandle(1),
		PricePerDay:  testHandle(2),
		DurationDays: testHandle(3),
		Collateral:   testHandle(4),
		Active:       testHandle(5),
	}
	handles := agreement.Handles()
	for i, want := range []byte{1, 2, 3, 4, 5} {
		if handles[i][0] != want {
			t.Fatalf("handle %d out of order: got fill %d want %d", i, handles[i][0], want)
		}
	}
}
