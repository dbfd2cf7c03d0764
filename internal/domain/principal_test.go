package domain

import (
	"errors"
	"testing"
)

func TestParseAddressCanonicalizes(t *testing.T) {
	addr, err := ParseAddress("0xABCDEF0123456789abcdef0123456789ABCDEF01")
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if addr.String() != "0xabcdef0123456789abcdef0123456789abcdef01" {
		t.Fatalf("expected lowercase canonical form, got %s", addr)
	}
}

func TestParseAddressTrimsWhitespace(t *testing.T) {
	addr, err := ParseAddress("  0x0000000000000000000000000000000000000001 ")
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if addr.String() != "0x0000000000000000000000000000000000000001" {
		t.Fatalf("unexpected address %s", addr)
	}
}

func TestParseAddressRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"0x",
		"0x12345",
		"abcdef0123456789abcdef0123456789abcdef0123",
		"0xzzcdef0123456789abcdef0123456789abcdef01",
		"0xabcdef0123456789abcdef0123456789abcdef012",
	}
	for _, raw := range cases {
		if _, err := ParseAddress(raw); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("ParseAddress(%q): expected ErrInvalidAddress, got %v", raw, err)
		}
	}
}
