package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
)

// VerifyEventChain re-walks the append-only log and re-derives every link:
// sequence numbers, payload hashes, and the prev-hash chain. A nil return
// means the log has not been rewritten since it was appended.
func VerifyEventChain(ctx context.Context, repo EventRepository) error {
	if repo == nil {
		return errors.New("event repository required")
	}
	events, err := repo.List(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	expectedSeq := int64(1)
	prevHash := zeroEventHash()
	for _, event := range events {
		if event.Seq != expectedSeq {
			return fmt.Errorf("event chain seq mismatch: expected %d got %d", expectedSeq, event.Seq)
		}
		if event.PrevEventHash != prevHash {
			return fmt.Errorf("event chain prev hash mismatch at seq %d", event.Seq)
		}
		payloadJSON, err := payloadBytes(event.Payload)
		if err != nil {
			return fmt.Errorf("event chain payload decode failed at seq %d: %w", event.Seq, err)
		}
		if sha256Hex(payloadJSON) != event.PayloadHash {
			return fmt.Errorf("event chain payload hash mismatch at seq %d", event.Seq)
		}
		if event.CreatedAt.IsZero() {
			return fmt.Errorf("event chain missing created_at at seq %d", event.Seq)
		}
		expectedHash, err := ComputeEventChainHash(event)
		if err != nil {
			return fmt.Errorf("event chain hash compute failed at seq %d: %w", event.Seq, err)
		}
		if expectedHash != event.EventHash {
			return fmt.Errorf("event chain hash mismatch at seq %d", event.Seq)
		}
		prevHash = event.EventHash
		expectedSeq++
	}
	return nil
}

func payloadBytes(payload any) ([]byte, error) {
	switch v := payload.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("payload must be canonical JSON bytes")
	}
}

// ComputeEventChainHash derives the chain hash of one event from its
// already-computed payload hash and its predecessor's hash.
func ComputeEventChainHash(event domain.Event) (string, error) {
	if event.EventType == "" {
		return "", errors.New("event missing event_type")
	}
	if event.PayloadHash == "" || event.PrevEventHash == "" {
		return "", errors.New("event missing payload_hash or prev_event_hash")
	}
	payload := chainPayload{
		Version:       domain.EventChainVersion,
		Seq:           event.Seq,
		EventType:     string(event.EventType),
		PayloadHash:   event.PayloadHash,
		PrevEventHash: event.PrevEventHash,
		CreatedAt:     event.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	return sha256Hex(payload.CanonicalJSON()), nil
}

func sha256Hex(input []byte) string {
	sum := sha256.Sum256(input)
	return hex.EncodeToString(sum[:])
}

func zeroEventHash() string {
	return "0000000000000000000000000000000000000000000000000000000000000000"
}

type chainPayload struct {
	Version       string
	Seq           int64
	EventType     string
	PayloadHash   string
	PrevEventHash string
	CreatedAt     string
}

// CanonicalJSON writes the chain payload with keys in lexicographic order
// and no whitespace, matching the canonical form the repository hashes.
func (c chainPayload) CanonicalJSON() []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	writeKV(buf, "created_at", c.CreatedAt, false)
	writeKV(buf, "event_type", c.EventType, false)
	writeKV(buf, "payload_hash", c.PayloadHash, false)
	writeKV(buf, "prev_event_hash", c.PrevEventHash, false)
	writeKVNumber(buf, "seq", c.Seq, false)
	writeKV(buf, "v", c.Version, true)
	buf.WriteByte('}')
	return buf.Bytes()
}

func writeKV(buf *bytes.Buffer, key, value string, last bool) {
	writeJSONString(buf, key)
	buf.WriteByte(':')
	writeJSONString(buf, value)
	if !last {
		buf.WriteByte(',')
	}
}

func writeKVNumber(buf *bytes.Buffer, key string, value int64, last bool) {
	writeJSONString(buf, key)
	buf.WriteByte(':')
	buf.WriteString(strconv.FormatInt(value, 10))
	if !last {
		buf.WriteByte(',')
	}
}

func writeJSONString(buf *bytes.Buffer, value string) {
	buf.WriteByte('"')
	for _, r := range value {
		switch r {
		case '"', '\\':
			buf.WriteByte('\\')
			buf.WriteRune(r)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hexLower[r>>4])
				buf.WriteByte(hexLower[r&0x0f])
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

var hexLower = []byte("0123456789abcdef")
