package oracle

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// proofDomainTag separates oracle decryption proofs from any other message
// the oracle key might sign.
const proofDomainTag = "rentasset.decryption.v1"

// Verifier checks the ed25519 proof attached to a decryption callback. The
// signed message binds the request id, the stored commitment, and the
// cleartext payload, so a proof cannot be moved between requests or results.
type Verifier struct {
	publicKey ed25519.PublicKey
}

func NewVerifier(publicKeyBase64 string) (*Verifier, error) {
	if publicKeyBase64 == "" {
		return nil, errors.New("oracle public key is required")
	}
	key, err := base64.StdEncoding.DecodeString(publicKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("invalid oracle public key encoding: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid ed25519 public key length: %d", len(key))
	}
	return &Verifier{publicKey: ed25519.PublicKey(key)}, nil
}

func (v *Verifier) Verify(requestID string, commitment, payload, proof []byte) error {
	if len(proof) != ed25519.SignatureSize {
		return fmt.Errorf("invalid ed25519 proof length: %d", len(proof))
	}
	if !ed25519.Verify(v.publicKey, ProofMessage(requestID, commitment, payload), proof) {
		return errors.New("proof verification failed")
	}
	return nil
}

// ProofMessage builds the byte string the oracle signs: a sha256 digest over
// the domain tag and the length-framed request id, commitment, and payload.
func ProofMessage(requestID string, commitment, payload []byte) []byte {
	h := sha256.New()
	h.Write([]byte(proofDomainTag))
	writeFramed(h.Write, []byte(requestID))
	writeFramed(h.Write, commitment)
	writeFramed(h.Write, payload)
	return h.Sum(nil)
}

func writeFramed(write func([]byte) (int, error), data []byte) {
	var length [4]byte
	length[0] = byte(len(data) >> 24)
	length[1] = byte(len(data) >> 16)
	length[2] = byte(len(data) >> 8)
	length[3] = byte(len(data))
	write(length[:])
	write(data)
}
