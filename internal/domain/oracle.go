package domain

import "context"

// OracleGateway is the request primitive of the external decryption oracle.
// Request hands over the ordered ciphertext handles and returns the oracle's
// request identifier synchronously; the decryption itself happens
// out-of-band and lands on the callback endpoint.
type OracleGateway interface {
	Request(ctx context.Context, handles []Handle) (string, error)
}

// ProofVerifier validates the proof blob an oracle callback carries against
// the request id, the stored commitment, and the cleartext payload. A nil
// return means the proof is genuine.
type ProofVerifier interface {
	Verify(requestID string, commitment []byte, payload []byte, proof []byte) error
}
