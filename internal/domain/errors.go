package domain

import "errors"

var (
	ErrNotOwner             = errors.New("caller is not the owner")
	ErrNotProvider          = errors.New("caller is not an authorized provider")
	ErrSystemPaused         = errors.New("system paused")
	ErrAlreadyPaused        = errors.New("system already paused")
	ErrNotPaused            = errors.New("system is not paused")
	ErrInvalidBatch         = errors.New("invalid batch id")
	ErrBatchClosed          = errors.New("batch already closed")
	ErrBatchNotClosed       = errors.New("batch not yet closed")
	ErrBatchStillOpen       = errors.New("current batch still open")
	ErrCooldownActive       = errors.New("cooldown active")
	ErrHandleNotInitialized = errors.New("ciphertext handle not initialized")
	ErrCommitmentMismatch   = errors.New("commitment mismatch")
	ErrProofInvalid         = errors.New("decryption proof invalid")
	ErrPayloadMalformed     = errors.New("cleartext payload malformed")
	ErrRequestProcessed     = errors.New("request already processed")
	ErrInvalidAddress       = errors.New("invalid address")
	ErrInvalidCooldown      = errors.New("invalid cooldown value")
	ErrNotFound             = errors.New("not found")
)
