package domain

import "time"

const EventChainVersion = "v1"

type EventType string

const (
	EventOwnershipTransferred EventType = "ownership.transferred"
	EventProviderAdded        EventType = "provider.added"
	EventProviderRemoved      EventType = "provider.removed"
	EventSystemPaused         EventType = "system.paused"
	EventSystemUnpaused       EventType = "system.unpaused"
	EventCooldownUpdated      EventType = "cooldown.updated"
	EventBatchOpened          EventType = "batch.opened"
	EventBatchClosed          EventType = "batch.closed"
	EventAgreementSubmitted   EventType = "agreement.submitted"
	EventDecryptionRequested  EventType = "decryption.requested"
	EventDecryptionCompleted  EventType = "decryption.completed"
)

// Event is one entry of the append-only, hash-chained log. Seq starts at 1;
// each event hash covers the previous event hash, so the log cannot be
// rewritten without breaking the chain.
type Event struct {
	ID            string
	Seq           int64
	EventType     EventType
	Payload       any
	PayloadHash   string
	PrevEventHash string
	EventHash     string
	CreatedAt     time.Time
}
