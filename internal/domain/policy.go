package domain

import "context"

// PolicyAction names a gated operation in the access-policy bundle.
type PolicyAction string

const (
	ActionTransferOwnership PolicyAction = "ownership.transfer"
	ActionAddProvider       PolicyAction = "provider.add"
	ActionRemoveProvider    PolicyAction = "provider.remove"
	ActionPause             PolicyAction = "system.pause"
	ActionUnpause           PolicyAction = "system.unpause"
	ActionSetCooldown       PolicyAction = "cooldown.set"
	ActionOpenBatch         PolicyAction = "batch.open"
	ActionCloseBatch        PolicyAction = "batch.close"
	ActionSubmitAgreement   PolicyAction = "agreement.submit"
	ActionRequestDecryption PolicyAction = "decryption.request"
)

type PolicyInput struct {
	Action     PolicyAction `json:"action"`
	Caller     string       `json:"caller"`
	IsOwner    bool         `json:"is_owner"`
	IsProvider bool         `json:"is_provider"`
	Paused     bool         `json:"paused"`
}

type PolicyDeny struct {
	Code string `json:"code"`
}

type PolicyDecision struct {
	Allow bool         `json:"allow"`
	Deny  []PolicyDeny `json:"deny"`
}

// AccessPolicy decides whether a caller may perform an action given its
// roles and the pause flag. Deny codes are stable identifiers the usecases
// map back to sentinel errors.
type AccessPolicy interface {
	Evaluate(ctx context.Context, input PolicyInput) (PolicyDecision, error)
}
