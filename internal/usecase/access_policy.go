package usecase

import (
	"context"
	"fmt"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
)

// policyDenyPriority maps bundle deny codes to sentinel errors. PAUSED is
// checked first: while the system is paused every gated lifecycle operation
// reports the pause, regardless of the caller's roles.
var policyDenyPriority = []struct {
	code string
	err  error
}{
	{"PAUSED", domain.ErrSystemPaused},
	{"NOT_OWNER", domain.ErrNotOwner},
	{"NOT_PROVIDER", domain.ErrNotProvider},
}

// authorize loads the instance config and the caller's provider flag,
// evaluates the access policy, and maps a deny to its sentinel error.
// The loaded config is returned so callers do not re-read it.
func authorize(ctx context.Context, stores Stores, policy domain.AccessPolicy, action domain.PolicyAction, caller domain.Address) (domain.InstanceConfig, error) {
	cfg, err := stores.Config.Get(ctx)
	if err != nil {
		return domain.InstanceConfig{}, fmt.Errorf("load instance config: %w", err)
	}
	isProvider, err := stores.Providers.Exists(ctx, caller)
	if err != nil {
		return domain.InstanceConfig{}, fmt.Errorf("load provider role: %w", err)
	}
	decision, err := policy.Evaluate(ctx, domain.PolicyInput{
		Action:     action,
		Caller:     caller.String(),
		IsOwner:    caller == cfg.Owner,
		IsProvider: isProvider,
		Paused:     cfg.Paused,
	})
	if err != nil {
		return domain.InstanceConfig{}, fmt.Errorf("evaluate access policy: %w", err)
	}
	if decision.Allow {
		return cfg, nil
	}
	for _, mapping := range policyDenyPriority {
		for _, deny := range decision.Deny {
			if deny.Code == mapping.code {
				return domain.InstanceConfig{}, mapping.err
			}
		}
	}
	return domain.InstanceConfig{}, domain.ErrNotOwner
}
