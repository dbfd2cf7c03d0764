package policyopa

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"sort"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"

	"github.com/open-policy-agent/opa/rego"
)

const defaultQuery = "data.rentasset.access.result"

//go:embed policy.rego
var defaultBundle string

// Engine evaluates the access-control bundle. The bundle is data, not code:
// deployments may override the embedded default with their own rego file as
// long as it produces the same result document.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine compiles the embedded default bundle.
func NewEngine(ctx context.Context) (*Engine, error) {
	return prepare(ctx, rego.Module("policy.rego", defaultBundle))
}

// NewEngineFromBundlePath compiles a bundle from disk in place of the
// embedded default.
func NewEngineFromBundlePath(ctx context.Context, bundlePath string) (*Engine, error) {
	if bundlePath == "" {
		return nil, errors.New("bundle path is required")
	}
	return prepare(ctx, rego.Load([]string{bundlePath}, nil))
}

func prepare(ctx context.Context, source func(*rego.Rego)) (*Engine, error) {
	r := rego.New(
		rego.Query(defaultQuery),
		rego.StrictBuiltinErrors(true),
		source,
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared}, nil
}

func (e *Engine) Evaluate(ctx context.Context, input domain.PolicyInput) (domain.PolicyDecision, error) {
	if e == nil {
		return domain.PolicyDecision{}, errors.New("policy engine is nil")
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return domain.PolicyDecision{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return domain.PolicyDecision{}, errors.New("empty policy result")
	}
	decision, err := decodeDecision(results[0].Expressions[0].Value)
	if err != nil {
		return domain.PolicyDecision{}, err
	}
	sort.Slice(decision.Deny, func(i, j int) bool {
		return decision.Deny[i].Code < decision.Deny[j].Code
	})
	return decision, nil
}

func decodeDecision(value any) (domain.PolicyDecision, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return domain.PolicyDecision{}, err
	}
	var decision domain.PolicyDecision
	if err := json.Unmarshal(payload, &decision); err != nil {
		return domain.PolicyDecision{}, err
	}
	return decision, nil
}
