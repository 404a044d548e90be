package policy

import (
	"context"
	_ "embed"
	"fmt"
	"sort"

	"github.com/open-policy-agent/opa/rego"
	"github.com/open-policy-agent/opa/storage/inmem"
	"github.com/savaki/apigw-export/internal/models"
)

//go:embed publish.rego
var policyContent string

const query = "allow := data.publish.allow; violations := data.publish.violations"

// Validator evaluates a PublishTarget against the publish rego policy
type Validator struct {
	prepared rego.PreparedEvalQuery
}

type ValidationResult struct {
	Allowed    bool     `json:"allowed"`
	Violations []string `json:"violations,omitempty"`
}

// Option configures the policy data and extra modules
type Option func(*options)

type options struct {
	modules          map[string]string
	restrictedStages []string
	allowPublic      bool
}

// WithModule adds a rego module in package publish. Its violations rules are
// merged with the embedded ones.
func WithModule(name, content string) Option {
	return func(o *options) {
		o.modules[name] = content
	}
}

// WithRestrictedStages denies public access policies in the given stages
func WithRestrictedStages(stages ...string) Option {
	return func(o *options) {
		o.restrictedStages = append(o.restrictedStages, stages...)
	}
}

// WithAllowPublic lifts the restricted stage rule
func WithAllowPublic(allow bool) Option {
	return func(o *options) {
		o.allowPublic = allow
	}
}

func NewValidator(opts ...Option) (*Validator, error) {
	o := options{
		modules: map[string]string{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	stages := make([]interface{}, 0, len(o.restrictedStages))
	for _, stage := range o.restrictedStages {
		stages = append(stages, stage)
	}
	store := inmem.NewFromObject(map[string]interface{}{
		"restricted_stages": stages,
		"allow_public":      o.allowPublic,
	})

	args := []func(*rego.Rego){
		rego.Query(query),
		rego.Module("publish.rego", policyContent),
		rego.Store(store),
	}
	for name, content := range o.modules {
		args = append(args, rego.Module(name, content))
	}

	prepared, err := rego.New(args...).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare policy query: %w", err)
	}

	return &Validator{
		prepared: prepared,
	}, nil
}

// ValidateTarget evaluates the policy for target in the given deployment
func (v *Validator) ValidateTarget(ctx context.Context, dc models.DeploymentContext, target models.PublishTarget) (*ValidationResult, error) {
	input := map[string]interface{}{
		"service":       dc.ServiceName,
		"stage":         dc.Stage,
		"bucket":        target.Bucket,
		"key_prefix":    target.KeyPrefix,
		"access_policy": string(target.AccessPolicy),
	}

	results, err := v.prepared.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 {
		return &ValidationResult{
			Allowed:    false,
			Violations: []string{"policy evaluation returned no results"},
		}, nil
	}

	allowed, ok := results[0].Bindings["allow"].(bool)
	if !ok {
		return &ValidationResult{
			Allowed:    false,
			Violations: []string{"policy evaluation returned non-boolean result"},
		}, nil
	}

	result := &ValidationResult{
		Allowed: allowed,
	}

	if !allowed {
		result.Violations = toStrings(results[0].Bindings["violations"])
		if len(result.Violations) == 0 {
			result.Violations = []string{"policy validation failed but no specific violations found"}
		}
	}

	return result, nil
}

func toStrings(value interface{}) []string {
	var violations []string
	switch v := value.(type) {
	case []interface{}:
		for _, violation := range v {
			if str, ok := violation.(string); ok {
				violations = append(violations, str)
			}
		}
	case map[string]interface{}:
		for violation := range v {
			violations = append(violations, violation)
		}
	}
	sort.Strings(violations)
	return violations
}
