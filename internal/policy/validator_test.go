package policy

import (
	"context"
	"testing"

	"github.com/savaki/apigw-export/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidator_ValidateTarget(t *testing.T) {
	validator, err := NewValidator(WithRestrictedStages("prod"))
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	tests := []struct {
		name             string
		stage            string
		target           models.PublishTarget
		expectAllow      bool
		expectViolations []string
	}{
		{
			name:        "private target in prod",
			stage:       "prod",
			target:      models.PublishTarget{Bucket: "b", KeyPrefix: "orders-api"},
			expectAllow: true,
		},
		{
			name:        "public read outside restricted stage",
			stage:       "dev",
			target:      models.PublishTarget{Bucket: "b", KeyPrefix: "orders-api", AccessPolicy: models.AccessPolicyPublicRead},
			expectAllow: true,
		},
		{
			name:             "public read in restricted stage",
			stage:            "prod",
			target:           models.PublishTarget{Bucket: "b", KeyPrefix: "orders-api", AccessPolicy: models.AccessPolicyPublicRead},
			expectAllow:      false,
			expectViolations: []string{"access policy public-read is not allowed in stage prod"},
		},
		{
			name:             "public read write is never allowed",
			stage:            "dev",
			target:           models.PublishTarget{Bucket: "b", KeyPrefix: "orders-api", AccessPolicy: models.AccessPolicyPublicReadWrite},
			expectAllow:      false,
			expectViolations: []string{"access policy public-read-write is never allowed"},
		},
		{
			name:             "leading slash in key prefix",
			stage:            "dev",
			target:           models.PublishTarget{Bucket: "b", KeyPrefix: "/orders-api"},
			expectAllow:      false,
			expectViolations: []string{`key prefix "/orders-api" must not start with /`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc := models.DeploymentContext{ServiceName: "orders", Stage: tt.stage}
			result, err := validator.ValidateTarget(context.Background(), dc, tt.target)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectAllow, result.Allowed)
			assert.Equal(t, tt.expectViolations, result.Violations)
		})
	}
}

func TestValidator_AllowPublic(t *testing.T) {
	validator, err := NewValidator(WithRestrictedStages("prod"), WithAllowPublic(true))
	assert.NoError(t, err)

	dc := models.DeploymentContext{ServiceName: "orders", Stage: "prod"}
	target := models.PublishTarget{Bucket: "b", KeyPrefix: "orders-api", AccessPolicy: models.AccessPolicyPublicRead}

	result, err := validator.ValidateTarget(context.Background(), dc, target)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestValidator_WithModule(t *testing.T) {
	module := `package publish

import rego.v1

violations contains msg if {
	not startswith(input.bucket, "docs-")
	msg := sprintf("bucket %s must start with docs-", [input.bucket])
}
`
	validator, err := NewValidator(WithModule("bucket.rego", module))
	assert.NoError(t, err)

	dc := models.DeploymentContext{ServiceName: "orders", Stage: "dev"}

	result, err := validator.ValidateTarget(context.Background(), dc, models.PublishTarget{Bucket: "b", KeyPrefix: "p"})
	assert.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, []string{"bucket b must start with docs-"}, result.Violations)

	result, err = validator.ValidateTarget(context.Background(), dc, models.PublishTarget{Bucket: "docs-b", KeyPrefix: "p"})
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestNewValidator_InvalidModule(t *testing.T) {
	_, err := NewValidator(WithModule("broken.rego", "package publish\n\nviolations contains"))
	assert.Error(t, err)
}
