package serverless

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/savaki/apigw-export/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name            string
		yaml            string
		wantService     string
		wantStage       string
		wantRegion      string
		wantDestination services.Config
	}{
		{
			name: "string service",
			yaml: `
service: orders
provider:
  name: aws
  stage: prod
  region: eu-west-1
custom:
  swaggerDestinations:
    s3BucketName: docs-bucket
    s3KeyName: orders-api
    acl: public-read
    exports:
      - swagger:json
      - oas30:yaml
`,
			wantService: "orders",
			wantStage:   "prod",
			wantRegion:  "eu-west-1",
			wantDestination: services.Config{
				S3BucketName: "docs-bucket",
				S3KeyName:    "orders-api",
				ACL:          "public-read",
				Exports:      []string{"swagger:json", "oas30:yaml"},
			},
		},
		{
			name: "mapping service with defaults",
			yaml: `
service:
  name: billing
custom:
  swaggerDestinations:
    s3BucketName: docs-bucket
    s3KeyName: billing-api
`,
			wantService: "billing",
			wantStage:   DefaultStage,
			wantRegion:  DefaultRegion,
			wantDestination: services.Config{
				S3BucketName: "docs-bucket",
				S3KeyName:    "billing-api",
			},
		},
		{
			name: "unresolved variables",
			yaml: `
service: orders
provider:
  stage: ${opt:stage, 'dev'}
  region: ${opt:region}
custom:
  swaggerDestinations:
    s3BucketName: ${self:custom.bucket}
    s3KeyName: orders-api
`,
			wantService: "orders",
			wantStage:   DefaultStage,
			wantRegion:  DefaultRegion,
			wantDestination: services.Config{
				S3KeyName: "orders-api",
			},
		},
		{
			name:            "no destinations",
			yaml:            "service: orders\n",
			wantService:     "orders",
			wantStage:       DefaultStage,
			wantRegion:      DefaultRegion,
			wantDestination: services.Config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.yaml))
			assert.NoError(t, err)
			assert.Equal(t, tt.wantService, f.ServiceName())
			assert.Equal(t, tt.wantStage, f.Stage())
			assert.Equal(t, tt.wantRegion, f.Region())
			assert.Equal(t, tt.wantDestination, f.Destination())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("provider:\n  stage: dev\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("service:\n  - a\n  - b\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serverless.yml")
	err := os.WriteFile(path, []byte("service: orders\n"), 0o600)
	assert.NoError(t, err)

	f, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "orders", f.ServiceName())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
