package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/savaki/apigw-export/internal/constants"
	"github.com/savaki/apigw-export/internal/models"
	"github.com/savaki/gox/slicex"
)

// Config holds the publish destination loaded from Parameter Store
type Config struct {
	S3BucketName string
	S3KeyName    string
	ACL          string
	Exports      []string
}

// PublishTarget converts the raw configuration into a PublishTarget. Required
// fields are checked later by PublishTarget.Validate.
func (c *Config) PublishTarget() (models.PublishTarget, error) {
	policy, err := models.ParseAccessPolicy(c.ACL)
	if err != nil {
		return models.PublishTarget{}, err
	}
	return models.PublishTarget{
		Bucket:       c.S3BucketName,
		KeyPrefix:    c.S3KeyName,
		AccessPolicy: policy,
	}, nil
}

// ExportRequests parses the configured exports. An empty list is returned
// as nil so the pipeline applies its defaults.
func (c *Config) ExportRequests() ([]models.ExportRequest, error) {
	return models.ParseExportRequests(c.Exports)
}

// Merge returns a copy of c with every non-empty field of override applied
func (c Config) Merge(override Config) Config {
	if override.S3BucketName != "" {
		c.S3BucketName = override.S3BucketName
	}
	if override.S3KeyName != "" {
		c.S3KeyName = override.S3KeyName
	}
	if override.ACL != "" {
		c.ACL = override.ACL
	}
	if len(override.Exports) > 0 {
		c.Exports = override.Exports
	}
	return c
}

// ParameterStore loads the publish configuration for a stage
type ParameterStore interface {
	GetConfig(ctx context.Context) (*Config, error)
}

// SSMAPI abstracts the Systems Manager calls used by SSMParameterStore
type SSMAPI interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// SSMParameterStore implements ParameterStore using AWS Systems Manager Parameter Store
type SSMParameterStore struct {
	client SSMAPI
	stage  string
}

// NewSSMParameterStore creates a new SSM-backed parameter store
func NewSSMParameterStore(client SSMAPI, stage string) *SSMParameterStore {
	return &SSMParameterStore{
		client: client,
		stage:  stage,
	}
}

// GetConfig loads the publish configuration stored under /{stage}/apigw-export
func (s *SSMParameterStore) GetConfig(ctx context.Context) (*Config, error) {
	path := fmt.Sprintf(constants.ParameterPathFormat, s.stage)

	params := make(map[string]string)
	paginator := ssm.NewGetParametersByPathPaginator(s.client, &ssm.GetParametersByPathInput{
		Path:           aws.String(path),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get parameters by path %s: %w", path, err)
		}
		for _, param := range page.Parameters {
			if param.Name != nil && param.Value != nil {
				params[*param.Name] = *param.Value
			}
		}
	}

	return &Config{
		S3BucketName: params[path+"/s3-bucket-name"],
		S3KeyName:    params[path+"/s3-key-name"],
		ACL:          params[path+"/acl"],
		Exports:      splitList(params[path+"/exports"]),
	}, nil
}

// EnvParameterStore implements ParameterStore using SWAGGER_* environment
// variables. A stage-suffixed variable, e.g. SWAGGER_ACL_PROD, takes
// precedence over the plain one.
type EnvParameterStore struct {
	stage string
}

// NewEnvParameterStore creates a new environment variable-backed parameter store
func NewEnvParameterStore(stage string) *EnvParameterStore {
	return &EnvParameterStore{
		stage: stage,
	}
}

// GetConfig loads the publish configuration from environment variables
func (e *EnvParameterStore) GetConfig(ctx context.Context) (*Config, error) {
	return &Config{
		S3BucketName: e.lookup("SWAGGER_S3_BUCKET_NAME"),
		S3KeyName:    e.lookup("SWAGGER_S3_KEY_NAME"),
		ACL:          e.lookup("SWAGGER_ACL"),
		Exports:      splitList(e.lookup("SWAGGER_EXPORTS")),
	}, nil
}

func (e *EnvParameterStore) lookup(name string) string {
	if e.stage != "" {
		suffix := strings.ToUpper(strings.ReplaceAll(e.stage, "-", "_"))
		if v := os.Getenv(name + "_" + suffix); v != "" {
			return v
		}
	}
	return os.Getenv(name)
}

func splitList(s string) []string {
	return slicex.FilterNonzero(slicex.Map(strings.Split(s, ","), strings.TrimSpace))
}
