package services

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/savaki/apigw-export/internal/constants"
	apperrors "github.com/savaki/apigw-export/internal/errors"
	"github.com/savaki/apigw-export/internal/models"
)

// S3API abstracts the S3 calls used by ArtifactPublisher
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	PutObjectAcl(ctx context.Context, params *s3.PutObjectAclInput, optFns ...func(*s3.Options)) (*s3.PutObjectAclOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ArtifactPublisher writes specification documents to S3
type ArtifactPublisher struct {
	client S3API
	logger zerolog.Logger
}

// NewArtifactPublisher creates a new artifact publisher
func NewArtifactPublisher(client S3API, logger zerolog.Logger) *ArtifactPublisher {
	return &ArtifactPublisher{
		client: client,
		logger: logger.With().Str("service", "artifact_publisher").Logger(),
	}
}

// Publish writes doc to target.Bucket/key. When target.AccessPolicy is set
// the canned ACL is applied after the write; if that fails the object is
// deleted again so it is never left readable under the wrong policy.
func (p *ArtifactPublisher) Publish(ctx context.Context, dc models.DeploymentContext, doc *models.SpecDocument, target models.PublishTarget, key string) (*models.PublishedArtifact, error) {
	logger := p.logger.With().
		Str("s3_bucket", target.Bucket).
		Str("s3_key", key).
		Str("access_policy", string(target.AccessPolicy)).
		Logger()

	optFn := withS3Context(dc)

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(target.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(doc.Body),
		ContentType: contentTypeOrNil(doc.ContentType),
		Metadata: map[string]string{
			"managed-by": constants.ManagedBy,
		},
	}, optFn)
	if err != nil {
		logger.Error().Err(err).Msg("failed to write object")
		return nil, &apperrors.PublishError{
			Bucket: target.Bucket,
			Key:    key,
			Step:   apperrors.PublishStepWrite,
			Err:    err,
		}
	}

	artifact := &models.PublishedArtifact{
		Bucket: target.Bucket,
		Key:    key,
		Size:   len(doc.Body),
	}

	if !target.AccessPolicy.IsSet() {
		logger.Info().Int("size", artifact.Size).Msg("wrote object")
		return artifact, nil
	}

	_, aclErr := p.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(target.Bucket),
		Key:    aws.String(key),
		ACL:    s3types.ObjectCannedACL(target.AccessPolicy),
	}, optFn)
	if aclErr == nil {
		artifact.AccessPolicy = target.AccessPolicy
		logger.Info().Int("size", artifact.Size).Msg("wrote object and applied access policy")
		return artifact, nil
	}

	logger.Warn().Err(aclErr).Msg("failed to apply access policy, deleting object")

	// the caller's context may already be done; the delete must still run
	_, deleteErr := p.client.DeleteObject(context.WithoutCancel(ctx), &s3.DeleteObjectInput{
		Bucket: aws.String(target.Bucket),
		Key:    aws.String(key),
	}, optFn)
	if deleteErr != nil {
		logger.Error().
			Err(deleteErr).
			AnErr("cause", aclErr).
			Msg("failed to delete object after access policy failure, artifact is orphaned")
		return nil, &apperrors.CompensationError{
			Bucket:    target.Bucket,
			Key:       key,
			Cause:     aclErr,
			DeleteErr: deleteErr,
		}
	}

	logger.Info().Msg("deleted object after access policy failure")
	return nil, &apperrors.PublishError{
		Bucket: target.Bucket,
		Key:    key,
		Step:   apperrors.PublishStepApplyPolicy,
		Err:    aclErr,
	}
}

func contentTypeOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}

func withS3Context(dc models.DeploymentContext) func(*s3.Options) {
	return func(o *s3.Options) {
		if dc.Region != "" {
			o.Region = dc.Region
		}
		if dc.Credentials != nil {
			o.Credentials = dc.Credentials
		}
	}
}
