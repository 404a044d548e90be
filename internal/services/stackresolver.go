package services

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"github.com/savaki/apigw-export/internal/constants"
	apperrors "github.com/savaki/apigw-export/internal/errors"
	"github.com/savaki/apigw-export/internal/models"
	"github.com/savaki/gox/slicex"
)

// CloudFormationAPI abstracts the CloudFormation calls used by StackResolver
type CloudFormationAPI interface {
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
}

// StackResolver finds the API Gateway REST API id behind a deployed stack
type StackResolver struct {
	client CloudFormationAPI
	logger zerolog.Logger
}

// NewStackResolver creates a new stack resolver
func NewStackResolver(client CloudFormationAPI, logger zerolog.Logger) *StackResolver {
	return &StackResolver{
		client: client,
		logger: logger.With().Str("service", "stack_resolver").Logger(),
	}
}

// Resolve looks up the stack for dc and extracts the API id from its
// ServiceEndpoint output. A missing stack yields ErrStackNotFound and a stack
// without a usable endpoint output yields ErrEndpointNotFound, both wrapped in
// a ResolutionError.
func (r *StackResolver) Resolve(ctx context.Context, dc models.DeploymentContext) (string, error) {
	stackName := dc.StackName()
	logger := r.logger.With().Str("stack_name", stackName).Logger()

	logger.Info().Msg("describing stack")

	output, err := r.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	}, withCloudFormationContext(dc))
	if err != nil {
		if isStackNotFound(err) {
			logger.Warn().Err(err).Msg("stack does not exist")
			return "", &apperrors.ResolutionError{StackName: stackName, Err: apperrors.ErrStackNotFound}
		}
		logger.Error().Err(err).Msg("failed to describe stack")
		return "", &apperrors.ResolutionError{StackName: stackName, Err: err}
	}

	if len(output.Stacks) == 0 {
		return "", &apperrors.ResolutionError{StackName: stackName, Err: apperrors.ErrStackNotFound}
	}

	apiID, ok := FindAPIID(output.Stacks[0].Outputs)
	if !ok {
		logger.Warn().
			Int("output_count", len(output.Stacks[0].Outputs)).
			Msg("no usable service endpoint output")
		return "", &apperrors.ResolutionError{StackName: stackName, Err: apperrors.ErrEndpointNotFound}
	}

	logger.Info().Str("api_id", apiID).Msg("resolved api id")
	return apiID, nil
}

// FindAPIID returns the API id from the first ServiceEndpoint output
func FindAPIID(outputs []types.Output) (string, bool) {
	output, _, ok := slicex.Find(outputs, func(o types.Output) bool {
		return aws.ToString(o.OutputKey) == constants.ServiceEndpointOutputKey
	})
	if !ok {
		return "", false
	}
	return ParseAPIID(aws.ToString(output.OutputValue))
}

// ParseAPIID extracts the leading host label of an endpoint URL,
// e.g. https://abc123.execute-api.us-east-1.amazonaws.com/prod -> abc123
func ParseAPIID(endpoint string) (string, bool) {
	head, _, _ := strings.Cut(endpoint, ".")
	parts := strings.Split(head, "//")
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func isStackNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ValidationError" && strings.Contains(apiErr.ErrorMessage(), "does not exist")
	}
	return false
}

func withCloudFormationContext(dc models.DeploymentContext) func(*cloudformation.Options) {
	return func(o *cloudformation.Options) {
		if dc.Region != "" {
			o.Region = dc.Region
		}
		if dc.Credentials != nil {
			o.Credentials = dc.Credentials
		}
	}
}
