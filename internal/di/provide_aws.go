package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog"
	"github.com/savaki/apigw-export/internal/constants"
)

func ProvideAWSConfig(ctx context.Context, region Region, profile Profile, endpointURL EndpointURL, roleARN RoleARN, static StaticCredentials) (aws.Config, error) {
	logger := zerolog.Ctx(ctx)

	var loadOptions []func(*config.LoadOptions) error
	if region != "" {
		loadOptions = append(loadOptions, config.WithRegion(string(region)))
	}
	if profile != "" {
		loadOptions = append(loadOptions, config.WithSharedConfigProfile(string(profile)))
	}
	if endpointURL != "" {
		loadOptions = append(loadOptions, config.WithBaseEndpoint(string(endpointURL)))
	}
	if static.AccessKeyID != "" {
		provider := credentials.NewStaticCredentialsProvider(static.AccessKeyID, static.SecretAccessKey, "")
		loadOptions = append(loadOptions, config.WithCredentialsProvider(provider))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if roleARN != "" {
		logger.Info().Str("role_arn", string(roleARN)).Msg("assuming role for AWS calls")
		provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), string(roleARN), func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = constants.ManagedBy
		})
		cfg.Credentials = aws.NewCredentialsCache(provider)
	}

	return cfg, nil
}

func ProvideCloudFormationClient(cfg aws.Config) *cloudformation.Client {
	return cloudformation.NewFromConfig(cfg)
}

func ProvideAPIGatewayClient(cfg aws.Config) *apigateway.Client {
	return apigateway.NewFromConfig(cfg)
}

// ProvideS3Client uses path style addressing when a custom endpoint is set
func ProvideS3Client(cfg aws.Config, endpointURL EndpointURL) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = endpointURL != ""
	})
}

func ProvideSTSClient(cfg aws.Config) *sts.Client {
	return sts.NewFromConfig(cfg)
}
