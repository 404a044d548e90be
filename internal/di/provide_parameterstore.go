package di

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog"
	"github.com/savaki/apigw-export/internal/services"
)

// ProvideSSMClient provides an SSM client for Parameter Store access
// Returns nil if SSM is disabled (for local development)
func ProvideSSMClient(awsConfig aws.Config, disable DisableSSM) *ssm.Client {
	if disable || os.Getenv("DISABLE_SSM") == "true" {
		return nil
	}

	return ssm.NewFromConfig(awsConfig)
}

// ProvideParameterStore provides a ParameterStore implementation for stage.
// Uses SSM Parameter Store in AWS, falls back to environment variables when disabled
func ProvideParameterStore(ctx context.Context, ssmClient *ssm.Client, stage string) services.ParameterStore {
	logger := zerolog.Ctx(ctx)

	if ssmClient == nil {
		logger.Debug().Str("stage", stage).Msg("using environment variables for configuration (SSM disabled)")
		return services.NewEnvParameterStore(stage)
	}

	logger.Debug().Str("stage", stage).Msg("using AWS Systems Manager Parameter Store for configuration")
	return services.NewSSMParameterStore(ssmClient, stage)
}
