package di

import (
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/savaki/apigw-export/internal/pipeline"
	"github.com/savaki/apigw-export/internal/policy"
	"github.com/savaki/apigw-export/internal/services"
)

func ProvideStackResolver(client *cloudformation.Client, logger zerolog.Logger) *services.StackResolver {
	return services.NewStackResolver(client, logger)
}

func ProvideSpecExporter(client *apigateway.Client, logger zerolog.Logger) *services.SpecExporter {
	return services.NewSpecExporter(client, logger)
}

func ProvideArtifactPublisher(client *s3.Client, logger zerolog.Logger) *services.ArtifactPublisher {
	return services.NewArtifactPublisher(client, logger)
}

func ProvidePolicyValidator(opts PolicyOptions) (*policy.Validator, error) {
	return policy.NewValidator(opts...)
}

func ProvidePipeline(
	resolver *services.StackResolver,
	exporter *services.SpecExporter,
	publisher *services.ArtifactPublisher,
	validator *policy.Validator,
	logger zerolog.Logger,
) *pipeline.Pipeline {
	return pipeline.New(resolver, exporter, publisher, validator, logger)
}
