package services

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/rs/zerolog"
	"github.com/savaki/apigw-export/internal/constants"
	apperrors "github.com/savaki/apigw-export/internal/errors"
	"github.com/savaki/apigw-export/internal/models"
)

// APIGatewayAPI abstracts the API Gateway calls used by SpecExporter
type APIGatewayAPI interface {
	GetExport(ctx context.Context, params *apigateway.GetExportInput, optFns ...func(*apigateway.Options)) (*apigateway.GetExportOutput, error)
}

// SpecExporter downloads generated API specifications from API Gateway
type SpecExporter struct {
	client APIGatewayAPI
	logger zerolog.Logger
}

// NewSpecExporter creates a new spec exporter
func NewSpecExporter(client APIGatewayAPI, logger zerolog.Logger) *SpecExporter {
	return &SpecExporter{
		client: client,
		logger: logger.With().Str("service", "spec_exporter").Logger(),
	}
}

// Export issues a single GetExport call for the requested format and
// encoding. The body is returned as received.
func (e *SpecExporter) Export(ctx context.Context, dc models.DeploymentContext, apiID string, req models.ExportRequest) (*models.SpecDocument, error) {
	logger := e.logger.With().
		Str("api_id", apiID).
		Str("stage", dc.Stage).
		Str("export", req.String()).
		Logger()

	output, err := e.client.GetExport(ctx, &apigateway.GetExportInput{
		RestApiId:  aws.String(apiID),
		StageName:  aws.String(dc.Stage),
		ExportType: aws.String(string(req.Format)),
		Accepts:    aws.String(req.Encoding.ContentType()),
		Parameters: map[string]string{
			constants.ExportExtensionsParameter: constants.ExportExtensionsValue,
		},
	}, withAPIGatewayContext(dc))
	if err != nil {
		logger.Error().Err(err).Msg("failed to export api")
		return nil, &apperrors.ExportError{
			APIID:   apiID,
			Stage:   dc.Stage,
			Request: req.String(),
			Err:     err,
		}
	}

	contentType := aws.ToString(output.ContentType)
	if contentType == "" {
		contentType = req.Encoding.ContentType()
	}

	logger.Info().Int("size", len(output.Body)).Msg("exported api")

	return &models.SpecDocument{
		Body:        output.Body,
		ContentType: contentType,
	}, nil
}

func withAPIGatewayContext(dc models.DeploymentContext) func(*apigateway.Options) {
	return func(o *apigateway.Options) {
		if dc.Region != "" {
			o.Region = dc.Region
		}
		if dc.Credentials != nil {
			o.Credentials = dc.Credentials
		}
	}
}
