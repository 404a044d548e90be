package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	apperrors "github.com/savaki/apigw-export/internal/errors"
	"github.com/savaki/apigw-export/internal/di"
	"github.com/savaki/apigw-export/internal/pipeline"
	"github.com/savaki/apigw-export/internal/services"
	"github.com/urfave/cli/v2"
)

// ExportCommand returns the export command which runs the pipeline once
func ExportCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the API specifications of a deployed stage and upload them to S3",
		Description: `Resolves the REST API of stack {service}-{stage}, exports each requested
format:encoding pair and uploads it as {key-prefix}-{format}.{encoding}.

Examples:
  # Everything from serverless.yml
  apigw-export export --config serverless.yml

  # Explicit destination, swagger json only
  apigw-export export --service orders --stage prod \
    --bucket docs-bucket --key-prefix orders-api --export swagger:json

  # Destination from Parameter Store, made public
  apigw-export export --service orders --stage dev --ssm --acl public-read`,
		Flags: append(deploymentFlags(), publishFlags()...),
		Action: func(c *cli.Context) error {
			ctx := c.Context

			inv, err := newInvocation(c)
			if err != nil {
				return err
			}

			container, err := newContainer(c, *logger, inv)
			if err != nil {
				return fmt.Errorf("failed to create DI container: %w", err)
			}

			store, err := di.Get[services.ParameterStore](container)
			if err != nil {
				return err
			}
			base, err := store.GetConfig(ctx)
			if err != nil {
				return err
			}

			cfg := inv.destination(base)
			target, err := cfg.PublishTarget()
			if err != nil {
				return apperrors.Configuration(err)
			}
			requests, err := cfg.ExportRequests()
			if err != nil {
				return apperrors.Configuration(err)
			}

			p, err := di.Get[*pipeline.Pipeline](container)
			if err != nil {
				return err
			}

			exec, err := p.Run(ctx, inv.Deployment, target, requests)
			if err != nil {
				return err
			}

			for _, artifact := range exec.Artifacts {
				fmt.Println(artifact.URI())
			}
			return nil
		},
	}
}
