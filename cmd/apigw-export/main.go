package main

import (
	"context"
	"os"

	"github.com/savaki/apigw-export/cmd/apigw-export/commands"
	"github.com/savaki/apigw-export/internal/di"
	"github.com/urfave/cli/v2"
)

func main() {
	logger := di.ProvideLogger()
	ctx := logger.WithContext(context.Background())

	app := &cli.App{
		Name:  "apigw-export",
		Usage: "Export API Gateway specifications to S3",
		Description: `Looks up the REST API behind a deployed service stack, exports its
swagger and oas30 definitions as json and yaml, and uploads them to S3.

Configuration is layered, highest precedence first:
  - command line flags
  - serverless.yml (custom.swaggerDestinations)
  - Parameter Store (/{stage}/apigw-export/...) or SWAGGER_* environment variables`,
		Commands: []*cli.Command{
			commands.ExportCommand(&logger),
			commands.ResolveCommand(&logger),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(1)
	}
}
