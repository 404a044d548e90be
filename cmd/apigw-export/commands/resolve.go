package commands

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog"
	"github.com/savaki/apigw-export/internal/di"
	"github.com/savaki/apigw-export/internal/services"
	"github.com/urfave/cli/v2"
)

// ResolveCommand returns the resolve command which prints the REST API id of
// a deployed stage
func ResolveCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Print the REST API id behind stack {service}-{stage}",
		Flags: deploymentFlags(),
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

			stsClient, err := di.Get[*sts.Client](container)
			if err != nil {
				return err
			}
			identity, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
			if err != nil {
				return fmt.Errorf("failed to get caller identity: %w", err)
			}
			logger.Info().
				Str("account", aws.ToString(identity.Account)).
				Str("arn", aws.ToString(identity.Arn)).
				Msg("resolving as")

			resolver, err := di.Get[*services.StackResolver](container)
			if err != nil {
				return err
			}

			apiID, err := resolver.Resolve(ctx, inv.Deployment)
			if err != nil {
				return err
			}

			fmt.Println(apiID)
			return nil
		},
	}
}
