package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	apperrors "github.com/savaki/apigw-export/internal/errors"
	"github.com/savaki/apigw-export/internal/di"
	"github.com/savaki/apigw-export/internal/models"
	"github.com/savaki/apigw-export/internal/policy"
	"github.com/savaki/apigw-export/internal/serverless"
	"github.com/savaki/apigw-export/internal/services"
	"github.com/urfave/cli/v2"
)

var errServiceRequired = errors.New("service name is required, use --service or --config")

func deploymentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "service",
			Usage:   "Service name; the stack is named {service}-{stage}",
			EnvVars: []string{"SERVICE"},
		},
		&cli.StringFlag{
			Name:    "stage",
			Usage:   "Deployment stage",
			EnvVars: []string{"STAGE"},
		},
		&cli.StringFlag{
			Name:  "region",
			Usage: "AWS region (default: provider.region, then the shared config)",
		},
		&cli.StringFlag{
			Name:      "config",
			Usage:     "Path to serverless.yml",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:  "profile",
			Usage: "Shared config profile",
		},
		&cli.StringFlag{
			Name:  "role-arn",
			Usage: "IAM role to assume for all AWS calls",
		},
		&cli.StringFlag{
			Name:  "endpoint-url",
			Usage: "Custom endpoint for all AWS services, e.g. http://localhost:4566",
		},
		&cli.StringFlag{
			Name:    "access-key-id",
			Usage:   "Static access key, for use with --endpoint-url",
			EnvVars: []string{"APIGW_EXPORT_ACCESS_KEY_ID"},
			Hidden:  true,
		},
		&cli.StringFlag{
			Name:    "secret-access-key",
			Usage:   "Static secret key, for use with --endpoint-url",
			EnvVars: []string{"APIGW_EXPORT_SECRET_ACCESS_KEY"},
			Hidden:  true,
		},
		&cli.BoolFlag{
			Name:  "ssm",
			Usage: "Read the destination from Parameter Store instead of SWAGGER_* environment variables",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log state transitions and AWS details",
		},
	}
}

func publishFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "bucket",
			Usage: "Destination S3 bucket",
		},
		&cli.StringFlag{
			Name:  "key-prefix",
			Usage: "Object key prefix; keys are {prefix}-{format}.{encoding}",
		},
		&cli.StringFlag{
			Name:  "acl",
			Usage: "Canned ACL applied after upload, e.g. public-read",
		},
		&cli.StringSliceFlag{
			Name:  "export",
			Usage: "format:encoding to export, repeatable (default: all four)",
		},
		&cli.StringFlag{
			Name:      "policy",
			Usage:     "Additional rego module in package publish",
			TakesFile: true,
		},
		&cli.StringSliceFlag{
			Name:  "restricted-stage",
			Usage: "Stage in which public ACLs are denied, repeatable",
		},
		&cli.BoolFlag{
			Name:  "allow-public",
			Usage: "Allow public ACLs in restricted stages",
		},
	}
}

// invocation holds everything resolved from flags and serverless.yml
type invocation struct {
	Deployment models.DeploymentContext
	Override   services.Config
	File       *serverless.File
}

func newInvocation(c *cli.Context) (*invocation, error) {
	inv := &invocation{
		Deployment: models.DeploymentContext{
			ServiceName: c.String("service"),
			Stage:       c.String("stage"),
			Region:      c.String("region"),
		},
		Override: services.Config{
			S3BucketName: c.String("bucket"),
			S3KeyName:    c.String("key-prefix"),
			ACL:          c.String("acl"),
			Exports:      c.StringSlice("export"),
		},
	}

	if path := c.String("config"); path != "" {
		f, err := serverless.Load(path)
		if err != nil {
			return nil, apperrors.Configuration(err)
		}
		inv.File = f
		if inv.Deployment.ServiceName == "" {
			inv.Deployment.ServiceName = f.ServiceName()
		}
		if inv.Deployment.Stage == "" {
			inv.Deployment.Stage = f.Stage()
		}
		if inv.Deployment.Region == "" {
			inv.Deployment.Region = f.Region()
		}
	}

	if inv.Deployment.ServiceName == "" {
		return nil, apperrors.Configuration(errServiceRequired)
	}
	if inv.Deployment.Stage == "" {
		inv.Deployment.Stage = serverless.DefaultStage
	}

	return inv, nil
}

// destination layers Parameter Store or env, then serverless.yml, then flags
func (inv *invocation) destination(base *services.Config) services.Config {
	cfg := services.Config{}
	if base != nil {
		cfg = *base
	}
	if inv.File != nil {
		cfg = cfg.Merge(inv.File.Destination())
	}
	return cfg.Merge(inv.Override)
}

func newContainer(c *cli.Context, logger zerolog.Logger, inv *invocation) (di.Container, error) {
	if c.Bool("verbose") {
		logger = logger.Level(zerolog.DebugLevel)
	}

	policyOptions, err := policyOptions(c)
	if err != nil {
		return nil, err
	}

	return di.New(inv.Deployment.Stage,
		di.WithLogger(logger),
		di.WithRegion(inv.Deployment.Region),
		di.WithProfile(c.String("profile")),
		di.WithRoleARN(c.String("role-arn")),
		di.WithEndpointURL(c.String("endpoint-url")),
		di.WithStaticCredentials(c.String("access-key-id"), c.String("secret-access-key")),
		di.WithDisableSSM(!c.Bool("ssm")),
		di.WithPolicyOptions(policyOptions...),
	)
}

func policyOptions(c *cli.Context) ([]policy.Option, error) {
	opts := []policy.Option{
		policy.WithRestrictedStages(c.StringSlice("restricted-stage")...),
		policy.WithAllowPublic(c.Bool("allow-public")),
	}

	if path := c.String("policy"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.Configuration(fmt.Errorf("failed to read policy %s: %w", path, err))
		}
		opts = append(opts, policy.WithModule(filepath.Base(path), string(content)))
	}

	return opts, nil
}
