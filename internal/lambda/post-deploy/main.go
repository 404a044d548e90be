package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/rs/zerolog"
	"github.com/savaki/apigw-export/internal/di"
	apperrors "github.com/savaki/apigw-export/internal/errors"
	"github.com/savaki/apigw-export/internal/models"
	"github.com/savaki/apigw-export/internal/pipeline"
	"github.com/savaki/apigw-export/internal/services"
	"github.com/urfave/cli/v2"
)

// StackStatusDetail is the detail of an EventBridge
// "CloudFormation Stack Status Change" event
type StackStatusDetail struct {
	StackID       string `json:"stack-id"`
	StatusDetails struct {
		Status       string `json:"status"`
		StatusReason string `json:"status-reason"`
	} `json:"status-details"`
}

// StackName extracts the name from arn:aws:cloudformation:{region}:{account}:stack/{name}/{id}
func (d StackStatusDetail) StackName() string {
	parts := strings.Split(d.StackID, "/")
	if len(parts) < 2 {
		return d.StackID
	}
	return parts[1]
}

type Runner interface {
	Run(ctx context.Context, dc models.DeploymentContext, target models.PublishTarget, requests []models.ExportRequest) (*pipeline.Execution, error)
}

type Handler struct {
	stage  string
	store  services.ParameterStore
	runner Runner
}

func NewHandler(stage string, store services.ParameterStore, runner Runner) *Handler {
	return &Handler{
		stage:  stage,
		store:  store,
		runner: runner,
	}
}

// HandleEvent exports the API of a stack that finished deploying in this
// handler's stage. Other stacks and statuses are ignored.
func (h *Handler) HandleEvent(ctx context.Context, event events.CloudWatchEvent) error {
	logger := zerolog.Ctx(ctx)

	var detail StackStatusDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return fmt.Errorf("failed to parse event detail: %w", err)
	}

	stackName := detail.StackName()
	status := types.StackStatus(detail.StatusDetails.Status)
	logger.Info().
		Str("stack_name", stackName).
		Str("status", string(status)).
		Msg("received stack status change")

	if status != types.StackStatusCreateComplete && status != types.StackStatusUpdateComplete {
		return nil
	}

	serviceName, ok := h.serviceName(stackName)
	if !ok {
		logger.Debug().Str("stack_name", stackName).Str("stage", h.stage).Msg("stack is not in this stage, skipping")
		return nil
	}

	cfg, err := h.store.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	target, err := cfg.PublishTarget()
	if err != nil {
		return apperrors.Configuration(err)
	}
	requests, err := cfg.ExportRequests()
	if err != nil {
		return apperrors.Configuration(err)
	}

	dc := models.DeploymentContext{
		ServiceName: serviceName,
		Stage:       h.stage,
		Region:      event.Region,
	}

	exec, err := h.runner.Run(ctx, dc, target, requests)
	if err != nil {
		return err
	}

	logger.Info().
		Str("run_id", exec.RunID).
		Str("stack_name", stackName).
		Strs("s3_keys", exec.Keys()).
		Msg("exported api specifications")
	return nil
}

// serviceName strips the stage suffix from a {service}-{stage} stack name
func (h *Handler) serviceName(stackName string) (string, bool) {
	suffix := models.StackNameSeparator + h.stage
	serviceName, ok := strings.CutSuffix(stackName, suffix)
	if !ok || serviceName == "" {
		return "", false
	}
	return serviceName, true
}

func main() {
	logger := di.ProvideLogger().With().Str("lambda", "post-deploy").Logger()

	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = "dev"
	}

	container, err := di.New(stage,
		di.WithLogger(logger),
		di.WithRegion(os.Getenv("AWS_REGION")),
	)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create DI container")
		os.Exit(1)
	}

	store := di.MustGet[services.ParameterStore](container)
	runner := di.MustGet[*pipeline.Pipeline](container)

	handler := NewHandler(stage, store, runner)

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		wrappedHandler := func(ctx context.Context, event events.CloudWatchEvent) error {
			ctx = logger.WithContext(ctx)
			return handler.HandleEvent(ctx, event)
		}
		lambda.Start(wrappedHandler)
		return
	}

	app := &cli.App{
		Name:  "post-deploy",
		Usage: "Simulate a CloudFormation stack status change",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "stack-name",
				Usage:    "Stack name, {service}-{stage}",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Stack status",
				Value: string(types.StackStatusUpdateComplete),
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "AWS region",
				Value: "us-east-1",
			},
		},
		Action: func(c *cli.Context) error {
			detail := StackStatusDetail{
				StackID: fmt.Sprintf("arn:aws:cloudformation:%s:000000000000:stack/%s/local", c.String("region"), c.String("stack-name")),
			}
			detail.StatusDetails.Status = c.String("status")

			raw, err := json.Marshal(detail)
			if err != nil {
				return err
			}

			event := events.CloudWatchEvent{
				Source:     "aws.cloudformation",
				DetailType: "CloudFormation Stack Status Change",
				Region:     c.String("region"),
				Detail:     raw,
			}

			ctx := logger.WithContext(context.Background())
			return handler.HandleEvent(ctx, event)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(1)
	}
}
