// Package pipeline exports an API's specifications and publishes them to S3.
//
// A run moves through Idle -> Resolving -> Exporting(i) -> Publishing(i) ->
// Done, one request at a time. Any step may end the run in Failed. Nothing is
// retried; a failed request stops the run and earlier artifacts stay
// published.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	apperrors "github.com/savaki/apigw-export/internal/errors"
	"github.com/savaki/apigw-export/internal/models"
	"github.com/savaki/apigw-export/internal/policy"
	"github.com/savaki/gox/slicex"
	"github.com/segmentio/ksuid"
)

// Resolver finds the API id for a deployment
type Resolver interface {
	Resolve(ctx context.Context, dc models.DeploymentContext) (string, error)
}

// Exporter retrieves one specification document
type Exporter interface {
	Export(ctx context.Context, dc models.DeploymentContext, apiID string, req models.ExportRequest) (*models.SpecDocument, error)
}

// Publisher stores one specification document
type Publisher interface {
	Publish(ctx context.Context, dc models.DeploymentContext, doc *models.SpecDocument, target models.PublishTarget, key string) (*models.PublishedArtifact, error)
}

// Guard evaluates the publish target before anything is sent over the network
type Guard interface {
	ValidateTarget(ctx context.Context, dc models.DeploymentContext, target models.PublishTarget) (*policy.ValidationResult, error)
}

type State string

const (
	StateIdle       State = "IDLE"
	StateResolving  State = "RESOLVING"
	StateExporting  State = "EXPORTING"
	StatePublishing State = "PUBLISHING"
	StateDone       State = "DONE"
	StateFailed     State = "FAILED"
)

// Execution records the progress of a single run
type Execution struct {
	RunID     string                     `json:"run_id"`
	State     State                      `json:"state"`
	Index     int                        `json:"index"` // request being processed, -1 before the first
	APIID     string                     `json:"api_id,omitempty"`
	Requests  []models.ExportRequest     `json:"requests"`
	Artifacts []models.PublishedArtifact `json:"artifacts"`
	Err       error                      `json:"-"`
}

// Keys returns the object keys published so far
func (e *Execution) Keys() []string {
	return slicex.Map(e.Artifacts, func(artifact models.PublishedArtifact) string {
		return artifact.Key
	})
}

// Pipeline wires the resolver, exporter and publisher together
type Pipeline struct {
	resolver  Resolver
	exporter  Exporter
	publisher Publisher
	guard     Guard
	logger    zerolog.Logger
}

// New creates a new Pipeline. guard may be nil.
func New(resolver Resolver, exporter Exporter, publisher Publisher, guard Guard, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		resolver:  resolver,
		exporter:  exporter,
		publisher: publisher,
		guard:     guard,
		logger:    logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run exports each request and publishes it under target. An empty request
// list exports every format and encoding. The returned Execution is never nil
// and reflects how far the run got.
func (p *Pipeline) Run(ctx context.Context, dc models.DeploymentContext, target models.PublishTarget, requests []models.ExportRequest) (*Execution, error) {
	exec := &Execution{
		RunID: ksuid.New().String(),
		State: StateIdle,
		Index: -1,
	}

	logger := p.logger.With().
		Str("run_id", exec.RunID).
		Str("service_name", dc.ServiceName).
		Str("stage", dc.Stage).
		Str("region", dc.Region).
		Logger()

	requests, err := p.validate(ctx, dc, target, requests)
	if err != nil {
		return p.fail(logger, exec, err)
	}
	exec.Requests = requests

	p.transition(logger, exec, StateResolving, -1)
	apiID, err := p.resolve(ctx, dc)
	if err != nil {
		return p.fail(logger, exec, err)
	}
	exec.APIID = apiID

	for i, req := range requests {
		p.transition(logger, exec, StateExporting, i)
		doc, err := p.export(ctx, dc, apiID, req)
		if err != nil {
			return p.fail(logger, exec, err)
		}

		p.transition(logger, exec, StatePublishing, i)
		artifact, err := p.publish(ctx, dc, doc, target, req)
		if err != nil {
			return p.fail(logger, exec, err)
		}
		exec.Artifacts = append(exec.Artifacts, *artifact)
	}

	p.transition(logger, exec, StateDone, exec.Index)
	logger.Info().
		Str("api_id", apiID).
		Str("s3_bucket", target.Bucket).
		Strs("s3_keys", exec.Keys()).
		Msg("files uploaded to s3")

	return exec, nil
}

// validate runs entirely locally and returns the requests to process
func (p *Pipeline) validate(ctx context.Context, dc models.DeploymentContext, target models.PublishTarget, requests []models.ExportRequest) ([]models.ExportRequest, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	if len(requests) == 0 {
		requests = models.DefaultExportRequests()
	}

	seen := make(map[models.ExportRequest]bool, len(requests))
	for _, req := range requests {
		if f, err := models.ParseFormat(string(req.Format)); err != nil || f != req.Format {
			return nil, apperrors.Configuration(fmt.Errorf("%w: %q", apperrors.ErrUnknownFormat, req.Format))
		}
		if e, err := models.ParseEncoding(string(req.Encoding)); err != nil || e != req.Encoding {
			return nil, apperrors.Configuration(fmt.Errorf("%w: %q", apperrors.ErrUnknownEncoding, req.Encoding))
		}
		if seen[req] {
			return nil, apperrors.Configuration(fmt.Errorf("%w: %s", apperrors.ErrDuplicateExportRequest, req))
		}
		seen[req] = true
	}

	if p.guard == nil {
		return requests, nil
	}

	result, err := p.guard.ValidateTarget(ctx, dc, target)
	if err != nil {
		return nil, apperrors.Configuration(fmt.Errorf("failed to evaluate publish policy: %w", err))
	}
	if !result.Allowed {
		return nil, apperrors.Configuration(fmt.Errorf("%w: %s", apperrors.ErrPolicyViolation, strings.Join(result.Violations, "; ")))
	}

	return requests, nil
}

func (p *Pipeline) resolve(ctx context.Context, dc models.DeploymentContext) (string, error) {
	return p.resolver.Resolve(ctx, dc)
}

func (p *Pipeline) export(ctx context.Context, dc models.DeploymentContext, apiID string, req models.ExportRequest) (*models.SpecDocument, error) {
	return p.exporter.Export(ctx, dc, apiID, req)
}

func (p *Pipeline) publish(ctx context.Context, dc models.DeploymentContext, doc *models.SpecDocument, target models.PublishTarget, req models.ExportRequest) (*models.PublishedArtifact, error) {
	artifact, err := p.publisher.Publish(ctx, dc, doc, target, req.Key(target.KeyPrefix))
	if err != nil {
		return nil, err
	}
	artifact.Request = req
	return artifact, nil
}

func (p *Pipeline) transition(logger zerolog.Logger, exec *Execution, state State, index int) {
	logger.Debug().
		Str("from", string(exec.State)).
		Str("to", string(state)).
		Int("index", index).
		Msg("state transition")
	exec.State = state
	exec.Index = index
}

func (p *Pipeline) fail(logger zerolog.Logger, exec *Execution, err error) (*Execution, error) {
	logger.Error().
		Err(err).
		Str("state", string(exec.State)).
		Int("index", exec.Index).
		Strs("s3_keys", exec.Keys()).
		Msg("export pipeline failed")
	exec.State = StateFailed
	exec.Err = err
	return exec, err
}
