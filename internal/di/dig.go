// Package di provides a lightweight wrapper around uber's dig dependency injection framework.
// It wires the AWS clients, configuration sources and the export pipeline.
package di

import (
	"github.com/rs/zerolog"
	"go.uber.org/dig"
)

// Container defines a dependency injection container based on uber's dig.
type Container interface {
	// Invoke executes a function, injecting its dependencies from the container.
	Invoke(function any, opts ...dig.InvokeOption) error

	// Provide registers a constructor function in the container.
	Provide(constructor any, opts ...dig.ProvideOption) error

	// Scope creates a scoped sub-container with its own set of values.
	Scope(name string, opts ...dig.ScopeOption) *dig.Scope
}

// MustGet returns an instance constructed via dependency injection or panics.
//
// Example:
//
//	p := MustGet[*pipeline.Pipeline](container)
func MustGet[T any](container Container) (want T) {
	callback := func(got T) {
		want = got
	}
	if err := container.Invoke(callback); err != nil {
		panic(err)
	}
	return want
}

// Get is MustGet for callers that want the construction error back, e.g. a
// failure to load the AWS config.
func Get[T any](container Container) (want T, err error) {
	err = container.Invoke(func(got T) {
		want = got
	})
	return want, err
}

// New creates a new dependency injection container for the given stage.
// The stage is registered as a plain string dependency and selects the
// Parameter Store path.
//
// Example:
//
//	container, err := New("prod",
//	    WithRegion("us-east-1"),
//	    WithRoleARN("arn:aws:iam::123456789012:role/docs-publisher"),
//	)
func New(stage string, opts ...Option) (Container, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		l := ProvideLogger()
		logger = &l
	}

	container := dig.New()
	values := []any{
		func() string { return stage },
		func() zerolog.Logger { return *logger },
		func() Region { return o.region },
		func() Profile { return o.profile },
		func() EndpointURL { return o.endpointURL },
		func() RoleARN { return o.roleARN },
		func() StaticCredentials { return o.staticCredentials },
		func() DisableSSM { return DisableSSM(o.disableSSM) },
		func() PolicyOptions { return o.policyOptions },
	}
	for _, value := range values {
		if err := container.Provide(value); err != nil {
			return nil, err
		}
	}

	for _, provider := range core {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	for _, provider := range o.providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}

var core = []any{
	ProvideContext,
	ProvideAWSConfig,
	ProvideCloudFormationClient,
	ProvideAPIGatewayClient,
	ProvideS3Client,
	ProvideSTSClient,
	ProvideSSMClient,
	ProvideParameterStore,
	ProvideStackResolver,
	ProvideSpecExporter,
	ProvideArtifactPublisher,
	ProvidePolicyValidator,
	ProvidePipeline,
}
