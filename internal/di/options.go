package di

import (
	"github.com/rs/zerolog"
	"github.com/savaki/apigw-export/internal/policy"
)

// Region overrides the region from the shared AWS config
type Region string

// Profile selects a named profile from the shared AWS config
type Profile string

// EndpointURL points every client at a custom endpoint, e.g. localstack
type EndpointURL string

// RoleARN is assumed through STS before any client is created
type RoleARN string

type StaticCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

type DisableSSM bool

// PolicyOptions configure the publish policy validator
type PolicyOptions []policy.Option

// Option is a function that configures the dependency injection container.
type Option func(*options)

func WithRegion(region string) Option {
	return func(opts *options) {
		opts.region = Region(region)
	}
}

func WithProfile(profile string) Option {
	return func(opts *options) {
		opts.profile = Profile(profile)
	}
}

func WithEndpointURL(url string) Option {
	return func(opts *options) {
		opts.endpointURL = EndpointURL(url)
	}
}

func WithRoleARN(arn string) Option {
	return func(opts *options) {
		opts.roleARN = RoleARN(arn)
	}
}

// WithStaticCredentials replaces the default credential chain. Intended for
// local endpoints that accept any key pair.
func WithStaticCredentials(accessKeyID, secretAccessKey string) Option {
	return func(opts *options) {
		opts.staticCredentials = StaticCredentials{
			AccessKeyID:     accessKeyID,
			SecretAccessKey: secretAccessKey,
		}
	}
}

// WithDisableSSM reads configuration from environment variables instead of
// Parameter Store
func WithDisableSSM(disable bool) Option {
	return func(opts *options) {
		opts.disableSSM = disable
	}
}

func WithPolicyOptions(policyOptions ...policy.Option) Option {
	return func(opts *options) {
		opts.policyOptions = append(opts.policyOptions, policyOptions...)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(opts *options) {
		opts.logger = &logger
	}
}

// WithProviders adds constructor functions to the dependency injection container.
// Providers can declare dependencies as function parameters, which will be
// automatically resolved by the container.
func WithProviders(providers ...any) Option {
	return func(opts *options) {
		opts.providers = append(opts.providers, providers...)
	}
}

type options struct {
	region            Region
	profile           Profile
	endpointURL       EndpointURL
	roleARN           RoleARN
	staticCredentials StaticCredentials
	disableSSM        bool
	policyOptions     PolicyOptions
	logger            *zerolog.Logger
	providers         []any
}
