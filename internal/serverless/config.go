// Package serverless reads the parts of a Serverless Framework serverless.yml
// that describe where exported API specifications are published.
package serverless

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/savaki/apigw-export/internal/services"
	"gopkg.in/yaml.v3"
)

const (
	DefaultStage  = "dev"
	DefaultRegion = "us-east-1"
)

// ServiceName accepts both `service: name` and `service: {name: name}`
type ServiceName string

func (s *ServiceName) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*s = ServiceName(value.Value)
		return nil
	case yaml.MappingNode:
		var v struct {
			Name string `yaml:"name"`
		}
		if err := value.Decode(&v); err != nil {
			return err
		}
		*s = ServiceName(v.Name)
		return nil
	default:
		return fmt.Errorf("line %d: service must be a string or a mapping with a name", value.Line)
	}
}

type Provider struct {
	Name   string `yaml:"name,omitempty"`
	Stage  string `yaml:"stage,omitempty"`
	Region string `yaml:"region,omitempty"`
}

type SwaggerDestinations struct {
	S3BucketName string   `yaml:"s3BucketName,omitempty"`
	S3KeyName    string   `yaml:"s3KeyName,omitempty"`
	ACL          string   `yaml:"acl,omitempty"`
	Exports      []string `yaml:"exports,omitempty"`
}

type Custom struct {
	SwaggerDestinations *SwaggerDestinations `yaml:"swaggerDestinations,omitempty"`
}

// File is the subset of serverless.yml this tool understands
type File struct {
	Service  ServiceName `yaml:"service"`
	Provider Provider    `yaml:"provider"`
	Custom   Custom      `yaml:"custom"`
}

// Load reads and parses the serverless.yml at path
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return f, nil
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Service == "" {
		return nil, errors.New("service is required")
	}
	return &f, nil
}

// ServiceName returns the service name
func (f *File) ServiceName() string {
	return string(f.Service)
}

// Stage returns provider.stage, falling back to DefaultStage when unset or
// when it still holds an unresolved ${...} variable
func (f *File) Stage() string {
	return resolved(f.Provider.Stage, DefaultStage)
}

// Region returns provider.region with the same fallback rules as Stage
func (f *File) Region() string {
	return resolved(f.Provider.Region, DefaultRegion)
}

// Destination returns custom.swaggerDestinations as a services.Config.
// Unresolved variables are treated as unset.
func (f *File) Destination() services.Config {
	d := f.Custom.SwaggerDestinations
	if d == nil {
		return services.Config{}
	}

	var exports []string
	for _, export := range d.Exports {
		if v := resolved(export, ""); v != "" {
			exports = append(exports, v)
		}
	}

	return services.Config{
		S3BucketName: resolved(d.S3BucketName, ""),
		S3KeyName:    resolved(d.S3KeyName, ""),
		ACL:          resolved(d.ACL, ""),
		Exports:      exports,
	}
}

func resolved(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.Contains(v, "${") {
		return fallback
	}
	return v
}
