package models

import (
	"github.com/aws/aws-sdk-go-v2/aws"
)

// StackNameSeparator joins service name and stage into a stack name
const StackNameSeparator = "-"

// DeploymentContext identifies the deployed service whose API is exported.
// It is supplied by the host and is read-only for the duration of a run.
type DeploymentContext struct {
	ServiceName string                  `json:"service"`
	Stage       string                  `json:"stage"`
	Region      string                  `json:"region"`
	Credentials aws.CredentialsProvider `json:"-"` // nil uses the client's configured credentials
}

// StackName returns the CloudFormation stack name, e.g. orders-prod
func (d DeploymentContext) StackName() string {
	return d.ServiceName + StackNameSeparator + d.Stage
}
