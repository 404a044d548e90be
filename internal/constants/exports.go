package constants

const (
	// ServiceEndpointOutputKey is the stack output holding the deployed API
	// endpoint, e.g. https://abc123.execute-api.us-east-1.amazonaws.com/prod
	ServiceEndpointOutputKey = "ServiceEndpoint"

	// ExportExtensionsParameter asks API Gateway to embed the
	// x-amazon-apigateway-integration extensions in the export
	ExportExtensionsParameter = "extensions"
	ExportExtensionsValue     = "integrations"

	// ParameterPathFormat is the Parameter Store path prefix for a stage
	ParameterPathFormat = "/%s/apigw-export"

	// ManagedBy tags objects written by this tool
	ManagedBy = "apigw-export"
)
