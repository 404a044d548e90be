package errors

import (
	"errors"
	"fmt"
)

var (
	ErrBucketRequired         = errors.New("s3 bucket name is required")
	ErrKeyPrefixRequired      = errors.New("s3 key prefix is required")
	ErrUnknownAccessPolicy    = errors.New("unknown access policy")
	ErrUnknownFormat          = errors.New("unknown export format")
	ErrUnknownEncoding        = errors.New("unknown export encoding")
	ErrDuplicateExportRequest = errors.New("duplicate export request")
	ErrPolicyViolation        = errors.New("publish policy violation")
	ErrStackNotFound          = errors.New("stack not found")
	ErrEndpointNotFound       = errors.New("service endpoint output not found")
)

// ConfigurationError is returned before any network activity when the
// destination or request list is unusable.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Configuration wraps err in a ConfigurationError.
func Configuration(err error) error {
	return &ConfigurationError{Err: err}
}

// ResolutionError reports that the API identifier could not be derived from
// the stack.
type ResolutionError struct {
	StackName string
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve api id from stack %s: %v", e.StackName, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ExportError carries the service error returned by the export call unchanged.
type ExportError struct {
	APIID   string
	Stage   string
	Request string
	Err     error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to export %s for api %s stage %s: %v", e.Request, e.APIID, e.Stage, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// PublishStep names the storage call that failed.
type PublishStep string

const (
	PublishStepWrite       PublishStep = "write"
	PublishStepApplyPolicy PublishStep = "apply-policy"
)

// PublishError reports a failed write or a failed access policy application
// whose object was successfully removed again.
type PublishError struct {
	Bucket string
	Key    string
	Step   PublishStep
	Err    error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish s3://%s/%s (%s): %v", e.Bucket, e.Key, e.Step, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// CompensationError means the access policy could not be applied and the
// written object could not be deleted either. The object is left behind with
// an unintended access policy.
type CompensationError struct {
	Bucket    string
	Key       string
	Cause     error
	DeleteErr error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("orphaned artifact s3://%s/%s: apply-policy failed: %v; compensating delete failed: %v",
		e.Bucket, e.Key, e.Cause, e.DeleteErr)
}

func (e *CompensationError) Unwrap() []error {
	return []error{e.Cause, e.DeleteErr}
}
