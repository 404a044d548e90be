package models

import (
	"fmt"
	"strings"

	apperrors "github.com/savaki/apigw-export/internal/errors"
)

// AccessPolicy is an S3 canned ACL applied to a published object. The zero
// value requests no policy.
type AccessPolicy string

const (
	AccessPolicyNone                   AccessPolicy = ""
	AccessPolicyPrivate                AccessPolicy = "private"
	AccessPolicyPublicRead             AccessPolicy = "public-read"
	AccessPolicyPublicReadWrite        AccessPolicy = "public-read-write"
	AccessPolicyAuthenticatedRead      AccessPolicy = "authenticated-read"
	AccessPolicyAWSExecRead            AccessPolicy = "aws-exec-read"
	AccessPolicyBucketOwnerRead        AccessPolicy = "bucket-owner-read"
	AccessPolicyBucketOwnerFullControl AccessPolicy = "bucket-owner-full-control"
)

var accessPolicies = []AccessPolicy{
	AccessPolicyPrivate,
	AccessPolicyPublicRead,
	AccessPolicyPublicReadWrite,
	AccessPolicyAuthenticatedRead,
	AccessPolicyAWSExecRead,
	AccessPolicyBucketOwnerRead,
	AccessPolicyBucketOwnerFullControl,
}

func ParseAccessPolicy(s string) (AccessPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return AccessPolicyNone, nil
	}
	for _, p := range accessPolicies {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownAccessPolicy, s)
}

// IsSet reports whether an access policy was requested
func (p AccessPolicy) IsSet() bool {
	return p != AccessPolicyNone
}

// IsPublic reports whether the policy grants read access beyond the owner
func (p AccessPolicy) IsPublic() bool {
	return p == AccessPolicyPublicRead || p == AccessPolicyPublicReadWrite || p == AccessPolicyAuthenticatedRead
}

// PublishTarget is the destination for exported specifications
type PublishTarget struct {
	Bucket       string       `json:"bucket"`
	KeyPrefix    string       `json:"key_prefix"`
	AccessPolicy AccessPolicy `json:"access_policy,omitempty"`
}

// Validate checks the required fields. It never touches the network.
func (t PublishTarget) Validate() error {
	if t.Bucket == "" {
		return apperrors.Configuration(apperrors.ErrBucketRequired)
	}
	if t.KeyPrefix == "" {
		return apperrors.Configuration(apperrors.ErrKeyPrefixRequired)
	}
	if _, err := ParseAccessPolicy(string(t.AccessPolicy)); err != nil {
		return apperrors.Configuration(err)
	}
	return nil
}

// PublishedArtifact describes an object written by the publisher
type PublishedArtifact struct {
	Request      ExportRequest `json:"request"`
	Bucket       string        `json:"bucket"`
	Key          string        `json:"key"`
	AccessPolicy AccessPolicy  `json:"access_policy,omitempty"`
	Size         int           `json:"size"`
}

// URI returns the s3:// location of the artifact
func (a PublishedArtifact) URI() string {
	return "s3://" + a.Bucket + "/" + a.Key
}
