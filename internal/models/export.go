package models

import (
	"fmt"
	"strings"

	apperrors "github.com/savaki/apigw-export/internal/errors"
)

// Format is the schema dialect of an exported specification
type Format string

const (
	FormatSwagger Format = "swagger" // Swagger 2.0
	FormatOAS30   Format = "oas30"   // OpenAPI 3.0
)

// Encoding is the text encoding of an exported specification
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingYAML Encoding = "yaml"
)

// ContentType returns the media type requested from the export service
func (e Encoding) ContentType() string {
	switch e {
	case EncodingYAML:
		return "application/yaml"
	default:
		return "application/json"
	}
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSwagger, FormatOAS30:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownFormat, s)
	}
}

func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(strings.ToLower(strings.TrimSpace(s))); e {
	case EncodingJSON, EncodingYAML:
		return e, nil
	case "yml":
		return EncodingYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownEncoding, s)
	}
}

// ExportRequest selects one artifact to produce. One request yields one
// published object.
type ExportRequest struct {
	Format   Format   `json:"format"`
	Encoding Encoding `json:"encoding"`
}

// ParseExportRequest parses the format:encoding form, e.g. oas30:yaml
func ParseExportRequest(s string) (ExportRequest, error) {
	f, e, ok := strings.Cut(s, ":")
	if !ok {
		return ExportRequest{}, fmt.Errorf("invalid export %q, expected format:encoding", s)
	}

	format, err := ParseFormat(f)
	if err != nil {
		return ExportRequest{}, err
	}
	encoding, err := ParseEncoding(e)
	if err != nil {
		return ExportRequest{}, err
	}

	return ExportRequest{Format: format, Encoding: encoding}, nil
}

// ParseExportRequests parses each value with ParseExportRequest
func ParseExportRequests(ss []string) ([]ExportRequest, error) {
	var requests []ExportRequest
	for _, s := range ss {
		req, err := ParseExportRequest(s)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// DefaultExportRequests returns every format/encoding combination
func DefaultExportRequests() []ExportRequest {
	return []ExportRequest{
		{Format: FormatSwagger, Encoding: EncodingJSON},
		{Format: FormatOAS30, Encoding: EncodingJSON},
		{Format: FormatSwagger, Encoding: EncodingYAML},
		{Format: FormatOAS30, Encoding: EncodingYAML},
	}
}

func (r ExportRequest) String() string {
	return string(r.Format) + ":" + string(r.Encoding)
}

// Suffix returns the key suffix for the request, e.g. -swagger.json
func (r ExportRequest) Suffix() string {
	return "-" + string(r.Format) + "." + string(r.Encoding)
}

// Key returns the object key for the request under prefix
func (r ExportRequest) Key(prefix string) string {
	return prefix + r.Suffix()
}

// SpecDocument is an exported specification. The body is opaque.
type SpecDocument struct {
	Body        []byte
	ContentType string
}
