package services

import (
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog"
)

type mockCloudFormation struct {
	calls              []*cloudformation.DescribeStacksInput
	describeStacksFunc func(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
}

func (m *mockCloudFormation) DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	m.calls = append(m.calls, params)
	if m.describeStacksFunc != nil {
		return m.describeStacksFunc(ctx, params, optFns...)
	}
	return nil, errors.New("describeStacksFunc not set")
}

type mockAPIGateway struct {
	calls         []*apigateway.GetExportInput
	getExportFunc func(ctx context.Context, params *apigateway.GetExportInput, optFns ...func(*apigateway.Options)) (*apigateway.GetExportOutput, error)
}

func (m *mockAPIGateway) GetExport(ctx context.Context, params *apigateway.GetExportInput, optFns ...func(*apigateway.Options)) (*apigateway.GetExportOutput, error) {
	m.calls = append(m.calls, params)
	if m.getExportFunc != nil {
		return m.getExportFunc(ctx, params, optFns...)
	}
	return nil, errors.New("getExportFunc not set")
}

type mockS3 struct {
	putObjectCalls    []*s3.PutObjectInput
	putObjectAclCalls []*s3.PutObjectAclInput
	deleteObjectCalls []*s3.DeleteObjectInput

	putObjectFunc    func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	putObjectAclFunc func(ctx context.Context, params *s3.PutObjectAclInput, optFns ...func(*s3.Options)) (*s3.PutObjectAclOutput, error)
	deleteObjectFunc func(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.putObjectCalls = append(m.putObjectCalls, params)
	if m.putObjectFunc != nil {
		return m.putObjectFunc(ctx, params, optFns...)
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) PutObjectAcl(ctx context.Context, params *s3.PutObjectAclInput, optFns ...func(*s3.Options)) (*s3.PutObjectAclOutput, error) {
	m.putObjectAclCalls = append(m.putObjectAclCalls, params)
	if m.putObjectAclFunc != nil {
		return m.putObjectAclFunc(ctx, params, optFns...)
	}
	return &s3.PutObjectAclOutput{}, nil
}

func (m *mockS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.deleteObjectCalls = append(m.deleteObjectCalls, params)
	if m.deleteObjectFunc != nil {
		return m.deleteObjectFunc(ctx, params, optFns...)
	}
	return &s3.DeleteObjectOutput{}, nil
}

type mockSSM struct {
	getParametersByPathFunc func(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
	calls                   int
}

func (m *mockSSM) GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	m.calls++
	if m.getParametersByPathFunc != nil {
		return m.getParametersByPathFunc(ctx, params, optFns...)
	}
	return nil, errors.New("getParametersByPathFunc not set")
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testContext() context.Context {
	logger := testLogger()
	return logger.WithContext(context.Background())
}
