package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	apperrors "github.com/savaki/apigw-export/internal/errors"
	"github.com/savaki/apigw-export/internal/models"
	"github.com/savaki/apigw-export/internal/pipeline"
	"github.com/savaki/apigw-export/internal/services"
	"github.com/stretchr/testify/assert"
)

type mockStore struct {
	config *services.Config
	err    error
}

func (m *mockStore) GetConfig(ctx context.Context) (*services.Config, error) {
	return m.config, m.err
}

type mockRunner struct {
	calls    int
	dc       models.DeploymentContext
	target   models.PublishTarget
	requests []models.ExportRequest
	err      error
}

func (m *mockRunner) Run(ctx context.Context, dc models.DeploymentContext, target models.PublishTarget, requests []models.ExportRequest) (*pipeline.Execution, error) {
	m.calls++
	m.dc = dc
	m.target = target
	m.requests = requests
	return &pipeline.Execution{RunID: "run", State: pipeline.StateDone}, m.err
}

func stackEvent(t *testing.T, stackName, status string) events.CloudWatchEvent {
	detail := StackStatusDetail{
		StackID: "arn:aws:cloudformation:us-east-1:123456789012:stack/" + stackName + "/3f1c7e80-0000-0000-0000-000000000000",
	}
	detail.StatusDetails.Status = status
	raw, err := json.Marshal(detail)
	assert.NoError(t, err)

	return events.CloudWatchEvent{
		Source:     "aws.cloudformation",
		DetailType: "CloudFormation Stack Status Change",
		Region:     "us-east-1",
		Detail:     raw,
	}
}

func testContext() context.Context {
	return zerolog.New(io.Discard).WithContext(context.Background())
}

func TestHandleEvent(t *testing.T) {
	store := &mockStore{config: &services.Config{
		S3BucketName: "docs-bucket",
		S3KeyName:    "orders-api",
		Exports:      []string{"swagger:json"},
	}}

	tests := []struct {
		name        string
		stackName   string
		status      string
		wantCalls   int
		wantService string
	}{
		{
			name:        "update complete",
			stackName:   "orders-prod",
			status:      "UPDATE_COMPLETE",
			wantCalls:   1,
			wantService: "orders",
		},
		{
			name:        "create complete with hyphenated service",
			stackName:   "order-history-prod",
			status:      "CREATE_COMPLETE",
			wantCalls:   1,
			wantService: "order-history",
		},
		{
			name:      "in progress",
			stackName: "orders-prod",
			status:    "UPDATE_IN_PROGRESS",
		},
		{
			name:      "rollback",
			stackName: "orders-prod",
			status:    "UPDATE_ROLLBACK_COMPLETE",
		},
		{
			name:      "other stage",
			stackName: "orders-dev",
			status:    "UPDATE_COMPLETE",
		},
		{
			name:      "stage only",
			stackName: "-prod",
			status:    "UPDATE_COMPLETE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{}
			handler := NewHandler("prod", store, runner)

			err := handler.HandleEvent(testContext(), stackEvent(t, tt.stackName, tt.status))
			assert.NoError(t, err)
			assert.Equal(t, tt.wantCalls, runner.calls)
			if tt.wantCalls == 0 {
				return
			}

			assert.Equal(t, models.DeploymentContext{ServiceName: tt.wantService, Stage: "prod", Region: "us-east-1"}, runner.dc)
			assert.Equal(t, models.PublishTarget{Bucket: "docs-bucket", KeyPrefix: "orders-api"}, runner.target)
			assert.Equal(t, []models.ExportRequest{{Format: models.FormatSwagger, Encoding: models.EncodingJSON}}, runner.requests)
		})
	}
}

func TestHandleEvent_Errors(t *testing.T) {
	t.Run("invalid detail", func(t *testing.T) {
		handler := NewHandler("prod", &mockStore{}, &mockRunner{})
		err := handler.HandleEvent(testContext(), events.CloudWatchEvent{Detail: json.RawMessage(`not-json`)})
		assert.Error(t, err)
	})

	t.Run("config failure", func(t *testing.T) {
		storeErr := errors.New("AccessDeniedException")
		runner := &mockRunner{}
		handler := NewHandler("prod", &mockStore{err: storeErr}, runner)

		err := handler.HandleEvent(testContext(), stackEvent(t, "orders-prod", "UPDATE_COMPLETE"))
		assert.ErrorIs(t, err, storeErr)
		assert.Equal(t, 0, runner.calls)
	})

	t.Run("invalid stored configuration", func(t *testing.T) {
		tests := []struct {
			name    string
			config  *services.Config
			wantErr error
		}{
			{
				name:    "unknown acl",
				config:  &services.Config{S3BucketName: "b", S3KeyName: "k", ACL: "world-writable"},
				wantErr: apperrors.ErrUnknownAccessPolicy,
			},
			{
				name:    "unknown export format",
				config:  &services.Config{S3BucketName: "b", S3KeyName: "k", Exports: []string{"raml:json"}},
				wantErr: apperrors.ErrUnknownFormat,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				runner := &mockRunner{}
				handler := NewHandler("prod", &mockStore{config: tt.config}, runner)

				err := handler.HandleEvent(testContext(), stackEvent(t, "orders-prod", "UPDATE_COMPLETE"))

				var cfgErr *apperrors.ConfigurationError
				assert.True(t, errors.As(err, &cfgErr))
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, runner.calls)
			})
		}
	})

	t.Run("pipeline failure", func(t *testing.T) {
		runErr := errors.New("boom")
		runner := &mockRunner{err: runErr}
		handler := NewHandler("prod", &mockStore{config: &services.Config{S3BucketName: "b", S3KeyName: "k"}}, runner)

		err := handler.HandleEvent(testContext(), stackEvent(t, "orders-prod", "UPDATE_COMPLETE"))
		assert.ErrorIs(t, err, runErr)
	})
}

func TestStackStatusDetail_StackName(t *testing.T) {
	assert.Equal(t, "orders-prod", StackStatusDetail{StackID: "arn:aws:cloudformation:us-east-1:123456789012:stack/orders-prod/abc"}.StackName())
	assert.Equal(t, "orders-prod", StackStatusDetail{StackID: "orders-prod"}.StackName())
}
