package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rmadrazo97/studek-app-sub001/internal/service"
)

func TestServiceError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *service.ServiceError
		expected string
	}{
		{
			name: "error_with_underlying_error",
			err: &service.ServiceError{
				Operation: "test_operation",
				Message:   "test message",
				Err:       errors.New("underlying error"),
			},
			expected: "test_operation operation failed: test message: underlying error",
		},
		{
			name: "error_without_underlying_error",
			err: &service.ServiceError{
				Operation: "test_operation",
				Message:   "test message",
				Err:       nil,
			},
			expected: "test_operation operation failed: test message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestNewSubmitReviewError(t *testing.T) {
	underlyingErr := errors.New("scheduler error")
	message := "failed to schedule review"

	serviceErr := service.NewSubmitReviewError(message, underlyingErr)

	assert.NotNil(t, serviceErr)
	assert.Equal(t, "submit_review", serviceErr.Operation)
	assert.Equal(t, message, serviceErr.Message)
	assert.Equal(t, underlyingErr, serviceErr.Err)

	expectedError := "submit_review operation failed: failed to schedule review: scheduler error"
	assert.Equal(t, expectedError, serviceErr.Error())

	assert.Equal(t, underlyingErr, serviceErr.Unwrap())
}

func TestServiceError_ErrorsIs(t *testing.T) {
	underlyingErr := errors.New("scheduler rejected card")
	serviceErr := service.NewSubmitReviewError("test message", underlyingErr)

	// errors.Is reaches the underlying error through Unwrap
	assert.True(t, errors.Is(serviceErr, underlyingErr))
	assert.True(t, errors.Is(serviceErr, serviceErr))

	otherErr := errors.New("other error")
	assert.False(t, errors.Is(serviceErr, otherErr))
}

func TestServiceError_ErrorsAs(t *testing.T) {
	underlyingErr := errors.New("scheduler error")
	serviceErr := service.NewSubmitReviewError("test message", underlyingErr)

	var targetServiceErr *service.ServiceError
	assert.True(t, errors.As(serviceErr, &targetServiceErr))
	assert.Equal(t, serviceErr, targetServiceErr)
	assert.Equal(t, "submit_review", targetServiceErr.Operation)
}
