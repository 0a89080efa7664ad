package cognito

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/dmitrijs2005/gophauth/internal/client/provider"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	api := func(code string) error {
		return &smithy.GenericAPIError{Code: code, Message: "msg"}
	}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not authorized", api("NotAuthorizedException"), provider.ErrNotAuthorized},
		{"password reset", api("PasswordResetRequiredException"), provider.ErrNotAuthorized},
		{"user not found", api("UserNotFoundException"), provider.ErrUserNotFound},
		{"not confirmed", api("UserNotConfirmedException"), provider.ErrUserNotConfirmed},
		{"exists", api("UsernameExistsException"), provider.ErrUserExists},
		{"invalid password", api("InvalidPasswordException"), provider.ErrInvalidParameter},
		{"throttled", api("TooManyRequestsException"), provider.ErrTooManyRequests},
		{"internal", api("InternalErrorException"), provider.ErrUnavailable},
		{"send error", &smithyhttp.RequestSendError{Err: errors.New("connection refused")}, provider.ErrUnavailable},
		{"deadline", fmt.Errorf("op: %w", context.DeadlineExceeded), provider.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError("sign in", tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "sign in")
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.NoError(t, mapError("sign in", nil))
}

func TestMapError_UnknownCodeKeepsCause(t *testing.T) {
	cause := &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "pool"}

	err := mapError("sign in", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "code: ResourceNotFoundException")
	assert.NotErrorIs(t, err, provider.ErrUnavailable)
}

func TestMapError_PlainError(t *testing.T) {
	cause := errors.New("boom")
	assert.ErrorIs(t, mapError("sign in", cause), cause)
}
