package cognito

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/dmitrijs2005/gophauth/internal/client/provider"
)

// mapError translates SDK failures into provider sentinels.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, provider.ErrUnavailable, err)
	}

	var sendErr *smithyhttp.RequestSendError
	var netErr net.Error
	if errors.As(err, &sendErr) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %v", op, provider.ErrUnavailable, err)
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var sentinel error
	switch apiErr.ErrorCode() {
	case "NotAuthorizedException", "PasswordResetRequiredException":
		sentinel = provider.ErrNotAuthorized
	case "UserNotFoundException":
		sentinel = provider.ErrUserNotFound
	case "UserNotConfirmedException":
		sentinel = provider.ErrUserNotConfirmed
	case "UsernameExistsException", "AliasExistsException":
		sentinel = provider.ErrUserExists
	case "InvalidParameterException", "InvalidPasswordException", "CodeMismatchException":
		sentinel = provider.ErrInvalidParameter
	case "TooManyRequestsException", "TooManyFailedAttemptsException", "LimitExceededException":
		sentinel = provider.ErrTooManyRequests
	case "InternalErrorException", "ServiceUnavailable", "RequestTimeout":
		sentinel = provider.ErrUnavailable
	default:
		return fmt.Errorf("%s failed (code: %s): %w", op, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%s: %w: %s", op, sentinel, apiErr.ErrorMessage())
}
