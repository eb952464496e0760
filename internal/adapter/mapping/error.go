package mapping

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"google.golang.org/grpc/codes"

	"github.com/VastSea0/italiano-sub000/internal/entity"
)

// ToConnectError converts domain errors into Connect errors. Errors that
// already carry a Connect code pass through unchanged.
func ToConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	return connect.NewError(connect.Code(ToCode(err)), err)
}

// ToCode classifies an error with the gRPC status code the Connect protocol
// shares.
func ToCode(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, entity.ErrInvalidLearnerID), errors.Is(err, entity.ErrInvalidItemID),
		errors.Is(err, entity.ErrInvalidSession), errors.Is(err, entity.ErrInvalidFilter):
		return codes.InvalidArgument
	case errors.Is(err, entity.ErrItemNotFound), errors.Is(err, entity.ErrProgressNotFound),
		errors.Is(err, entity.ErrSessionNotFound), errors.Is(err, entity.ErrEmptyDeck):
		return codes.NotFound
	case errors.Is(err, entity.ErrDuplicateSession), errors.Is(err, entity.ErrDuplicateProgress):
		return codes.AlreadyExists
	case errors.Is(err, entity.ErrVocabularySource):
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// ErrorInterceptor maps errors returned by unary handlers.
func ErrorInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			resp, err := next(ctx, req)
			if err != nil {
				return nil, ToConnectError(err)
			}
			return resp, nil
		}
	}
}
