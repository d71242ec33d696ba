// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// Map converts domain/infra errors into gRPC-friendly status errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok && !isAppError(err) {
		return err
	}

	switch {
	case errors.Is(err, ErrValidation):
		return status.Error(codes.InvalidArgument, message(err))

	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, message(err))

	case errors.Is(err, ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, message(err))

	case errors.Is(err, ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, message(err))

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	case errors.Is(err, ErrRemote):
		return status.Error(codes.Unavailable, err.Error())

	default:
		// fallback → bubble up error message for debugging
		return status.Error(codes.Internal, err.Error())
	}
}

// FromStatus turns a gRPC status received by a client back into the
// domain taxonomy. Anything the server did not classify is a remote failure.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return Remote("call", err)
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return &AppError{Err: ErrValidation, Message: st.Message()}
	case codes.NotFound:
		return &AppError{Err: ErrNotFound, Message: st.Message()}
	case codes.Unauthenticated:
		return &AppError{Err: ErrUnauthenticated, Message: st.Message()}
	case codes.AlreadyExists:
		return &AppError{Err: ErrAlreadyExists, Message: st.Message()}
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	default:
		return Remote("call", errors.New(st.Message()))
	}
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in handlers for malformed requests.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

func message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func isAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}
