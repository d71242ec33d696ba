package errors_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	svcErr "github.com/oggyb/muzz-dating/internal/errors"
)

func TestMap(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"validation", svcErr.Validation("text", "message text must not be empty"), codes.InvalidArgument},
		{"not found", svcErr.NotFound("user", "u1"), codes.NotFound},
		{"gorm not found", gorm.ErrRecordNotFound, codes.NotFound},
		{"remote", svcErr.Remote("save like", errors.New("connection reset")), codes.Unavailable},
		{"unauthenticated", svcErr.Unauthenticated("bad token"), codes.Unauthenticated},
		{"exists", svcErr.AlreadyExists("account", "a@b.c"), codes.AlreadyExists},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"canceled", context.Canceled, codes.Canceled},
		{"other", errors.New("boom"), codes.Internal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, status.Code(svcErr.Map(tc.err)))
		})
	}
	assert.NoError(t, svcErr.Map(nil))
}

func TestMap_PassesThroughStatus(t *testing.T) {
	in := status.Error(codes.PermissionDenied, "nope")
	assert.Equal(t, codes.PermissionDenied, status.Code(svcErr.Map(in)))
}

func TestFromStatus_RoundTrip(t *testing.T) {
	err := svcErr.FromStatus(svcErr.Map(svcErr.Validation("name", "display name must not be empty")))
	assert.True(t, svcErr.IsValidation(err))
	assert.Equal(t, "display name must not be empty", err.Error())

	err = svcErr.FromStatus(svcErr.Map(svcErr.NotFound("user", "u9")))
	assert.True(t, svcErr.IsNotFound(err))

	err = svcErr.FromStatus(status.Error(codes.Unavailable, "store down"))
	assert.True(t, svcErr.IsRemote(err))
}

func TestRemote_UnwrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := svcErr.Remote("append message", cause)
	assert.ErrorIs(t, err, svcErr.ErrRemote)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "append message failed: disk full", err.Error())
}
