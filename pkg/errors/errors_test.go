package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "bad request", err: BadRequest("bad"), want: http.StatusBadRequest},
		{name: "not found", err: NotFound("missing"), want: http.StatusNotFound},
		{name: "conflict", err: Conflict("taken"), want: http.StatusConflict},
		{name: "too large", err: PayloadTooLarge("big"), want: http.StatusRequestEntityTooLarge},
		{name: "wrapped", err: fmt.Errorf("outer: %w", Conflict("taken")), want: http.StatusConflict},
		{name: "plain error", err: stderrors.New("boom"), want: http.StatusInternalServerError},
		{name: "nonsense status", err: New(42, "odd"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "Invalid credentials", MessageOf(NotFound("Invalid credentials")))
	assert.Equal(t, "Internal Server Error", MessageOf(stderrors.New("dial tcp: refused")))
	assert.Equal(t, "Internal Server Error", MessageOf(Internal("failed to save user", stderrors.New("pq: broken"))))
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NotFound("Invalid credentials"))

	assert.True(t, stderrors.Is(err, NotFound("Invalid credentials")))
	assert.False(t, stderrors.Is(err, NotFound("something else")))
	assert.False(t, stderrors.Is(err, BadRequest("Invalid credentials")))
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Internal("failed to save user", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save user: connection reset", err.Error())
}

func TestError_GRPCStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		code codes.Code
	}{
		{err: BadRequest("bad"), code: codes.InvalidArgument},
		{err: NotFound("missing"), code: codes.NotFound},
		{err: Conflict("taken"), code: codes.AlreadyExists},
		{err: PayloadTooLarge("big"), code: codes.ResourceExhausted},
		{err: Internal("oops", nil), code: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Message, func(t *testing.T) {
			st, ok := status.FromError(tt.err)
			assert.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.err.Message, st.Message())
		})
	}
}
