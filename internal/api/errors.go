package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/tiler/internal/ops"
	"github.com/samcharles93/tiler/internal/platform"
	"github.com/samcharles93/tiler/internal/shape"
	"github.com/samcharles93/tiler/internal/tensor"
	"github.com/samcharles93/tiler/internal/tiling"
	"github.com/samcharles93/tiler/pkg/planblob"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// statusFor maps a domain error to an HTTP status and error type.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ops.ErrUnknownOp), errors.Is(err, platform.ErrUnknownProfile):
		return http.StatusNotFound, "not_found_error"
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ops.ErrArity),
		errors.Is(err, tiling.ErrInvalidPlatformInfo),
		errors.Is(err, tiling.ErrUnsupportedShape),
		errors.Is(err, tiling.ErrUnsupportedDtype),
		errors.Is(err, shape.ErrBroadcast),
		errors.Is(err, tensor.ErrData),
		errors.Is(err, planblob.ErrTooManyUnits),
		errors.Is(err, planblob.ErrFieldOverflow):
		return http.StatusBadRequest, "invalid_request_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}
