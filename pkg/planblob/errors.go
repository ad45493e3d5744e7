package planblob

import "errors"

var (
	ErrInvalidMagic     = errors.New("invalid plan blob magic")
	ErrUnsupportedMajor = errors.New("unsupported plan blob major version")
	ErrCorruptBlob      = errors.New("corrupt plan blob")
	ErrTooManyUnits     = errors.New("plan exceeds blob unit capacity")
	ErrFieldOverflow    = errors.New("plan field exceeds its blob width")
)
