package tiling

import (
	"errors"
	"fmt"
)

// Planning failures. Every error returned by Planner.Plan unwraps to one of
// the first three; nothing is retried and no partial plan is produced.
var (
	ErrInvalidPlatformInfo = errors.New("invalid platform info")
	ErrUnsupportedShape    = errors.New("unsupported shape")
	ErrUnsupportedDtype    = errors.New("unsupported dtype")

	// ErrInconsistentPlan is reported by Plan.Validate for plans that were
	// not produced by a Planner (decoded blobs, hand-built fixtures).
	ErrInconsistentPlan = errors.New("inconsistent plan")
)

// PlanError names the request field that failed validation.
type PlanError struct {
	Kind  error
	Field string
	Msg   string
}

func (e *PlanError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("tiling: %v: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("tiling: %v: %s: %s", e.Kind, e.Field, e.Msg)
}

func (e *PlanError) Unwrap() error { return e.Kind }

func planErr(kind error, field, format string, args ...any) error {
	return &PlanError{Kind: kind, Field: field, Msg: fmt.Sprintf(format, args...)}
}
