package clock

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a negative delay, interval or
	// delta is passed to a scheduling or ticking operation. The operation
	// leaves the clock unchanged.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrReentrantTick is returned when Tick is invoked, directly or
	// through a firing callback, while another Tick call on the same
	// clock is still executing.
	ErrReentrantTick = errors.New("reentrant tick")

	// ErrStopInterval unschedules an interval event when returned from
	// its callback. It is never reported as a callback failure.
	ErrStopInterval = errors.New("stop interval")
)

// ErrorHandler receives callback failures as they occur during a Tick call.
type ErrorHandler func(Handle, error)

// CallbackError wraps an error returned (or a panic recovered)
// from a scheduled callback during firing.
type CallbackError struct {
	Handle Handle
	Err    error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("callback %s: %v", e.Handle, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }
