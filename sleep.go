package clock

import (
	"fmt"
	"sync/atomic"
)

//go:generate mockgen -source ./sleep.go -destination ./internal/mock/mock_gen.go -package mock Suspender

// Suspender is the boundary to the cooperative task runtime that hosts the
// caller. It is consumed, never implemented, by this package.
//
// Suspend parks the calling task. Before parking, register is invoked with
// the resumption capability; invoking that capability makes the parked task
// runnable again and Suspend returns nil at the original call site. If the
// runtime cancels the task while it is parked, Suspend returns the
// runtime's cancellation error instead, before the task is torn down.
type Suspender interface {
	Suspend(register func(resume func())) error
}

// Sleep suspends the calling task until the clock has advanced by duration.
// The task resumes during the first Tick call whose cumulative advance
// reaches the deadline, never earlier. If the task is cancelled while
// sleeping, the pending event is released and the cancellation error is
// returned.
func Sleep(c *Clock, task Suspender, duration Duration) error {
	if duration < 0 {
		return fmt.Errorf("%w: negative duration %v", ErrInvalidArgument, duration)
	}
	var h Handle
	err := task.Suspend(func(resume func()) {
		h, _ = c.ScheduleOnce(func(Duration) error {
			resume()
			return nil
		}, duration)
	})
	if err != nil {
		c.Cancel(h)
		return err
	}
	return nil
}

// NFrames suspends the calling task until Tick has been called n more
// times on the clock, regardless of the deltas involved.
func NFrames(c *Clock, task Suspender, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative frame count %d", ErrInvalidArgument, n)
	}
	if n == 0 {
		return nil
	}
	var h Handle
	err := task.Suspend(func(resume func()) {
		remaining := n
		h, _ = c.ScheduleInterval(func(Duration) error {
			remaining--
			if remaining == 0 {
				resume()
				return ErrStopInterval
			}
			return nil
		}, 0)
	})
	if err != nil {
		c.Cancel(h)
		return err
	}
	return nil
}

// RunInThread runs fn on its own goroutine and suspends the calling task
// until fn returns, polling for completion every pollInterval of virtual
// time. fn's error is returned to the resumed task. If the task is
// cancelled while waiting, the polling event is released and the
// cancellation error is returned; fn itself is not interrupted.
func RunInThread(c *Clock, task Suspender, fn func() error, pollInterval Duration) error {
	if pollInterval < 0 {
		return fmt.Errorf("%w: negative poll interval %v", ErrInvalidArgument, pollInterval)
	}
	var done atomic.Bool
	var fnErr error
	go func() {
		fnErr = fn()
		done.Store(true)
	}()
	var h Handle
	err := task.Suspend(func(resume func()) {
		h, _ = c.ScheduleInterval(func(Duration) error {
			if !done.Load() {
				return nil
			}
			resume()
			return ErrStopInterval
		}, pollInterval)
	})
	if err != nil {
		c.Cancel(h)
		return err
	}
	return fnErr
}
