package clock

import (
	"errors"
	"fmt"
	"time"

	"github.com/asyncgui/asyncgui-ext-clock/internal/queue"

	"github.com/hashicorp/go-multierror"
	"github.com/segmentio/ksuid"
)

// Duration is a span of virtual time. The unit is opaque: a clock never
// consults the OS, so a Duration is whatever unit the caller consistently
// feeds to Tick, at nanosecond granularity.
type Duration = time.Duration

const (
	Nanosecond  = time.Nanosecond
	Microsecond = time.Microsecond
	Millisecond = time.Millisecond
	Second      = time.Second
	Minute      = time.Minute
	Hour        = time.Hour
)

// Callback is invoked when an event fires. delta is the full amount the
// triggering Tick call advanced the clock by. An interval callback may
// return ErrStopInterval to unschedule itself; any other non-nil error is
// reported through the clock's failure policy.
type Callback func(delta Duration) error

// Handle identifies a scheduled event for cancellation. It is non-owning:
// cancelling a stale, fired or zero Handle is always a silent no-op.
type Handle struct {
	seq uint64
	id  ksuid.KSUID
}

// String returns the stringified event identifier.
func (h Handle) String() string {
	return h.id.String()
}

// IsZero reports whether h identifies no event.
func (h Handle) IsZero() bool {
	return h.seq == 0
}

// New creates a clock whose virtual time starts at origin.
//
// A Clock and everything scheduled on it belong to one logical thread of
// control: Tick, ScheduleOnce, ScheduleInterval and Cancel must not be
// called concurrently from multiple goroutines.
func New(origin Duration) *Clock {
	return &Clock{
		now:     origin,
		queue:   queue.New(),
		live:    make(map[uint64]*queue.Event),
		nextSeq: 1,
	}
}

// Clock is a virtual-time event scheduler. Time advances only through
// Tick; the clock itself performs no I/O and knows nothing of wall time.
type Clock struct {
	now      Duration
	queue    *queue.Queue
	live     map[uint64]*queue.Event
	deferred []*queue.Event
	nextSeq  uint64
	ticking  bool
	onError  ErrorHandler
}

// Now returns the current virtual time.
func (c *Clock) Now() Duration {
	return c.now
}

// OnError registers fn to receive callback failures as they occur.
// When no handler is registered, Tick collects the failures and returns
// them aggregated after the batch completes.
func (c *Clock) OnError(fn ErrorHandler) {
	c.onError = fn
}

// ScheduleOnce schedules fn to fire once the clock has advanced by delay.
// The clock's time is not affected. An event scheduled during a Tick call
// fires no earlier than the next Tick call, even with delay 0.
func (c *Clock) ScheduleOnce(fn Callback, delay Duration) (Handle, error) {
	if delay < 0 {
		return Handle{}, fmt.Errorf("%w: negative delay %v", ErrInvalidArgument, delay)
	}
	return c.schedule(fn, delay, queue.OneShot)
}

// ScheduleInterval schedules fn to fire every interval of virtual time.
// An interval of 0 fires on every Tick call. The callback stops the
// repetition by returning ErrStopInterval; Cancel works as well.
func (c *Clock) ScheduleInterval(fn Callback, interval Duration) (Handle, error) {
	if interval < 0 {
		return Handle{}, fmt.Errorf("%w: negative interval %v", ErrInvalidArgument, interval)
	}
	return c.schedule(fn, interval, interval)
}

func (c *Clock) schedule(fn Callback, delay, interval Duration) (Handle, error) {
	if fn == nil {
		return Handle{}, fmt.Errorf("%w: nil callback", ErrInvalidArgument)
	}
	e := &queue.Event{
		Deadline: c.now + delay,
		Seq:      c.nextSeq,
		ID:       ksuid.New(),
		Fn:       fn,
		Interval: interval,
	}
	c.nextSeq++
	c.live[e.Seq] = e
	if c.ticking {
		c.deferred = append(c.deferred, e)
	} else {
		c.queue.Insert(e)
	}
	return Handle{seq: e.Seq, id: e.ID}, nil
}

// Tick advances the clock by delta and fires all events that are now due,
// strictly ordered by (deadline, scheduling order). Every callback of the
// batch receives delta. Events scheduled by a firing callback are held
// back until a later Tick call, which bounds the work a single Tick
// performs. Tick must not be called from a firing callback.
func (c *Clock) Tick(delta Duration) error {
	if delta < 0 {
		return fmt.Errorf("%w: negative delta %v", ErrInvalidArgument, delta)
	}
	if c.ticking {
		return ErrReentrantTick
	}
	c.ticking = true
	defer func() { c.ticking = false }()

	c.now += delta

	var batch *multierror.Error
	for {
		e := c.queue.PeekMin()
		if e == nil || e.Deadline > c.now {
			break
		}
		c.queue.PopMin()

		err := fire(e, delta)
		if err != nil && !errors.Is(err, ErrStopInterval) {
			cbErr := &CallbackError{Handle: Handle{seq: e.Seq, id: e.ID}, Err: err}
			if c.onError != nil {
				c.onError(cbErr.Handle, cbErr)
			} else {
				batch = multierror.Append(batch, cbErr)
			}
		}
		switch {
		case e.Cancelled:
			// The callback cancelled its own event.
			delete(c.live, e.Seq)
		case e.Interval == queue.OneShot || errors.Is(err, ErrStopInterval):
			delete(c.live, e.Seq)
		default:
			e.Deadline += e.Interval
			c.deferred = append(c.deferred, e)
		}
	}

	// Admit events created (or re-armed) during the loop. They become
	// eligible on the next Tick call at the earliest.
	for _, e := range c.deferred {
		if !e.Cancelled {
			c.queue.Insert(e)
		}
	}
	c.deferred = c.deferred[:0]

	return batch.ErrorOrNil()
}

// fire runs the event's callback, converting a panic into an error so a
// faulty callback cannot abort the remainder of the batch.
func fire(e *queue.Event, delta Duration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.Fn(delta)
}

// Cancel prevents a pending event from ever firing. It is idempotent and
// silently ignores handles of fired, cancelled or unknown events, so it is
// always safe to call from teardown paths.
func (c *Clock) Cancel(h Handle) {
	e, ok := c.live[h.seq]
	if !ok || e.ID != h.id {
		return
	}
	e.Cancelled = true
	delete(c.live, h.seq)
}

// Len returns the number of pending events.
func (c *Clock) Len() int {
	return len(c.live)
}

// Scan iterates the pending events in firing order, passing each event's
// handle and deadline to fn, until fn returns false or the queue is
// exhausted. Events scheduled during a still-running Tick call are not
// visited until that call returns.
func (c *Clock) Scan(fn func(h Handle, deadline Duration) bool) {
	c.queue.Scan(func(e *queue.Event) bool {
		return fn(Handle{seq: e.Seq, id: e.ID}, e.Deadline)
	})
}
