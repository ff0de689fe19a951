package queue

import (
	"time"

	"github.com/huandu/skiplist"
	"github.com/segmentio/ksuid"
)

// OneShot marks an event that fires once and is discarded.
const OneShot = time.Duration(-1)

// Event is a pending timer event owned by the clock.
type Event struct {
	Deadline  time.Duration
	Seq       uint64
	ID        ksuid.KSUID
	Fn        func(delta time.Duration) error
	Interval  time.Duration // OneShot, or the repeat period (0 = every tick)
	Cancelled bool
}

type key struct {
	deadline time.Duration
	seq      uint64
}

func New() *Queue {
	return &Queue{
		l: skiplist.New(
			skiplist.GreaterThanFunc(func(a, b interface{}) int {
				k1, k2 := a.(key), b.(key)
				if k1.deadline != k2.deadline {
					if k1.deadline > k2.deadline {
						return 1
					}
					return -1
				}
				if k1.seq > k2.seq {
					return 1
				} else if k1.seq < k2.seq {
					return -1
				}
				return 0
			}),
		),
	}
}

// Queue holds pending events ordered by (deadline, sequence) ascending.
type Queue struct {
	l *skiplist.SkipList
}

func (q *Queue) Insert(e *Event) {
	q.l.Set(key{e.Deadline, e.Seq}, e)
}

// PeekMin returns the front event without removing it, or nil if the
// queue holds no live events. Cancelled entries encountered at the
// front are discarded.
func (q *Queue) PeekMin() *Event {
	for {
		el := q.l.Front()
		if el == nil {
			return nil
		}
		e := el.Value.(*Event)
		if e.Cancelled {
			q.l.Remove(key{e.Deadline, e.Seq})
			continue
		}
		return e
	}
}

// PopMin removes and returns the front live event,
// or nil if the queue holds none.
func (q *Queue) PopMin() *Event {
	e := q.PeekMin()
	if e == nil {
		return nil
	}
	q.l.Remove(key{e.Deadline, e.Seq})
	return e
}

func (q *Queue) Len() int {
	return q.l.Len()
}

// Scan iterates live events in firing order
// until fn returns false or the queue is exhausted.
func (q *Queue) Scan(fn func(*Event) bool) {
	for el := q.l.Front(); el != nil; el = el.Next() {
		e := el.Value.(*Event)
		if e.Cancelled {
			continue
		}
		if !fn(e) {
			return
		}
	}
}
