package queue_test

import (
	"testing"
	"time"

	"github.com/asyncgui/asyncgui-ext-clock/internal/queue"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/require"
)

func newEvent(deadline time.Duration, seq uint64) *queue.Event {
	return &queue.Event{
		Deadline: deadline,
		Seq:      seq,
		ID:       ksuid.New(),
		Fn:       func(time.Duration) error { return nil },
		Interval: queue.OneShot,
	}
}

func TestOrderByDeadline(t *testing.T) {
	q := queue.New()
	q.Insert(newEvent(30, 1))
	q.Insert(newEvent(10, 2))
	q.Insert(newEvent(20, 3))

	var deadlines []time.Duration
	for e := q.PopMin(); e != nil; e = q.PopMin() {
		deadlines = append(deadlines, e.Deadline)
	}
	require.Equal(t, []time.Duration{10, 20, 30}, deadlines)
	require.Zero(t, q.Len())
}

func TestOrderBySequenceOnEqualDeadline(t *testing.T) {
	q := queue.New()
	q.Insert(newEvent(10, 2))
	q.Insert(newEvent(10, 1))
	q.Insert(newEvent(10, 3))

	var seqs []uint64
	for e := q.PopMin(); e != nil; e = q.PopMin() {
		seqs = append(seqs, e.Seq)
	}
	require.Equal(t, []uint64{1, 2, 3}, seqs)
}

func TestPeekMin(t *testing.T) {
	q := queue.New()
	require.Nil(t, q.PeekMin())

	e := newEvent(10, 1)
	q.Insert(e)
	require.Same(t, e, q.PeekMin())
	require.Equal(t, 1, q.Len(), "peek must not remove")
}

func TestLazyCancellation(t *testing.T) {
	q := queue.New()
	front := newEvent(10, 1)
	next := newEvent(20, 2)
	q.Insert(front)
	q.Insert(next)

	// Marking does not restructure the queue.
	front.Cancelled = true
	require.Equal(t, 2, q.Len())

	// The cancelled entry is discarded when it would be popped.
	require.Same(t, next, q.PeekMin())
	require.Equal(t, 1, q.Len())
	require.Same(t, next, q.PopMin())
	require.Nil(t, q.PopMin())
}

func TestScan(t *testing.T) {
	q := queue.New()
	a := newEvent(10, 1)
	b := newEvent(20, 2)
	c := newEvent(30, 3)
	q.Insert(c)
	q.Insert(a)
	q.Insert(b)
	b.Cancelled = true

	var seen []uint64
	q.Scan(func(e *queue.Event) bool {
		seen = append(seen, e.Seq)
		return true
	})
	require.Equal(t, []uint64{1, 3}, seen)

	seen = nil
	q.Scan(func(e *queue.Event) bool {
		seen = append(seen, e.Seq)
		return false
	})
	require.Equal(t, []uint64{1}, seen)
}
