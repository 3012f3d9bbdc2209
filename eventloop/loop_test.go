package eventloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleAtFiresAndStops(t *testing.T) {
	l := New()

	fired := make(chan struct{}, 1)
	l.ScheduleAt(time.Now().Add(10*time.Millisecond), func(now time.Time) {
		fired <- struct{}{}
		l.Stop()
	})

	done := make(chan struct{})
	go func() {
		l.RunUntilStop()
		close(done)
	}()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop never stopped")
	}
}

func TestRegisterAndUnregisterTrackFdSet(t *testing.T) {
	a := assert.New(t)
	l := New()

	called := false
	l.Register(99, func(fd int) { called = true })
	a.Contains(l.fds, 99)

	l.Unregister(99)
	a.NotContains(l.fds, 99)
	a.False(called)
}

func TestNextTimeoutClampedByPressure(t *testing.T) {
	a := assert.New(t)
	l := New()
	l.ScheduleAt(time.Now().Add(time.Second), func(now time.Time) {})

	l.Pressure = constantPressure(0.1)
	wait := l.nextTimeout(time.Now())
	a.Less(wait, 200*time.Millisecond)
}

type constantPressure float64

func (c constantPressure) ClampFactor() float64 { return float64(c) }

func TestTimerHeapOrdersByDeadline(t *testing.T) {
	a := assert.New(t)
	l := New()

	var order []int
	now := time.Now()
	l.ScheduleAt(now.Add(30*time.Millisecond), func(time.Time) { order = append(order, 3) })
	l.ScheduleAt(now.Add(10*time.Millisecond), func(time.Time) { order = append(order, 1) })
	l.ScheduleAt(now.Add(20*time.Millisecond), func(time.Time) { order = append(order, 2) })

	l.fireExpiredTimers(now.Add(time.Hour))
	a.Equal([]int{1, 2, 3}, order)
}
