// Copyright © 2026 printsched contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package eventloop is the single-threaded cooperative loop spec §4.1 and
// §5 describe: one goroutine multiplexes readiness on registered file
// descriptors and a deadline heap of timers, dispatching to handlers that
// must never block. Signals, child exits, and one optional background
// system-event source are the only other actors, and each only sets a flag
// the loop itself observes the next time it wakes.
package eventloop

import (
	"container/heap"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Handler is invoked when its registered fd becomes readable. It must not
// block for longer than a single non-blocking syscall (spec §5's
// "Suspension points"); long operations resume on a later readiness
// notification instead.
type Handler func(fd int)

// TimerFunc runs once a scheduled deadline arrives.
type TimerFunc func(now time.Time)

type timer struct {
	at    time.Time
	fn    TimerFunc
	index int
}

type timerHeap []*timer

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerHeap) Push(x interface{}) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// Loop owns the registered fd set, the timer heap, and the flags signals
// set (spec §5's "Signals"): SIGCHLD sets reap, SIGHUP sets reload, SIGTERM
// sets stop. SIGPIPE is ignored at construction.
type Loop struct {
	mu      sync.Mutex
	fds     map[int]Handler
	timers  timerHeap
	sigCh   chan os.Signal
	stop    bool
	reap    bool
	reload  bool

	// OnReap and OnReload are invoked once per loop iteration in which
	// the corresponding signal flag was set, then the flag is cleared.
	OnReap   func()
	OnReload func()

	// Pressure clamps the maximum poll timeout under resource pressure
	// (spec §5's resource policy); nil means never clamp.
	Pressure PressureMonitor
}

// PressureMonitor reports a scaling factor in (0, 1] applied to the loop's
// normal poll timeout: 1 means no pressure, smaller values shorten the
// wait so the loop re-checks admission and fd limits sooner.
type PressureMonitor interface {
	ClampFactor() float64
}

func New() *Loop {
	l := &Loop{
		fds:   make(map[int]Handler),
		sigCh: make(chan os.Signal, 8),
	}
	signal.Notify(l.sigCh, syscall.SIGCHLD, syscall.SIGHUP, syscall.SIGTERM)
	signal.Ignore(syscall.SIGPIPE)
	heap.Init(&l.timers)
	return l
}

// Register adds fd to the poll set; only one handler may own a given fd.
func (l *Loop) Register(fd int, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fds[fd] = h
}

func (l *Loop) Unregister(fd int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.fds, fd)
}

// ScheduleAt runs fn once at (or shortly after) at.
func (l *Loop) ScheduleAt(at time.Time, fn TimerFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	heap.Push(&l.timers, &timer{at: at, fn: fn})
}

// Stop sets the flag that drains the loop within RunUntilStop's bounded
// shutdown window (spec §5's "Loop shutdown sets a flag that drains after
// bounded time").
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stop = true
}

// nextTimeout computes how long RunUntilStop's poll should wait: until the
// earliest timer deadline, clamped by Pressure if configured, capped at
// defaultMaxWait so the loop still wakes periodically to check flags even
// with no pending timer.
const defaultMaxWait = time.Second

func (l *Loop) nextTimeout(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	wait := defaultMaxWait
	if len(l.timers) > 0 {
		if d := l.timers[0].at.Sub(now); d < wait {
			wait = d
		}
	}
	if wait < 0 {
		wait = 0
	}
	if l.Pressure != nil {
		factor := l.Pressure.ClampFactor()
		if factor > 0 && factor < 1 {
			wait = time.Duration(float64(wait) * factor)
		}
	}
	return wait
}

func (l *Loop) fireExpiredTimers(now time.Time) {
	l.mu.Lock()
	var due []*timer
	for len(l.timers) > 0 && !l.timers[0].at.After(now) {
		due = append(due, heap.Pop(&l.timers).(*timer))
	}
	l.mu.Unlock()

	for _, t := range due {
		t.fn(now)
	}
}

func (l *Loop) pollFds(timeout time.Duration) []int {
	l.mu.Lock()
	fds := make([]unix.PollFd, 0, len(l.fds))
	for fd := range l.fds {
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	}
	l.mu.Unlock()

	if len(fds) == 0 {
		time.Sleep(timeout)
		return nil
	}

	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil || n <= 0 {
		return nil
	}

	var ready []int
	for _, pfd := range fds {
		if pfd.Revents&unix.POLLIN != 0 {
			ready = append(ready, int(pfd.Fd))
		}
	}
	return ready
}

// RunUntilStop runs the loop body until Stop is called: drain pending
// signals into flags, fire due timers, poll registered fds once, dispatch
// readiness, repeat.
func (l *Loop) RunUntilStop() {
	for {
		l.drainSignals()

		l.mu.Lock()
		stop := l.stop
		reap := l.reap
		l.reap = false
		reload := l.reload
		l.reload = false
		l.mu.Unlock()

		if reap && l.OnReap != nil {
			l.OnReap()
		}
		if reload && l.OnReload != nil {
			l.OnReload()
		}
		if stop {
			return
		}

		now := time.Now()
		l.fireExpiredTimers(now)

		ready := l.pollFds(l.nextTimeout(now))
		l.mu.Lock()
		handlers := make([]Handler, 0, len(ready))
		for _, fd := range ready {
			if h, ok := l.fds[fd]; ok {
				handlers = append(handlers, h)
			}
		}
		l.mu.Unlock()
		for i, fd := range ready {
			handlers[i](fd)
		}
	}
}

func (l *Loop) drainSignals() {
	for {
		select {
		case sig := <-l.sigCh:
			l.mu.Lock()
			switch sig {
			case syscall.SIGCHLD:
				l.reap = true
			case syscall.SIGHUP:
				l.reload = true
			case syscall.SIGTERM:
				l.stop = true
			}
			l.mu.Unlock()
		default:
			return
		}
	}
}
