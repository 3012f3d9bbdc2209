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

package eventloop

import (
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourcePressure samples host CPU and memory usage on a timer and
// reports a ClampFactor the loop uses to shorten its poll timeout under
// load, so admission and fd-limit checks (spec §5's resource policy) are
// revisited more often exactly when they matter.
type ResourcePressure struct {
	mu     sync.RWMutex
	factor float64

	highCPU float64 // percent, 0-100
	highMem float64 // percent, 0-100
}

// NewResourcePressure builds a monitor that starts clamping once CPU or
// memory usage crosses highCPUPercent/highMemPercent.
func NewResourcePressure(highCPUPercent, highMemPercent float64) *ResourcePressure {
	return &ResourcePressure{factor: 1, highCPU: highCPUPercent, highMem: highMemPercent}
}

// Sample refreshes the monitor's reading; the caller drives the cadence
// (the top-level wiring runs StartSampling on its own goroutine every few
// seconds, since gopsutil's calls are themselves blocking syscalls that
// must never run on the loop's own poll iteration).
func (r *ResourcePressure) Sample() error {
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return err
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return err
	}

	cpuPct := 0.0
	if len(percentages) > 0 {
		cpuPct = percentages[0]
	}

	factor := 1.0
	if r.highCPU > 0 && cpuPct > r.highCPU {
		factor = 0.5
	}
	if r.highMem > 0 && vm.UsedPercent > r.highMem {
		factor = 0.25
	}

	r.mu.Lock()
	r.factor = factor
	r.mu.Unlock()
	return nil
}

func (r *ResourcePressure) ClampFactor() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factor
}

// StartSampling runs Sample on interval until stop is closed; meant to be
// launched from a dedicated goroutine, since it blocks on gopsutil's
// syscalls (spec §5 allows exactly this: "an optional background thread
// ... that forwards events into a self-pipe read by the main loop" — here
// the self-pipe is the shared factor field instead, read only through
// ClampFactor).
func (r *ResourcePressure) StartSampling(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = r.Sample()
		case <-stop:
			return
		}
	}
}
