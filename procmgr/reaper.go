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

package procmgr

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"
)

// ReapFunc is called once per exited child; the caller routes the result
// to the filter pipeline or job scheduler as spec §4.6 describes.
type ReapFunc func(ReapResult)

// Reaper waits concurrently on a set of live children and dispatches each
// exit to onReap as it happens, independent of the event loop's own
// wake-up — spec §4.6 requires reaping to "always finish before the next
// admission decision", which a single blocking Wait() per child, fanned
// out with errgroup, satisfies without the reaper itself needing a
// SIGCHLD signal handler tied into the event loop's fd set.
type Reaper struct {
	mgr *Manager
}

func NewReaper(mgr *Manager) *Reaper {
	return &Reaper{mgr: mgr}
}

// ReapAll waits for every process in procs to exit and reports each one
// to onReap as soon as it does; it returns once all have been reaped.
func (r *Reaper) ReapAll(ctx context.Context, procs []*os.Process, onReap ReapFunc) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range procs {
		p := p
		g.Go(func() error {
			result, err := r.mgr.Wait(gctx, p)
			if err != nil {
				return err
			}
			onReap(result)
			return nil
		})
	}
	return g.Wait()
}
