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

// Package jobsched layers the admission policy and job state machine of
// spec §4.4 on top of jobstore.Store.
package jobsched

import (
	"fmt"
	"time"

	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/schederr"
)

// ResolveHoldUntil computes the next instant a job held with keyword
// becomes eligible for admission, in local time relative to now (spec
// §4.4 "Hold-until"). An absolute hh:mm:ss hold time is resolved by
// ResolveAbsoluteHoldUntil instead.
func ResolveHoldUntil(keyword common.HoldUntilKeyword, now time.Time) (time.Time, error) {
	switch keyword {
	case common.EHoldUntil.NoHold(), common.EHoldUntil.None():
		return now, nil
	case common.EHoldUntil.Indefinite():
		return time.Unix(1<<62, 0), nil
	case common.EHoldUntil.DayTime():
		return nextWindow(now, 6, 0, 18, 0), nil
	case common.EHoldUntil.Night():
		return nextWindow(now, 18, 0, 6, 0), nil
	case common.EHoldUntil.SecondShift():
		return nextWindow(now, 16, 0, 0, 0), nil
	case common.EHoldUntil.ThirdShift():
		return nextWindow(now, 0, 0, 8, 0), nil
	case common.EHoldUntil.Weekend():
		return nextWeekend(now), nil
	default:
		return time.Time{}, schederr.BadRequest(fmt.Sprintf("unsupported hold-until keyword %q", keyword))
	}
}

// ResolveAbsoluteHoldUntil computes the next instant the wall-clock time
// hh:mm:ss occurs in now's location, today if still in the future else
// tomorrow.
func ResolveAbsoluteHoldUntil(now time.Time, hour, minute, second int) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, second, 0, now.Location())
	if candidate.Before(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// nextWindow returns now if the current time already falls within
// [startHour:startMin, endHour:endMin) (a window that may wrap past
// midnight), else the next startHour:startMin.
func nextWindow(now time.Time, startHour, startMin, endHour, endMin int) time.Time {
	start := time.Date(now.Year(), now.Month(), now.Day(), startHour, startMin, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), endHour, endMin, 0, 0, now.Location())

	if end.Before(start) || end.Equal(start) {
		// window wraps midnight
		if !now.Before(start) || now.Before(end) {
			return now
		}
	} else if !now.Before(start) && now.Before(end) {
		return now
	}

	if now.Before(start) {
		return start
	}
	return start.AddDate(0, 0, 1)
}

func nextWeekend(now time.Time) time.Time {
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return now
	}
	daysUntilSaturday := (int(time.Saturday) - int(now.Weekday()) + 7) % 7
	if daysUntilSaturday == 0 {
		daysUntilSaturday = 7
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, daysUntilSaturday)
}
