// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package progress tracks completion of long-running, multi-worker tasks.
package progress

import (
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// DefaultLogInterval is the minimum gap between two progress log lines.
const DefaultLogInterval = time.Second

// Tracker counts completed work units of one task.
//
// Description:
//
//	LogProgress may be called from any goroutine. A progress line is logged
//	at most once per interval, and always when the task reaches 100%.
//	An optional listener observes every update.
//
// Thread Safety: Safe for concurrent use.
type Tracker struct {
	task     string
	total    int64
	done     atomic.Int64
	logger   *slog.Logger
	throttle *rate.Sometimes
	listener func(done, total int64)
	finished atomic.Bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithInterval sets the minimum gap between progress log lines.
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) {
		t.throttle = &rate.Sometimes{Interval: d}
	}
}

// WithListener registers fn to be called after every update with the
// current and total counts. fn must be safe for concurrent use.
func WithListener(fn func(done, total int64)) Option {
	return func(t *Tracker) {
		t.listener = fn
	}
}

// NewTracker creates a tracker for total work units. A nil logger falls
// back to slog.Default().
func NewTracker(task string, total int64, logger *slog.Logger, opts ...Option) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		task:     task,
		total:    max(total, 0),
		logger:   logger,
		throttle: &rate.Sometimes{Interval: DefaultLogInterval},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// LogProgress records n more completed units.
func (t *Tracker) LogProgress(n int64) {
	if n <= 0 {
		return
	}
	done := t.done.Add(n)

	if t.listener != nil {
		t.listener(done, t.total)
	}

	if t.total > 0 && done >= t.total {
		if t.finished.CompareAndSwap(false, true) {
			t.log(done)
		}
		return
	}
	t.throttle.Do(func() { t.log(done) })
}

// OnSourceDone returns a callback that records one unit per call.
func (t *Tracker) OnSourceDone() func() {
	return func() { t.LogProgress(1) }
}

// Done returns the number of completed units.
func (t *Tracker) Done() int64 {
	return t.done.Load()
}

// Total returns the expected number of units.
func (t *Tracker) Total() int64 {
	return t.total
}

// Percent returns completion in [0, 100]. An empty task is 100% complete.
func (t *Tracker) Percent() float64 {
	if t.total == 0 {
		return 100
	}
	return min(100, float64(t.done.Load())*100/float64(t.total))
}

func (t *Tracker) log(done int64) {
	percent := 100.0
	if t.total > 0 {
		percent = min(100, float64(done)*100/float64(t.total))
	}
	t.logger.Info("progress",
		slog.String("task", t.task),
		slog.Int64("done", done),
		slog.Int64("total", t.total),
		slog.Float64("percent", percent),
	)
}
