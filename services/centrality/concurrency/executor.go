// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package concurrency

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Concurrency is the number of worker goroutines an Executor may run.
//
// The zero value behaves like Of(1).
type Concurrency struct {
	value int
}

// Of returns a Concurrency of n, clamped to at least 1.
func Of(n int) Concurrency {
	if n < 1 {
		n = 1
	}
	return Concurrency{value: n}
}

// Available returns a Concurrency equal to GOMAXPROCS.
func Available() Concurrency {
	return Of(runtime.GOMAXPROCS(0))
}

// Value returns the worker count, always >= 1.
func (c Concurrency) Value() int {
	if c.value < 1 {
		return 1
	}
	return c.value
}

// Executor dispatches index ranges across a bounded set of workers.
//
// Thread Safety: Safe for concurrent use; each ParallelFor call owns its
// own goroutines.
type Executor struct {
	concurrency Concurrency
}

// NewExecutor creates an Executor running at most c workers per call.
func NewExecutor(c Concurrency) *Executor {
	return &Executor{concurrency: c}
}

// Concurrency returns the configured worker bound.
func (e *Executor) Concurrency() Concurrency {
	return e.concurrency
}

// ParallelFor calls body(worker, index) once for every index in [start, end).
//
// Description:
//
//	Spawns min(concurrency, end-start) workers through an errgroup. Workers
//	pull the next index from a shared atomic cursor, which balances uneven
//	per-index cost without static partitioning. Before each dispatch the
//	worker polls flag; a stopped flag ends that worker's loop.
//
//	worker is a stable id in [0, workers) for the goroutine running the body.
//	It keys WorkerContext slots.
//
// Inputs:
//
//   - start, end: Half-open index range. An empty range returns nil at once.
//   - flag: Polled before every dispatch and once more after the join.
//     Nil means "never stops".
//   - body: Called once per index, possibly concurrently for different
//     indices, in no particular order.
//
// Outputs:
//
//   - error: ErrTerminated if flag stopped before or during the run,
//     an error wrapping ErrWorkerPanic if a body panicked, nil otherwise.
//
// Thread Safety: Safe for concurrent use.
func (e *Executor) ParallelFor(start, end int, flag TerminationFlag, body func(worker, index int)) error {
	if flag == nil {
		flag = RunningTrue()
	}
	if end <= start {
		return nil
	}
	if err := CheckRunning(flag); err != nil {
		return err
	}

	workers := min(e.concurrency.Value(), end-start)

	var cursor atomic.Int64
	cursor.Store(int64(start))

	g, gctx := errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		workerID := w
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					buf := make([]byte, 4096)
					n := runtime.Stack(buf, false)
					slog.Error("panic in parallel-for worker",
						slog.Int("worker_id", workerID),
						slog.Any("panic", r),
						slog.String("stack", string(buf[:n])),
					)
					err = fmt.Errorf("%w: worker %d: %v", ErrWorkerPanic, workerID, r)
				}
			}()

			for {
				// A sibling failed; stop taking work.
				if gctx.Err() != nil {
					return nil
				}
				if !flag.Running() {
					return nil
				}
				i := cursor.Add(1) - 1
				if i >= int64(end) {
					return nil
				}
				body(workerID, int(i))
			}
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// Bodies poll the flag themselves and may have returned early, so the
	// range only counts as complete if the flag is still running here.
	return CheckRunning(flag)
}
