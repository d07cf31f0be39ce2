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
	"errors"
	"sync/atomic"
)

// Sentinel errors for parallel execution.
var (
	// ErrTerminated is returned when the termination flag was observed
	// stopped while a parallel computation was in progress.
	ErrTerminated = errors.New("computation terminated")

	// ErrWorkerPanic is returned when a body passed to ParallelFor panicked.
	// The panic value is included in the wrapping error message.
	ErrWorkerPanic = errors.New("worker panicked")
)

// TerminationFlag is a cooperative cancellation signal.
//
// Running must be cheap: it is polled once per source, once per queue or
// heap pop and once per backward-stack pop.
type TerminationFlag interface {
	Running() bool
}

// TerminationFunc adapts a plain function to TerminationFlag.
type TerminationFunc func() bool

// Running calls f.
func (f TerminationFunc) Running() bool {
	return f()
}

type alwaysRunning struct{}

func (alwaysRunning) Running() bool { return true }

// RunningTrue returns a flag that never stops.
func RunningTrue() TerminationFlag {
	return alwaysRunning{}
}

// StopFlag is a TerminationFlag that can be stopped exactly once.
//
// Thread Safety: Safe for concurrent use.
type StopFlag struct {
	stopped atomic.Bool
}

// NewStopFlag returns a running flag.
func NewStopFlag() *StopFlag {
	return &StopFlag{}
}

// Running reports whether Stop has not been called yet.
func (f *StopFlag) Running() bool {
	return !f.stopped.Load()
}

// Stop flips the flag. Calling Stop more than once is a no-op.
func (f *StopFlag) Stop() {
	f.stopped.Store(true)
}

// FromContext returns a flag that stops when ctx is done.
//
// Description:
//
//	Bridges a caller's context into the polled flag model. The engines never
//	select on ctx.Done(); they keep polling the returned flag at their usual
//	granularity.
//
// Outputs:
//
//   - *StopFlag: The flag. Already stopped if ctx is already done.
//   - func() bool: Releases the context watcher. Call it once the
//     computation finished; it reports whether the watcher was still armed.
func FromContext(ctx context.Context) (*StopFlag, func() bool) {
	flag := NewStopFlag()
	if ctx.Err() != nil {
		flag.Stop()
	}
	release := context.AfterFunc(ctx, flag.Stop)
	return flag, release
}

// CheckRunning returns ErrTerminated if flag has stopped.
func CheckRunning(flag TerminationFlag) error {
	if flag != nil && !flag.Running() {
		return ErrTerminated
	}
	return nil
}
