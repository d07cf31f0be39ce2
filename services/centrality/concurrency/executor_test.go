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
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf_ClampsToOne(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"negative", -4, 1},
		{"zero", 0, 1},
		{"one", 1, 1},
		{"many", 12, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Of(tt.in).Value())
		})
	}

	var zero Concurrency
	assert.Equal(t, 1, zero.Value())
	assert.GreaterOrEqual(t, Available().Value(), 1)
}

func TestParallelFor_VisitsEveryIndexOnce(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 16} {
		exec := NewExecutor(Of(workers))
		counts := make([]atomic.Int32, 100)

		err := exec.ParallelFor(0, len(counts), RunningTrue(), func(_, i int) {
			counts[i].Add(1)
		})
		require.NoError(t, err, "workers=%d", workers)

		for i := range counts {
			assert.Equal(t, int32(1), counts[i].Load(), "workers=%d index=%d", workers, i)
		}
	}
}

func TestParallelFor_HonoursStartOffset(t *testing.T) {
	exec := NewExecutor(Of(3))
	var mu sync.Mutex
	seen := map[int]bool{}

	err := exec.ParallelFor(5, 10, nil, func(_, i int) {
		mu.Lock()
		seen[i] = true
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{5: true, 6: true, 7: true, 8: true, 9: true}, seen)
}

func TestParallelFor_EmptyRange(t *testing.T) {
	exec := NewExecutor(Of(4))
	called := false

	err := exec.ParallelFor(3, 3, NewStopFlag(), func(_, _ int) { called = true })
	require.NoError(t, err)
	assert.False(t, called)
}

func TestParallelFor_StoppedBeforeDispatch(t *testing.T) {
	exec := NewExecutor(Of(4))
	flag := NewStopFlag()
	flag.Stop()

	var calls atomic.Int32
	err := exec.ParallelFor(0, 10, flag, func(_, _ int) { calls.Add(1) })

	assert.ErrorIs(t, err, ErrTerminated)
	assert.Equal(t, int32(0), calls.Load())
}

func TestParallelFor_StopDuringRun(t *testing.T) {
	exec := NewExecutor(Of(1))
	flag := NewStopFlag()

	var calls atomic.Int32
	err := exec.ParallelFor(0, 1000, flag, func(_, i int) {
		calls.Add(1)
		if i == 9 {
			flag.Stop()
		}
	})

	assert.ErrorIs(t, err, ErrTerminated)
	// Single worker: the index that stopped the flag finishes, nothing after.
	assert.Equal(t, int32(10), calls.Load())
}

func TestParallelFor_WorkerIDsInRange(t *testing.T) {
	const workers = 4
	exec := NewExecutor(Of(workers))
	var bad atomic.Int32

	err := exec.ParallelFor(0, 500, RunningTrue(), func(worker, _ int) {
		if worker < 0 || worker >= workers {
			bad.Add(1)
		}
	})
	require.NoError(t, err)
	assert.Equal(t, int32(0), bad.Load())
}

func TestParallelFor_PanicIsReturned(t *testing.T) {
	exec := NewExecutor(Of(2))

	err := exec.ParallelFor(0, 10, RunningTrue(), func(_, i int) {
		if i == 3 {
			panic("boom")
		}
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWorkerPanic))
	assert.Contains(t, err.Error(), "boom")
}

func TestStopFlag(t *testing.T) {
	flag := NewStopFlag()
	assert.True(t, flag.Running())
	assert.NoError(t, CheckRunning(flag))

	flag.Stop()
	flag.Stop()
	assert.False(t, flag.Running())
	assert.ErrorIs(t, CheckRunning(flag), ErrTerminated)
	assert.NoError(t, CheckRunning(nil))
}

func TestTerminationFunc(t *testing.T) {
	running := true
	flag := TerminationFunc(func() bool { return running })
	assert.True(t, flag.Running())
	running = false
	assert.False(t, flag.Running())
}

func TestFromContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	flag, release := FromContext(ctx)
	defer release()

	assert.True(t, flag.Running())
	cancel()
	assert.Eventually(t, func() bool { return !flag.Running() }, timeoutForAfterFunc, pollInterval)
}

func TestFromContext_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	flag, release := FromContext(ctx)
	defer release()
	assert.Eventually(t, func() bool { return !flag.Running() }, timeoutForAfterFunc, pollInterval)
}
