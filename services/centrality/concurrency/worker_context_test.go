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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	timeoutForAfterFunc = time.Second
	pollInterval        = 5 * time.Millisecond
)

type scratch struct {
	inUse atomic.Bool
	uses  int
}

func TestWorkerContext_LazyConstruction(t *testing.T) {
	var built atomic.Int32
	wc := NewWorkerContext(Of(3), func() *scratch {
		built.Add(1)
		return &scratch{}
	})

	assert.Equal(t, 3, wc.Slots())
	assert.Equal(t, 0, wc.Created())

	wc.With(1, func(s *scratch) { s.uses++ })
	wc.With(1, func(s *scratch) { s.uses++ })

	assert.Equal(t, int32(1), built.Load())
	assert.Equal(t, 1, wc.Created())

	var uses int
	wc.With(1, func(s *scratch) { uses = s.uses })
	assert.Equal(t, 2, uses)
}

func TestWorkerContext_NeverSharedAcrossConcurrentBodies(t *testing.T) {
	const workers = 8
	exec := NewExecutor(Of(workers))
	wc := NewWorkerContext(Of(workers), func() *scratch { return &scratch{} })

	var collisions atomic.Int32
	err := exec.ParallelFor(0, 2000, RunningTrue(), func(worker, _ int) {
		wc.With(worker, func(s *scratch) {
			if !s.inUse.CompareAndSwap(false, true) {
				collisions.Add(1)
				return
			}
			s.uses++
			s.inUse.Store(false)
		})
	})
	require.NoError(t, err)

	assert.Equal(t, int32(0), collisions.Load())
	assert.LessOrEqual(t, wc.Created(), workers)

	total := 0
	for w := 0; w < workers; w++ {
		if w >= wc.Slots() {
			break
		}
		// Only inspect slots that were actually created.
		wc.slots[w].once.Do(func() {})
		if s := wc.slots[w].value; s != nil {
			total += s.uses
		}
	}
	assert.Equal(t, 2000, total)
}

func TestWorkerContext_OutOfRangeWorkerPanics(t *testing.T) {
	wc := NewWorkerContext(Of(1), func() *scratch { return &scratch{} })
	assert.Panics(t, func() { wc.With(1, func(*scratch) {}) })
}
