// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package collections

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAtomicDoubleArray_Zeroed(t *testing.T) {
	arr := NewAtomicDoubleArray(5)
	require.Equal(t, 5, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		assert.Equal(t, 0.0, arr.Get(i), "index %d", i)
	}
}

func TestNewAtomicDoubleArray_NegativeLength(t *testing.T) {
	arr := NewAtomicDoubleArray(-3)
	assert.Equal(t, 0, arr.Len())
	assert.Empty(t, arr.ToSlice())
}

func TestAtomicDoubleArray_GetAndAddReturnsPrevious(t *testing.T) {
	arr := NewAtomicDoubleArray(2)

	prev := arr.GetAndAdd(1, 2.5)
	assert.Equal(t, 0.0, prev)

	prev = arr.GetAndAdd(1, 0.5)
	assert.Equal(t, 2.5, prev)
	assert.Equal(t, 3.0, arr.Get(1))
	assert.Equal(t, 0.0, arr.Get(0))
}

func TestAtomicDoubleArray_AddAndGetReturnsUpdated(t *testing.T) {
	arr := NewAtomicDoubleArray(1)
	arr.Set(0, 1.25)

	assert.Equal(t, 2.0, arr.AddAndGet(0, 0.75))
	assert.Equal(t, 2.0, arr.Get(0))
}

func TestAtomicDoubleArray_NegativeDelta(t *testing.T) {
	arr := NewAtomicDoubleArray(1)
	arr.GetAndAdd(0, 4)
	arr.GetAndAdd(0, -1.5)
	assert.Equal(t, 2.5, arr.Get(0))
}

func TestAtomicDoubleArray_ConcurrentAdds(t *testing.T) {
	const (
		goroutines = 16
		perWorker  = 2000
		cells      = 7
	)
	arr := NewAtomicDoubleArray(cells)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				// Integer-valued deltas keep the sum exact in float64.
				arr.GetAndAdd((worker+i)%cells, 1)
			}
		}(g)
	}
	wg.Wait()

	total := 0.0
	for _, v := range arr.ToSlice() {
		total += v
	}
	assert.Equal(t, float64(goroutines*perWorker), total)
}

func TestAtomicDoubleArray_ToSliceIsCopy(t *testing.T) {
	arr := NewAtomicDoubleArray(3)
	arr.Set(2, 9)

	snapshot := arr.ToSlice()
	snapshot[2] = 100

	assert.Equal(t, 9.0, arr.Get(2))
	assert.Equal(t, []float64{0, 0, 9}, arr.ToSlice())
}

func TestAtomicDoubleArray_OutOfRangePanics(t *testing.T) {
	arr := NewAtomicDoubleArray(1)
	assert.Panics(t, func() { arr.Get(1) })
	assert.Panics(t, func() { arr.GetAndAdd(-1, 1) })
}
