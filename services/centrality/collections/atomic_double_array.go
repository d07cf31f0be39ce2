// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package collections provides fixed-size numeric arrays that can be
// shared between worker goroutines without locks.
//
// # Thread Safety
//
// Every exported method on AtomicDoubleArray is safe for concurrent use.
// Values written by concurrent GetAndAdd calls are all observed once every
// writer has returned; reads taken while writers are still running see some
// intermediate sum.
package collections

import (
	"math"
	"sync/atomic"
)

// AtomicDoubleArray is a fixed-length array of float64 values supporting
// atomic read-add-write per index.
//
// Description:
//
//	Each cell stores the IEEE-754 bit pattern of a float64 inside an
//	atomic.Uint64. Hardware has no atomic float add, so additions are
//	implemented as a compare-and-swap retry loop over the bit pattern.
//	Contention is per index, which is why no mutex is involved.
//
// Thread Safety: Safe for concurrent use.
type AtomicDoubleArray struct {
	cells []atomic.Uint64
}

// NewAtomicDoubleArray creates an array of n cells, all holding 0.0.
//
// Inputs:
//
//   - n: Number of cells. Negative values are treated as 0.
//
// Outputs:
//
//   - *AtomicDoubleArray: The zeroed array. Never nil.
func NewAtomicDoubleArray(n int) *AtomicDoubleArray {
	if n < 0 {
		n = 0
	}
	// The bit pattern of +0.0 is all zeros, so the zero value is correct.
	return &AtomicDoubleArray{cells: make([]atomic.Uint64, n)}
}

// Len returns the number of cells.
func (a *AtomicDoubleArray) Len() int {
	return len(a.cells)
}

// Get atomically loads the value at index i.
func (a *AtomicDoubleArray) Get(i int) float64 {
	return math.Float64frombits(a.cells[i].Load())
}

// Set atomically stores v at index i.
func (a *AtomicDoubleArray) Set(i int, v float64) {
	a.cells[i].Store(math.Float64bits(v))
}

// GetAndAdd atomically adds delta to the value at index i and returns the
// value held before the addition.
//
// Description:
//
//	Loads the current bit pattern, computes the new sum and attempts a
//	CompareAndSwap. If another goroutine changed the cell in between, the
//	loop reloads and retries. The loop terminates because every failed CAS
//	implies some other writer succeeded.
//
// Inputs:
//
//   - i: Cell index. Must be in [0, Len()); out-of-range panics like a slice.
//   - delta: Value to add.
//
// Outputs:
//
//   - float64: The previous value of the cell.
//
// Thread Safety: Safe for concurrent use.
func (a *AtomicDoubleArray) GetAndAdd(i int, delta float64) float64 {
	cell := &a.cells[i]
	for {
		oldBits := cell.Load()
		old := math.Float64frombits(oldBits)
		if cell.CompareAndSwap(oldBits, math.Float64bits(old+delta)) {
			return old
		}
	}
}

// AddAndGet atomically adds delta to the value at index i and returns the
// updated value.
func (a *AtomicDoubleArray) AddAndGet(i int, delta float64) float64 {
	return a.GetAndAdd(i, delta) + delta
}

// ToSlice copies every cell into a new slice.
//
// The copy is only meaningful once all concurrent writers have finished.
func (a *AtomicDoubleArray) ToSlice() []float64 {
	out := make([]float64, len(a.cells))
	for i := range a.cells {
		out[i] = math.Float64frombits(a.cells[i].Load())
	}
	return out
}
