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
	"sync"
	"sync/atomic"
)

// WorkerContext holds one lazily constructed value per executor worker.
//
// Description:
//
//	A worker-keyed resource pool: the factory runs the first time a worker
//	asks for its slot, and every later call from that worker gets the same
//	value back. Node-count-sized scratch arrays are therefore allocated once
//	per worker instead of once per index.
//
//	T is normally a pointer so the closure passed to With can mutate it.
//
// Thread Safety: Safe for concurrent use as long as each worker id is used
// by a single goroutine at a time, which Executor.ParallelFor guarantees.
type WorkerContext[T any] struct {
	factory func() T
	slots   []workerSlot[T]
	created atomic.Int64
}

type workerSlot[T any] struct {
	once  sync.Once
	value T
}

// NewWorkerContext creates a pool with one slot per worker of c.
func NewWorkerContext[T any](c Concurrency, factory func() T) *WorkerContext[T] {
	return &WorkerContext[T]{
		factory: factory,
		slots:   make([]workerSlot[T], c.Value()),
	}
}

// With runs fn with exclusive access to the value owned by worker.
//
// Inputs:
//
//   - worker: Worker id handed to the ParallelFor body. Must be in
//     [0, Slots()); other values panic like a slice index.
//   - fn: Receives the worker's value. Must not retain it after returning.
func (w *WorkerContext[T]) With(worker int, fn func(T)) {
	slot := &w.slots[worker]
	slot.once.Do(func() {
		slot.value = w.factory()
		w.created.Add(1)
	})
	fn(slot.value)
}

// Slots returns the number of worker slots.
func (w *WorkerContext[T]) Slots() int {
	return len(w.slots)
}

// Created returns how many slot values the factory has built so far.
func (w *WorkerContext[T]) Created() int {
	return int(w.created.Load())
}
