// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package betweenness

import (
	"log/slog"

	"github.com/AleutianAI/centrality/services/centrality/collections"
	"github.com/AleutianAI/centrality/services/centrality/concurrency"
)

// sourceRunner is the worker-local state of a parallel engine.
//
// runSource performs one forward and backward pass from source, adding
// dependencies into acc. It returns false if it observed the flag stopped
// and bailed out; the state is then dirty and must not be reused.
type sourceRunner interface {
	runSource(source int, flag concurrency.TerminationFlag, acc *collections.AtomicDoubleArray) bool
}

// computeParallel is the fork-join driver shared by both parallel engines.
func computeParallel[S sourceRunner](
	engine string,
	nodeCount int,
	sources []int,
	divisor float64,
	workers int,
	flag concurrency.TerminationFlag,
	onSourceDone func(),
	newState func() S,
) (Result, error) {
	if nodeCount <= 0 || len(sources) == 0 {
		return Result{Centralities: []float64{}}, nil
	}
	if flag == nil {
		flag = concurrency.RunningTrue()
	}
	if onSourceDone == nil {
		onSourceDone = func() {}
	}

	c := concurrency.Of(workers)
	acc := collections.NewAtomicDoubleArray(nodeCount)
	executor := concurrency.NewExecutor(c)
	scratch := concurrency.NewWorkerContext(c, newState)

	err := executor.ParallelFor(0, len(sources), flag, func(worker, i int) {
		source := sources[i]
		// Out-of-range ids are skipped; validation belongs to the caller.
		if source < 0 || source >= nodeCount {
			return
		}
		completed := false
		scratch.With(worker, func(state S) {
			completed = state.runSource(source, flag, acc)
		})
		if completed {
			onSourceDone()
		}
	})
	if err != nil {
		slog.Debug("parallel betweenness aborted",
			slog.String("engine", engine),
			slog.Int("node_count", nodeCount),
			slog.Int("source_count", len(sources)),
			slog.String("error", err.Error()),
		)
		return Result{}, err
	}

	slog.Debug("parallel betweenness completed",
		slog.String("engine", engine),
		slog.Int("node_count", nodeCount),
		slog.Int("source_count", len(sources)),
		slog.Int("workers", c.Value()),
		slog.Int("scratch_instances", scratch.Created()),
	)

	return Result{Centralities: readOut(acc, divisor)}, nil
}

// backwardPass pops stack in reverse finalisation order, propagating
// dependencies to predecessors and adding each node's dependency to acc.
//
// Shared by both engines; the caller owns every slice.
func backwardPass(
	source int,
	stack []int,
	sigma []uint64,
	delta []float64,
	predecessors [][]int,
	flag concurrency.TerminationFlag,
	acc *collections.AtomicDoubleArray,
) bool {
	for i := len(stack) - 1; i >= 0; i-- {
		if !flag.Running() {
			return false
		}
		w := stack[i]
		wSigma := float64(sigma[w])
		if wSigma == 0 {
			continue
		}

		coefficient := 1 + delta[w]
		for _, v := range predecessors[w] {
			vSigma := float64(sigma[v])
			if vSigma == 0 {
				continue
			}
			delta[v] += vSigma / wSigma * coefficient
		}

		if w != source {
			acc.GetAndAdd(w, delta[w])
		}
	}
	return true
}
