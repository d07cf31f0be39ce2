// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package concurrency provides the fork-join substrate used by the parallel
// centrality engines.
//
// # Overview
//
// Three pieces work together:
//
//   - TerminationFlag: a polled cancellation signal. Long-running loops call
//     Running() at fixed points; nothing is ever pushed into them.
//   - Executor: a parallel-for over an index range. Up to Concurrency worker
//     goroutines pull indices from a shared cursor until the range is
//     exhausted or the flag stops.
//   - WorkerContext: one lazily constructed scratch value per worker slot,
//     reused for every index that worker processes.
//
// # Cancellation Contract
//
// When the flag stops, bodies that are already running finish their current
// index (they may poll the flag themselves and return early), no new index is
// dispatched, and ParallelFor returns ErrTerminated. Partial results are
// never salvaged by this package; callers discard whatever they accumulated.
//
// # Usage
//
//	flag := concurrency.NewStopFlag()
//	exec := concurrency.NewExecutor(concurrency.Of(8))
//	scratch := concurrency.NewWorkerContext(concurrency.Of(8), func() *state {
//	    return newState(nodeCount)
//	})
//
//	err := exec.ParallelFor(0, len(sources), flag, func(worker, i int) {
//	    scratch.With(worker, func(s *state) {
//	        s.run(sources[i])
//	    })
//	})
//	if errors.Is(err, concurrency.ErrTerminated) {
//	    // discard partial output
//	}
//
// # Thread Safety
//
// All exported types are safe for concurrent use. WorkerContext guarantees
// exclusivity only when worker ids come from the Executor that runs the body.
package concurrency
