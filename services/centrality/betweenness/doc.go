// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package betweenness computes betweenness centrality with Brandes'
// algorithm.
//
// # Overview
//
// Betweenness centrality of a node v is the sum, over all ordered pairs
// (s, t) with s != v != t, of the fraction of shortest s-t paths that pass
// through v. Brandes' algorithm computes it with one single-source pass per
// source node:
//
//  1. FORWARD: shortest-path search from s counting sigma[v], the number of
//     shortest paths from s to v, and recording predecessors.
//  2. BACKWARD: nodes are processed in reverse finalisation order and each
//     node w pushes delta[v] += sigma[v]/sigma[w] * (1 + delta[w]) to every
//     predecessor v. delta[w] is then added to the score of w (w != s).
//
// # Engines
//
//   - SequentialRuntime.Compute: single-threaded BFS reference engine. Full
//     array reset per source. Use it for small graphs and to validate the
//     parallel engines.
//   - ComputeParallelUnweighted: sources are spread across workers by
//     concurrency.Executor; each worker reuses its own scratch arrays and
//     resets only the entries it touched. Scores are accumulated into a
//     collections.AtomicDoubleArray.
//   - ComputeParallelWeighted: same substrate, Dijkstra forward phase with
//     ties detected within Epsilon.
//
// Runner wraps the engines with configuration, source sampling, progress,
// tracing and metrics.
//
// # Cancellation
//
// The parallel engines poll a concurrency.TerminationFlag at the start of
// every source, at every queue or heap pop and at every backward-stack pop.
// A stopped flag discards all accumulated scores and yields
// concurrency.ErrTerminated.
//
// # Numerical Notes
//
// Path counts use saturating uint64 addition, so extremely dense graphs cap
// sigma at math.MaxUint64 instead of overflowing. Parallel accumulation order
// is not fixed, so results across runs agree up to floating-point rounding
// but are not guaranteed to be bit-identical.
package betweenness
