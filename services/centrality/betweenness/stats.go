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
	"math"
	"slices"
	"time"
)

// Stats summarises a score distribution.
type Stats struct {
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
	P50    float64 `json:"p50" yaml:"p50"`
	P90    float64 `json:"p90" yaml:"p90"`
	P99    float64 `json:"p99" yaml:"p99"`

	// BridgeNodes counts nodes scoring above Mean + StdDev.
	BridgeNodes int `json:"bridge_nodes" yaml:"bridge_nodes"`

	ExecutionTime time.Duration `json:"execution_time_ns" yaml:"execution_time_ns"`
}

// ComputeStats summarises scores. Empty input yields zero stats.
//
// StdDev is the population standard deviation. Percentiles use the nearest
// rank on a sorted copy: index round(p/100 * (n-1)).
func ComputeStats(scores []float64, elapsed time.Duration) Stats {
	stats := Stats{ExecutionTime: elapsed}
	n := len(scores)
	if n == 0 {
		return stats
	}

	sorted := slices.Clone(scores)
	slices.Sort(sorted)

	var sum float64
	for _, s := range sorted {
		sum += s
	}
	mean := sum / float64(n)

	var variance float64
	for _, s := range sorted {
		d := s - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(n))

	threshold := mean + stddev
	bridges := 0
	for _, s := range sorted {
		if s > threshold {
			bridges++
		}
	}

	stats.Min = sorted[0]
	stats.Max = sorted[n-1]
	stats.Mean = mean
	stats.StdDev = stddev
	stats.P50 = percentile(sorted, 50)
	stats.P90 = percentile(sorted, 90)
	stats.P99 = percentile(sorted, 99)
	stats.BridgeNodes = bridges
	return stats
}

func percentile(sorted []float64, p float64) float64 {
	idx := int(math.Round(p / 100 * float64(len(sorted)-1)))
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}
