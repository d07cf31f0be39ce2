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
	"errors"
	"fmt"

	"github.com/AleutianAI/centrality/services/centrality/graph"
)

// Sampling strategies accepted by Config.SamplingStrategy.
const (
	SamplingAll          = "all"
	SamplingRandomDegree = "random_degree"
)

// Defaults applied by DefaultConfig.
const (
	DefaultDirection   = "both"
	DefaultConcurrency = 4
	DefaultRandomSeed  = 42
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid betweenness config")

// Config describes one betweenness run.
type Config struct {
	// Direction is "outgoing", "incoming" or "both".
	Direction string `json:"direction" yaml:"direction" mapstructure:"direction"`

	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// RelationshipWeightProperty selects the weighted engine when non-empty.
	RelationshipWeightProperty string `json:"relationship_weight_property,omitempty" yaml:"relationship_weight_property,omitempty" mapstructure:"relationship_weight_property"`

	SamplingStrategy string `json:"sampling_strategy" yaml:"sampling_strategy" mapstructure:"sampling_strategy"`

	// SamplingSize caps the number of sources. Nil means every node.
	SamplingSize *int `json:"sampling_size,omitempty" yaml:"sampling_size,omitempty" mapstructure:"sampling_size"`

	RandomSeed uint64 `json:"random_seed" yaml:"random_seed" mapstructure:"random_seed"`

	// Normalize rescales scores by the number of node pairs.
	Normalize bool `json:"normalize" yaml:"normalize" mapstructure:"normalize"`
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		Direction:        DefaultDirection,
		Concurrency:      DefaultConcurrency,
		SamplingStrategy: SamplingAll,
		RandomSeed:       DefaultRandomSeed,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidConfig, c.Concurrency)
	}
	if _, err := graph.ParseOrientation(c.Direction); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.SamplingStrategy {
	case "", SamplingAll, SamplingRandomDegree:
	default:
		return fmt.Errorf("%w: unknown sampling strategy %q", ErrInvalidConfig, c.SamplingStrategy)
	}
	if c.SamplingSize != nil && *c.SamplingSize <= 0 {
		return fmt.Errorf("%w: sampling size must be positive, got %d", ErrInvalidConfig, *c.SamplingSize)
	}
	return nil
}

// Weighted reports whether the weighted engine is selected.
func (c Config) Weighted() bool {
	return c.RelationshipWeightProperty != ""
}

// Orientation maps Direction onto a graph orientation.
func (c Config) Orientation() (graph.Orientation, error) {
	return graph.ParseOrientation(c.Direction)
}

// Divisor returns the raw-score divisor for an orientation: 2 when every
// pair is traversed in both directions, otherwise 1.
func Divisor(o graph.Orientation) float64 {
	if o == graph.Undirected {
		return 2
	}
	return 1
}
