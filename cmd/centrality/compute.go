// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AleutianAI/centrality/services/centrality/betweenness"
	"github.com/AleutianAI/centrality/services/centrality/concurrency"
	"github.com/AleutianAI/centrality/services/centrality/config"
	"github.com/AleutianAI/centrality/services/centrality/graph"
)

// Compute modes.
const (
	modeStream   = "stream"
	modeStats    = "stats"
	modeEstimate = "estimate"
)

// errUsage is returned for invalid flag combinations.
var errUsage = errors.New("invalid usage")

// computeOptions are the flags that do not live in the viper config.
type computeOptions struct {
	input         string
	nodeCount     int
	defaultWeight float64
	mode          string
	format        string
	top           int
}

func newComputeCmd(v *viper.Viper) *cobra.Command {
	opts := &computeOptions{}

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute betweenness centrality for an edge list",
		Long: `Reads an edge list ("from to [weight]" per line, '#' comments) from
--input or stdin and prints betweenness centrality.

Modes:
  stream    one score per node (default)
  stats     distribution summary
  estimate  memory estimate without running`,
		Example: `  centrality compute --input roads.txt --weighted --top 10
  cat graph.txt | centrality compute --mode stats --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyChangedFlags(cmd, v)
			return runCompute(cmd, v, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "-", "edge list file, - for stdin")
	f.IntVar(&opts.nodeCount, "node-count", 0, "fix the node range to [0, n); 0 infers it")
	f.Float64Var(&opts.defaultWeight, "default-weight", 1, "weight of edge list lines without a third column")
	f.StringVarP(&opts.mode, "mode", "m", modeStream, "stream, stats or estimate")
	f.StringVarP(&opts.format, "format", "o", formatText, "output format: text, json or yaml")
	f.IntVar(&opts.top, "top", 0, "print only the K highest scores (stream mode)")

	f.String("direction", betweenness.DefaultDirection, "outgoing, incoming or both")
	f.Int("concurrency", betweenness.DefaultConcurrency, "worker goroutines; 0 uses GOMAXPROCS")
	f.Bool("weighted", false, "use the third edge list column as relationship weight")
	f.String("sampling-strategy", betweenness.SamplingAll, "source sampling: all or random_degree")
	f.Int("sampling-size", 0, "number of sampled sources; unset uses every node")
	f.Uint64("seed", betweenness.DefaultRandomSeed, "sampling seed")
	f.Bool("normalize", false, "scale scores by the number of node pairs")
	f.Int("max-nodes", config.DefaultMaxNodes, "reject edge lists with more nodes; 0 disables the limit")

	_ = v.BindPFlag("betweenness.direction", f.Lookup("direction"))
	_ = v.BindPFlag("betweenness.concurrency", f.Lookup("concurrency"))
	_ = v.BindPFlag("betweenness.sampling_strategy", f.Lookup("sampling-strategy"))
	_ = v.BindPFlag("betweenness.random_seed", f.Lookup("seed"))
	_ = v.BindPFlag("betweenness.normalize", f.Lookup("normalize"))
	_ = v.BindPFlag("graph.max_nodes", f.Lookup("max-nodes"))
	return cmd
}

// applyChangedFlags copies flags whose zero value means "unset" into v only
// when they were given explicitly.
func applyChangedFlags(cmd *cobra.Command, v *viper.Viper) {
	f := cmd.Flags()
	if f.Changed("concurrency") {
		if n, _ := f.GetInt("concurrency"); n == 0 {
			v.Set("betweenness.concurrency", concurrency.Available().Value())
		}
	}
	if f.Changed("sampling-size") {
		size, _ := f.GetInt("sampling-size")
		v.Set("betweenness.sampling_size", size)
	}
	if f.Changed("weighted") {
		weighted, _ := f.GetBool("weighted")
		property := ""
		if weighted {
			property = "weight"
		}
		v.Set("betweenness.relationship_weight_property", property)
	}
}

func runCompute(cmd *cobra.Command, v *viper.Viper, opts *computeOptions) error {
	switch opts.mode {
	case modeStream, modeStats, modeEstimate:
	default:
		return fmt.Errorf("%w: unknown mode %q", errUsage, opts.mode)
	}
	if !validFormat(opts.format) {
		return fmt.Errorf("%w: unknown format %q", errUsage, opts.format)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger := cfg.Logger("centrality", cmd.ErrOrStderr())
	defer logger.Close()

	g, err := loadGraph(cmd.InOrStdin(), opts.input,
		graph.WithNodeCount(opts.nodeCount),
		graph.WithDefaultWeight(opts.defaultWeight),
		graph.WithMaxNodes(cfg.Graph.MaxNodes),
	)
	if err != nil {
		return err
	}
	logger.Debug("graph loaded",
		"input", opts.input,
		"node_count", g.NodeCount(),
		"relationship_count", g.RelationshipCount(),
	)

	runner, err := betweenness.NewRunner(g, cfg.Betweenness, betweenness.WithLogger(logger.Slog()))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch opts.mode {
	case modeEstimate:
		est := runner.EstimateMemory()
		return writeEstimate(out, opts.format, estimateReport{
			NodeCount:         g.NodeCount(),
			RelationshipCount: g.RelationshipCount(),
			Concurrency:       cfg.Betweenness.Concurrency,
			MinBytes:          est.MinBytes,
			MaxBytes:          est.MaxBytes,
		})

	case modeStats:
		stats, err := runner.Stats(cmd.Context())
		if err != nil {
			return err
		}
		return writeStats(out, opts.format, stats)

	default:
		res, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}
		raw := betweenness.Result{Centralities: res.Centralities}
		rows := betweenness.Stream(raw)
		if opts.top > 0 {
			rows = betweenness.TopK(raw, opts.top)
		}
		return writeStream(out, opts.format, streamReport{
			RunID:           res.RunID,
			NodeCount:       res.NodeCount,
			SourceCount:     res.SourceCount,
			Weighted:        res.Weighted,
			Normalized:      res.Normalized,
			ExecutionTimeMs: res.ExecutionTime.Milliseconds(),
			Centralities:    rows,
		})
	}
}

// loadGraph reads the edge list at path, or stdin for "-" and "".
func loadGraph(stdin io.Reader, path string, opts ...graph.LoadOption) (*graph.Graph, error) {
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	g, err := graph.LoadEdgeList(r, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return g, nil
}
