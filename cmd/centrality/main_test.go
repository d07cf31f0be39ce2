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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/centrality/services/centrality/api"
	"github.com/AleutianAI/centrality/services/centrality/betweenness"
	"github.com/AleutianAI/centrality/services/centrality/concurrency"
	"github.com/AleutianAI/centrality/services/centrality/config"
	"github.com/AleutianAI/centrality/services/centrality/graph"
)

const starEdgeList = "# star\n0 1\n0 2\n0 3\n0 4\n"

// isolate keeps config discovery away from the developer's files.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func runCLI(t *testing.T, ctx context.Context, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(viper.New())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCompute_StreamJSONFromStdin(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, context.Background(), starEdgeList, "compute", "--format", "json")
	require.NoError(t, err)

	var report streamReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 5, report.NodeCount)
	assert.Equal(t, 5, report.SourceCount)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Centralities, 5)
	assert.Equal(t, betweenness.Score{NodeID: 0, Score: 6}, report.Centralities[0])
}

func TestCompute_TextFromFile(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "star.txt", starEdgeList)

	out, err := runCLI(t, context.Background(), "", "compute", "--input", input, "--top", "1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "NODE")
	assert.Equal(t, []string{"0", "6"}, strings.Fields(lines[1]))
}

func TestCompute_StatsYAML(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, context.Background(), starEdgeList, "compute", "--mode", "stats", "--format", "yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "bridge_nodes: 1")

	var stats betweenness.StatsResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 6.0, stats.Max)
	assert.Equal(t, 1, stats.BridgeNodes)
	assert.Equal(t, 5, stats.NodeCount)
}

func TestCompute_Estimate(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, context.Background(), starEdgeList,
		"compute", "--mode", "estimate", "--format", "json", "--concurrency", "2")
	require.NoError(t, err)

	var report estimateReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	want := betweenness.EstimateMemory(5, 4, 2, false)
	assert.Equal(t, want.MinBytes, report.MinBytes)
	assert.Equal(t, want.MaxBytes, report.MaxBytes)
	assert.Equal(t, 2, report.Concurrency)
}

func TestCompute_Flags(t *testing.T) {
	detour := "0 1 1\n1 2 1\n0 2 3\n"

	tests := []struct {
		name  string
		input string
		args  []string
		check func(t *testing.T, r streamReport)
	}{
		{
			name:  "weighted",
			input: detour,
			args:  []string{"--weighted"},
			check: func(t *testing.T, r streamReport) {
				assert.True(t, r.Weighted)
				assert.InDelta(t, 1.0, r.Centralities[1].Score, 1e-9)
			},
		},
		{
			name:  "unweighted",
			input: detour,
			check: func(t *testing.T, r streamReport) {
				assert.False(t, r.Weighted)
				assert.Zero(t, r.Centralities[1].Score)
			},
		},
		{
			name:  "outgoing",
			input: "0 1\n1 2\n",
			args:  []string{"--direction", "outgoing"},
			check: func(t *testing.T, r streamReport) {
				assert.InDelta(t, 1.0, r.Centralities[1].Score, 1e-9)
			},
		},
		{
			name:  "normalize",
			input: starEdgeList,
			args:  []string{"--normalize"},
			check: func(t *testing.T, r streamReport) {
				assert.True(t, r.Normalized)
				assert.InDelta(t, 1.0, r.Centralities[0].Score, 1e-9)
			},
		},
		{
			name:  "sampling",
			input: starEdgeList,
			args:  []string{"--sampling-size", "2", "--seed", "3"},
			check: func(t *testing.T, r streamReport) {
				assert.Equal(t, 2, r.SourceCount)
			},
		},
		{
			name:  "default weight",
			input: "0 1\n1 2\n0 2 3\n",
			args:  []string{"--weighted", "--default-weight", "1"},
			check: func(t *testing.T, r streamReport) {
				assert.InDelta(t, 1.0, r.Centralities[1].Score, 1e-9)
			},
		},
		{
			name:  "heavy default weight",
			input: "0 1\n1 2\n0 2 3\n",
			args:  []string{"--weighted", "--default-weight", "2"},
			check: func(t *testing.T, r streamReport) {
				assert.Zero(t, r.Centralities[1].Score)
			},
		},
		{
			name:  "node count",
			input: "0 1\n",
			args:  []string{"--node-count", "4"},
			check: func(t *testing.T, r streamReport) {
				assert.Len(t, r.Centralities, 4)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			args := append([]string{"compute", "--format", "json"}, tt.args...)
			out, err := runCLI(t, context.Background(), tt.input, args...)
			require.NoError(t, err)

			var report streamReport
			require.NoError(t, json.Unmarshal([]byte(out), &report))
			tt.check(t, report)
		})
	}
}

func TestCompute_ZeroConcurrencyUsesGOMAXPROCS(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, context.Background(), starEdgeList,
		"compute", "--mode", "estimate", "--format", "json", "--concurrency", "0")
	require.NoError(t, err)

	var report estimateReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, runtime.GOMAXPROCS(0), report.Concurrency)
}

func TestCompute_MaxNodesFromConfig(t *testing.T) {
	isolate(t)
	t.Setenv("CENTRALITY_GRAPH_MAX_NODES", "0")

	out, err := runCLI(t, context.Background(), "0 20000\n", "compute", "--mode", "estimate", "--format", "json")
	require.NoError(t, err)

	var report estimateReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 20001, report.NodeCount)
}

func TestCompute_ConfigFileAndEnv(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeFile(t, dir, "custom.yaml", "betweenness:\n  normalize: true\n")

	out, err := runCLI(t, context.Background(), starEdgeList,
		"compute", "--format", "json", "--config", cfgPath)
	require.NoError(t, err)
	var report streamReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Normalized)

	t.Setenv("CENTRALITY_BETWEENNESS_CONCURRENCY", "0")
	_, err = runCLI(t, context.Background(), starEdgeList, "compute")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestCompute_Errors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr error
	}{
		{"unknown mode", starEdgeList, []string{"compute", "--mode", "all"}, errUsage},
		{"unknown format", starEdgeList, []string{"compute", "--format", "xml"}, errUsage},
		{"parse error", "0 x\n", []string{"compute"}, graph.ErrParse},
		{"zero sampling size", starEdgeList, []string{"compute", "--sampling-size", "0"}, config.ErrInvalid},
		{"missing config", starEdgeList, []string{"compute", "--config", "nope.yaml"}, nil},
		{"missing input", "", []string{"compute", "--input", "nope.txt"}, os.ErrNotExist},
		{"node limit", "0 2147483646\n", []string{"compute", "--mode", "estimate"}, graph.ErrNodeLimit},
		{"node limit flag", starEdgeList, []string{"compute", "--max-nodes", "3"}, graph.ErrNodeLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, context.Background(), tt.stdin, tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, 1, exitCode(err))
		})
	}
}

func TestCompute_Terminated(t *testing.T) {
	isolate(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runCLI(t, ctx, starEdgeList, "compute")
	require.Error(t, err)
	assert.ErrorIs(t, err, concurrency.ErrTerminated)
	assert.Contains(t, err.Error(), "terminated")
	assert.Equal(t, exitTerminated, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}

func TestVersion(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, context.Background(), "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "centrality "+api.ServiceVersion)
}
