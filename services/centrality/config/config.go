// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads runtime configuration for the centrality CLI and
// server.
//
// Values come from, in increasing precedence: built-in defaults, a YAML
// config file (.centrality.yaml in the working or home directory, or an
// explicit --config path), CENTRALITY_* environment variables and CLI
// flags bound to the same viper instance. Nested keys map to env vars by
// replacing dots with underscores, e.g. betweenness.concurrency is
// CENTRALITY_BETWEENNESS_CONCURRENCY.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/AleutianAI/centrality/pkg/logging"
	"github.com/AleutianAI/centrality/services/centrality/betweenness"
	"github.com/AleutianAI/centrality/services/centrality/telemetry"
)

// EnvPrefix is the prefix of every environment variable.
const EnvPrefix = "CENTRALITY"

// DefaultMaxNodes is the default graph.max_nodes.
const DefaultMaxNodes = 10_000_000

// ErrInvalid is returned when a loaded value fails validation.
var ErrInvalid = errors.New("invalid configuration")

// LogConfig configures pkg/logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" json:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json" json:"json"`
	Dir   string `mapstructure:"dir" yaml:"dir" json:"dir"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr" json:"addr"`

	// RequestTimeout bounds a single computation; the run is terminated
	// when it elapses.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" json:"request_timeout"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// MaxEdges rejects larger request bodies. 0 disables the limit.
	MaxEdges int `mapstructure:"max_edges" yaml:"max_edges" json:"max_edges"`
}

// GraphConfig bounds the graphs the CLI and the server will build.
type GraphConfig struct {
	// MaxNodes rejects graphs whose node range exceeds it. 0 disables the
	// limit.
	MaxNodes int `mapstructure:"max_nodes" yaml:"max_nodes" json:"max_nodes"`
}

// Config holds all runtime configuration.
type Config struct {
	Betweenness betweenness.Config `mapstructure:"betweenness" yaml:"betweenness" json:"betweenness"`
	Log         LogConfig          `mapstructure:"log" yaml:"log" json:"log"`
	Telemetry   telemetry.Config   `mapstructure:"telemetry" yaml:"telemetry" json:"telemetry"`
	Server      ServerConfig       `mapstructure:"server" yaml:"server" json:"server"`
	Graph       GraphConfig        `mapstructure:"graph" yaml:"graph" json:"graph"`
}

// SetDefaults registers every default on v and enables CENTRALITY_*
// environment lookups.
func SetDefaults(v *viper.Viper) {
	b := betweenness.DefaultConfig()
	v.SetDefault("betweenness.direction", b.Direction)
	v.SetDefault("betweenness.concurrency", b.Concurrency)
	v.SetDefault("betweenness.relationship_weight_property", b.RelationshipWeightProperty)
	v.SetDefault("betweenness.sampling_strategy", b.SamplingStrategy)
	v.SetDefault("betweenness.random_seed", b.RandomSeed)
	v.SetDefault("betweenness.normalize", b.Normalize)
	// No default: nil means every node.
	_ = v.BindEnv("betweenness.sampling_size")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.dir", "")

	tel := telemetry.DefaultConfig()
	v.SetDefault("telemetry.service_name", tel.ServiceName)
	v.SetDefault("telemetry.service_version", tel.ServiceVersion)
	v.SetDefault("telemetry.environment", tel.Environment)
	v.SetDefault("telemetry.trace_exporter", tel.TraceExporter)
	v.SetDefault("telemetry.trace_sample_ratio", tel.TraceSampleRatio)
	v.SetDefault("telemetry.metric_exporter", tel.MetricExporter)
	v.SetDefault("telemetry.otlp_endpoint", tel.OTLPEndpoint)
	v.SetDefault("telemetry.otlp_insecure", tel.OTLPInsecure)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request_timeout", 5*time.Minute)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_edges", 5_000_000)

	v.SetDefault("graph.max_nodes", DefaultMaxNodes)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// ReadConfigFile points v at path, or at .centrality.yaml in the working
// and home directories when path is empty, and reads it. A missing default
// file is not an error; a missing explicit file is.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".centrality")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load applies defaults to v and decodes it into a validated Config. A nil
// v uses a fresh viper instance.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Betweenness.Validate(); err != nil {
		return fmt.Errorf("%w: betweenness: %w", ErrInvalid, err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log: %w", ErrInvalid, err)
	}
	if r := c.Telemetry.TraceSampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("%w: telemetry.trace_sample_ratio %v outside [0, 1]", ErrInvalid, r)
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("%w: server.request_timeout must not be negative", ErrInvalid)
	}
	if c.Server.MaxEdges < 0 {
		return fmt.Errorf("%w: server.max_edges must not be negative", ErrInvalid)
	}
	if c.Graph.MaxNodes < 0 {
		return fmt.Errorf("%w: graph.max_nodes must not be negative", ErrInvalid)
	}
	return nil
}

// Logger builds the logger described by the log section. out replaces
// stderr as the console destination when non-nil.
func (c Config) Logger(service string, out io.Writer) *logging.Logger {
	level, _ := logging.ParseLevel(c.Log.Level)
	return logging.New(logging.Config{
		Level:   level,
		JSON:    c.Log.JSON,
		LogDir:  c.Log.Dir,
		Service: service,
		Output:  out,
	})
}
