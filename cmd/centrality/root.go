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
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AleutianAI/centrality/services/centrality/config"
)

// newRootCmd builds the command tree around v. Every subcommand reads its
// configuration from v, so tests pass a fresh viper instance.
func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:   "centrality",
		Short: "Parallel betweenness centrality for large graphs",
		Long: `Centrality computes Brandes betweenness centrality over edge lists,
either from the command line or as an HTTP service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			return config.ReadConfigFile(v, cfgFile)
		},
	}

	root.PersistentFlags().String("config", "", "config file (default .centrality.yaml)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().Bool("log-json", false, "log as JSON")
	_ = v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log.json", root.PersistentFlags().Lookup("log-json"))

	root.AddCommand(newComputeCmd(v))
	root.AddCommand(newServeCmd(v))
	root.AddCommand(newVersionCmd())
	return root
}
