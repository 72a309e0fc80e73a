// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagecore/pagecore/core/pageuri"
)

var lineageConfigPath string

var lineageCmd = &cobra.Command{
	Use:   "lineage <uri>",
	Short: "Print the ancestor chain of a page",
	Long: `Prints uri's root-to-leaf ancestor chain, one parent_uri link per
line, for debugging provenance. Useful when a derived page's freshness
is in question: GetPage's staleness check walks this same chain.`,
	Args: cobra.ExactArgs(1),
	RunE: runLineage,
}

func init() {
	lineageCmd.Flags().StringVarP(&lineageConfigPath, "config", "c", "config.yaml", "Path to configuration file")
}

func runLineage(cmd *cobra.Command, args []string) error {
	uri, err := pageuri.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid uri %q: %w", args[0], err)
	}

	cfg, err := loadConfig(lineageConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	dep, err := newDeployment(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize deployment: %w", err)
	}

	chain, err := dep.cache.GetLineage(context.Background(), uri)
	if err != nil {
		return fmt.Errorf("failed to get lineage of %s: %w", uri.String(), err)
	}

	if len(chain) == 0 {
		fmt.Printf("%s has no recorded ancestors\n", uri.String())
		return nil
	}
	for _, ancestor := range chain {
		fmt.Println(ancestor.String())
	}
	return nil
}
