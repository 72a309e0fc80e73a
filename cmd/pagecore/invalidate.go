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

var invalidateConfigPath string

var invalidateCmd = &cobra.Command{
	Use:   "invalidate <uri>",
	Short: "Mark one page version invalid",
	Long: `Marks the exact page version named by uri invalid, so future
validity-checked reads skip it. The row is kept; a later write of the
page goes to a new version. uri must name an exact
version (root/type:id@N); a "latest" uri is rejected since there is no
single version to mark.`,
	Args: cobra.ExactArgs(1),
	RunE: runInvalidate,
}

var invalidatePrefixCmd = &cobra.Command{
	Use:   "invalidate-prefix <prefix>",
	Short: "Mark every version of a page prefix invalid",
	Long: `Marks every stored version of prefix (root/type:id, with no
@version suffix) invalid. Requires --type since a prefix alone does not
carry a page type.`,
	Args: cobra.ExactArgs(1),
	RunE: runInvalidatePrefix,
}

func init() {
	invalidateCmd.Flags().StringVarP(&invalidateConfigPath, "config", "c", "config.yaml", "Path to configuration file")
	invalidatePrefixCmd.Flags().StringVarP(&invalidateConfigPath, "config", "c", "config.yaml", "Path to configuration file")
	invalidatePrefixCmd.Flags().String("type", "", "Page type of the prefix (required)")
	invalidatePrefixCmd.MarkFlagRequired("type")
}

func runInvalidate(cmd *cobra.Command, args []string) error {
	uri, err := pageuri.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid uri %q: %w", args[0], err)
	}
	if uri.Version.IsLatest() {
		return fmt.Errorf("invalidate requires an exact version, got %q", args[0])
	}

	cfg, err := loadConfig(invalidateConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	dep, err := newDeployment(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize deployment: %w", err)
	}
	if err := dep.ensureType(uri.Type); err != nil {
		return fmt.Errorf("failed to resolve type %q: %w", uri.Type, err)
	}

	ctx := context.Background()
	if err := dep.cache.Invalidate(ctx, uri.Type, uri); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", uri.String(), err)
	}
	fmt.Printf("✅ Invalidated %s\n", uri.String())
	return nil
}

func runInvalidatePrefix(cmd *cobra.Command, args []string) error {
	prefix := args[0]
	typeName, _ := cmd.Flags().GetString("type")

	cfg, err := loadConfig(invalidateConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	dep, err := newDeployment(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize deployment: %w", err)
	}
	if err := dep.ensureType(typeName); err != nil {
		return fmt.Errorf("failed to resolve type %q: %w", typeName, err)
	}

	ctx := context.Background()
	n, err := dep.cache.InvalidatePrefix(ctx, typeName, prefix)
	if err != nil {
		return fmt.Errorf("failed to invalidate prefix %s: %w", prefix, err)
	}
	fmt.Printf("✅ Invalidated %d version(s) of %s\n", n, prefix)
	return nil
}
