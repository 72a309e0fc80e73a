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
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pagecore",
	Short: "Operate a pagecore deployment",
	Long: `pagecore serves and administers a page-core retrieval/caching
deployment: the HTTP/websocket surface, and direct cache-invalidation and
lineage-inspection commands against the same storage backend a running
server uses.`,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(invalidateCmd)
	rootCmd.AddCommand(invalidatePrefixCmd)
	rootCmd.AddCommand(lineageCmd)
	rootCmd.AddCommand(versionCmd)
}
