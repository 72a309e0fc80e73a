// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"strings"
	"testing"
)

func TestVersionConstants(t *testing.T) {
	if version == "" {
		t.Error("version constant should not be empty")
	}
	if buildDate == "" {
		t.Error("buildDate constant should not be empty")
	}
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		t.Errorf("version should be in semantic versioning format, got: %s", version)
	}
}

func TestVersionCmd_HasVerboseFlag(t *testing.T) {
	if versionCmd.Flags().Lookup("verbose") == nil {
		t.Error("expected version command to have a verbose flag")
	}
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	want := []string{"serve", "invalidate", "invalidate-prefix", "lineage", "version"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if strings.HasPrefix(c.Use, name) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("rootCmd missing subcommand %q", name)
		}
	}
}
