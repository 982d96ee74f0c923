// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tireder/betting-tips/services/panel/config"
)

// runConfigWrite resolves settings from the environment and writes the
// runtime config file, the same step `serve` performs at boot.
func runConfigWrite(cmd *cobra.Command, args []string) error {
	settings := config.Resolve()
	if err := settings.WriteFile(configPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("wrote %s (listen %s)\n", configPath, settings.ListenAddr())
	return nil
}

// runConfigShow prints the resolved settings without writing anything.
func runConfigShow(cmd *cobra.Command, args []string) error {
	out, err := yaml.Marshal(config.Resolve())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
