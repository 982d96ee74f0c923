// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tireder/betting-tips/services/panel/config"
)

// runInit walks through first-run setup: the two API keys plus the
// server settings. Secrets go to an env file, settings to the config
// file. A terminal-free alternative is `config write` with env vars.
func runInit(cmd *cobra.Command, args []string) error {
	envPath, _ := cmd.Flags().GetString("env-file")

	footballKey := ""
	openaiKey := ""
	port := config.DefaultPort
	enableCORS := true
	predictionsPath := ""
	cacheDir := "/app/data/history"

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API-Football key").
				Description("Required for fixtures and odds (dashboard.api-football.com)").
				EchoMode(huh.EchoModePassword).
				Value(&footballKey).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("the football key is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("OpenAI API key").
				Description("Optional; empty disables the AI analyst").
				EchoMode(huh.EchoModePassword).
				Value(&openaiKey),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("HTTP port").
				Description("PORT overrides this at runtime").
				Value(&port).
				Validate(func(s string) error {
					if _, err := strconv.Atoi(s); err != nil {
						return fmt.Errorf("port must be a number")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Enable permissive CORS?").
				Value(&enableCORS),
			huh.NewInput().
				Title("Predictions CSV path").
				Description("Preloaded and watched for changes; empty to skip").
				Value(&predictionsPath),
			huh.NewInput().
				Title("Team history cache directory").
				Value(&cacheDir),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("init cancelled: %w", err)
	}

	var env strings.Builder
	fmt.Fprintf(&env, "FOOTBALL_API_KEY=%s\n", strings.TrimSpace(footballKey))
	if k := strings.TrimSpace(openaiKey); k != "" {
		fmt.Fprintf(&env, "OPENAI_API_KEY=%s\n", k)
	}
	if err := os.WriteFile(envPath, []byte(env.String()), 0o600); err != nil {
		return fmt.Errorf("write env file: %w", err)
	}

	var settings config.Settings
	settings.Server.Address = config.BindAddress
	settings.Server.Port = port
	settings.Server.Headless = true
	settings.Server.EnableCORS = enableCORS
	settings.Server.EnableXSRFProtection = !enableCORS
	settings.PredictionsPath = predictionsPath
	settings.CacheDir = cacheDir

	if err := settings.WriteFile(configPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("wrote %s and %s\n", envPath, configPath)
	return nil
}
